package endpoints_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crescent-hq/minaret/internal/adhan"
	"github.com/crescent-hq/minaret/internal/calc"
	"github.com/crescent-hq/minaret/internal/http/api"
	"github.com/crescent-hq/minaret/internal/http/api/prayer/endpoints"
	"github.com/crescent-hq/minaret/internal/model"
	"github.com/crescent-hq/minaret/internal/notify"
	"github.com/crescent-hq/minaret/internal/ramadan"
	"github.com/crescent-hq/minaret/internal/timetable"
)

var testMarks = model.TimeMarkSet{
	Fajr:    "05:10",
	Sunrise: "06:30",
	Dhuhr:   "12:15",
	Asr:     "15:45",
	Maghrib: "18:20",
	Isha:    "19:40",
}

type fakeStore struct {
	settings   map[int]model.Settings
	completion map[string]map[model.PrayerName]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings:   map[int]model.Settings{1: model.DefaultSettings(1)},
		completion: map[string]map[model.PrayerName]bool{},
	}
}

func (f *fakeStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	return 1, nil
}

func (f *fakeStore) GetUserByEmail(email string) (*model.User, error) {
	return &model.User{ID: 1, Email: email}, nil
}

func (f *fakeStore) GetUserByID(id int) (*model.User, error) {
	return &model.User{ID: id, Email: "test@example.com"}, nil
}

func (f *fakeStore) UpdateUserProfile(id int, email string, name *string) error { return nil }

func (f *fakeStore) GetSettings(userID int) (model.Settings, error) {
	return f.settings[userID], nil
}

func (f *fakeStore) SaveSettings(s model.Settings) error {
	f.settings[s.UserID] = s
	return nil
}

func (f *fakeStore) LoadCompletion(userID int, day time.Time) (map[model.PrayerName]bool, error) {
	return f.completion[day.Format("2006-01-02")], nil
}

func (f *fakeStore) SaveCompletion(userID int, day time.Time, completion map[model.PrayerName]bool) error {
	f.completion[day.Format("2006-01-02")] = completion
	return nil
}

type fakeCalc struct{}

func (fakeCalc) ComputeDailyTimes(ctx context.Context, date time.Time, loc calc.Location, params calc.Params) (model.TimeMarkSet, error) {
	m := testMarks
	m.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return m, nil
}

type fakeHijri struct {
	month int
	day   int
}

func (f *fakeHijri) HijriDate(ctx context.Context, date time.Time, loc calc.Location, params calc.Params) (int, int, error) {
	return f.month, f.day, nil
}

type fakeAudio struct{}

func (fakeAudio) LoadAndPlay(source string, done func(adhan.Handle)) (adhan.Handle, error) {
	return adhan.Handle("h1"), nil
}
func (fakeAudio) Stop(h adhan.Handle)   {}
func (fakeAudio) Unload(h adhan.Handle) {}

type fakeResolver struct{}

func (fakeResolver) ResolveSource(name string) (string, error) { return "/sounds/" + name, nil }

type recordingTransport struct {
	byID map[string]model.NotificationRequest
}

func (r *recordingTransport) Schedule(ctx context.Context, req model.NotificationRequest) error {
	r.byID[req.Identifier] = req
	return nil
}

func (r *recordingTransport) CancelAll(ctx context.Context) error {
	r.byID = map[string]model.NotificationRequest{}
	return nil
}

func injectUser(c *gin.Context) {
	c.Set("currentUser", &model.User{ID: 1, Email: "test@example.com"})
}

type fixture struct {
	router    *gin.Engine
	store     *fakeStore
	session   *timetable.Session
	transport *recordingTransport
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	session := timetable.NewSession(store, fakeCalc{}, 1, calc.Location{}, calc.Params{})
	session.SetClock(func() time.Time {
		return time.Date(2026, 8, 24, 13, 0, 0, 0, time.UTC)
	})

	transport := &recordingTransport{byID: map[string]model.NotificationRequest{}}
	scheduler := notify.NewScheduler(transport)
	calendar := ramadan.NewCalendar(&fakeHijri{month: 9, day: 7})
	player := adhan.NewPlayer(fakeAudio{}, fakeResolver{})

	router := gin.New()
	api.MountGroup(router, api.GroupConfig{
		Prefix:     "/api/prayer",
		Middleware: []gin.HandlerFunc{injectUser},
	},
		endpoints.TimetableModule(session),
		endpoints.SettingsModule(store, session),
		endpoints.NotificationsModule(store, session, scheduler, calendar),
		endpoints.AdhanModule(player),
	)

	return &fixture{router: router, store: store, session: session, transport: transport}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
}

func TestTimetableToday(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/api/prayer/timetable/today", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Date     string `json:"date"`
		Instants []struct {
			Name       string `json:"name"`
			Completion string `json:"completion"`
		} `json:"instants"`
		Next struct {
			Name         string `json:"name"`
			MinutesUntil int    `json:"minutes_until"`
		} `json:"next"`
	}
	decode(t, w, &resp)

	if resp.Date != "2026-08-24" {
		t.Errorf("date = %s", resp.Date)
	}
	if len(resp.Instants) != 6 {
		t.Errorf("expected 6 instants, got %d", len(resp.Instants))
	}
	if resp.Next.Name != "asr" || resp.Next.MinutesUntil != 165 {
		t.Errorf("next = %+v", resp.Next)
	}
}

func TestTogglePrayer(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/prayer/timetable/dhuhr/toggle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Instants []struct {
			Name       string `json:"name"`
			Completion string `json:"completion"`
		} `json:"instants"`
	}
	decode(t, w, &resp)
	for _, in := range resp.Instants {
		if in.Name == "dhuhr" && in.Completion != "done" {
			t.Errorf("dhuhr completion = %s", in.Completion)
		}
	}

	if saved := f.store.completion["2026-08-24"]; saved == nil || !saved[model.Dhuhr] {
		t.Errorf("completion not persisted: %+v", saved)
	}
}

func TestToggleUnknownPrayer(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/prayer/timetable/tahajjud/toggle", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateSettings(t *testing.T) {
	f := setup(t)

	body := map[string]any{
		"city":                  "London",
		"latitude":              51.5,
		"longitude":             -0.12,
		"method":                3,
		"school":                0,
		"adhan_sound":           "madinah",
		"notifications_enabled": true,
		"reminder_offsets":      map[string]int{"fajr": 15},
	}
	w := f.do(t, http.MethodPut, "/api/prayer/settings", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	saved := f.store.settings[1]
	if saved.City != "London" || saved.AdhanSound != "madinah" || saved.Method != 3 {
		t.Errorf("settings not saved: %+v", saved)
	}
	if saved.ReminderOffsets[model.Fajr] != 15 {
		t.Errorf("reminder offsets not saved: %+v", saved.ReminderOffsets)
	}
}

func TestUpdateSettingsUnknownSound(t *testing.T) {
	f := setup(t)

	body := map[string]any{"adhan_sound": "klaxon"}
	w := f.do(t, http.MethodPut, "/api/prayer/settings", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
}

func TestNotificationsRefresh(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/prayer/notifications/refresh", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Scheduled int               `json:"scheduled"`
		Failures  map[string]string `json:"failures"`
	}
	decode(t, w, &resp)

	// 5 dailies + sehri/iftar from the ramadan window.
	if resp.Scheduled != 7 {
		t.Errorf("scheduled = %d, want 7", resp.Scheduled)
	}
	if len(resp.Failures) != 0 {
		t.Errorf("unexpected failures: %v", resp.Failures)
	}
	if _, ok := f.transport.byID["ramadan-sehri-day-7"]; !ok {
		t.Error("sehri request missing from transport")
	}
}

func TestAdhanPreviewFlow(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/api/prayer/adhan/options", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("options status %d", w.Code)
	}
	var options []struct {
		Value string `json:"value"`
	}
	decode(t, w, &options)
	if len(options) != 5 {
		t.Fatalf("expected 5 options, got %d", len(options))
	}

	w = f.do(t, http.MethodPost, "/api/prayer/adhan/preview", map[string]string{"value": "makkah"})
	if w.Code != http.StatusOK {
		t.Fatalf("preview status %d: %s", w.Code, w.Body.String())
	}
	var session struct {
		State  string `json:"state"`
		Loaded *struct {
			Value string `json:"value"`
		} `json:"loaded"`
	}
	decode(t, w, &session)
	if session.State != "playing" || session.Loaded == nil || session.Loaded.Value != "makkah" {
		t.Fatalf("preview session = %+v", session)
	}

	w = f.do(t, http.MethodPost, "/api/prayer/adhan/preview/stop", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stop status %d", w.Code)
	}
	session.Loaded = nil
	decode(t, w, &session)
	if session.State != "idle" || session.Loaded != nil {
		t.Fatalf("session after stop = %+v", session)
	}
}

func TestAdhanPreviewUnknownValue(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/prayer/adhan/preview", map[string]string{"value": "klaxon"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
}

func TestUnauthorizedWithoutUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newFakeStore()
	session := timetable.NewSession(store, fakeCalc{}, 1, calc.Location{}, calc.Params{})

	router := gin.New()
	api.MountGroup(router, api.GroupConfig{Prefix: "/api/prayer"},
		endpoints.TimetableModule(session),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/prayer/timetable/today", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}
