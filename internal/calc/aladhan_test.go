package calc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

const sampleTimings = `{
	"code": 200,
	"status": "OK",
	"data": {
		"timings": {
			"Fajr": "05:10",
			"Sunrise": "06:30 (BST)",
			"Dhuhr": "12:15",
			"Asr": "15:45",
			"Maghrib": "18:20",
			"Isha": "19:40"
		},
		"date": {
			"hijri": {
				"day": "12",
				"month": {"number": 9, "en": "Ramadan"}
			}
		}
	}
}`

func testServer(t *testing.T, handler http.HandlerFunc) *AlAdhanClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAlAdhanClient(srv.URL)
}

func TestComputeDailyTimes(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(sampleTimings))
	})

	date := time.Date(2026, 8, 24, 13, 0, 0, 0, time.UTC)
	marks, err := client.ComputeDailyTimes(context.Background(), date, Location{Latitude: 51.5, Longitude: -0.12}, Params{Method: 2, School: 0})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if gotPath != "/v1/timings/24-08-2026" {
		t.Errorf("path = %s", gotPath)
	}
	wantParams := map[string]string{"latitude": "51.5", "longitude": "-0.12", "method": "2", "school": "0"}
	for key, want := range wantParams {
		if got := gotQuery.Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}

	if marks.Fajr != "05:10" || marks.Isha != "19:40" {
		t.Errorf("marks not copied: %+v", marks)
	}
	// Timezone suffix must be stripped.
	if marks.Sunrise != "06:30" {
		t.Errorf("sunrise = %q, want 06:30", marks.Sunrise)
	}
	if want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC); !marks.Date.Equal(want) {
		t.Errorf("date not normalized: %v", marks.Date)
	}
}

func TestHijriDate(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleTimings))
	})

	month, day, err := client.HijriDate(context.Background(), time.Now(), Location{}, Params{})
	if err != nil {
		t.Fatalf("hijri date: %v", err)
	}
	if month != 9 || day != 12 {
		t.Fatalf("expected 9/12, got %d/%d", month, day)
	}
}

func TestComputeDailyTimesServerError(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ComputeDailyTimes(context.Background(), time.Now(), Location{}, Params{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestComputeDailyTimesAPIErrorCode(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 400, "status": "Bad Request", "data": {}}`))
	})

	_, err := client.ComputeDailyTimes(context.Background(), time.Now(), Location{}, Params{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestComputeDailyTimesMalformedBody(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.ComputeDailyTimes(context.Background(), time.Now(), Location{}, Params{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCleanClock(t *testing.T) {
	cases := map[string]string{
		"05:10":       "05:10",
		"05:10 (BST)": "05:10",
		" 05:10 ":     "05:10",
		"":            "",
	}
	for in, want := range cases {
		if got := cleanClock(in); got != want {
			t.Errorf("cleanClock(%q) = %q, want %q", in, got, want)
		}
	}
}
