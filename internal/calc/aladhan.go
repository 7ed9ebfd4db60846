package calc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/model"
)

const DefaultAlAdhanBaseURL = "https://api.aladhan.com"

// AlAdhanClient computes daily marks through the Al Adhan timings API.
type AlAdhanClient struct {
	baseURL string
	client  *http.Client
}

func NewAlAdhanClient(baseURL string) *AlAdhanClient {
	if baseURL == "" {
		baseURL = DefaultAlAdhanBaseURL
	}
	return &AlAdhanClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// timingsResponse mirrors the subset of the Al Adhan payload we consume.
type timingsResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Timings struct {
			Fajr    string `json:"Fajr"`
			Sunrise string `json:"Sunrise"`
			Dhuhr   string `json:"Dhuhr"`
			Asr     string `json:"Asr"`
			Maghrib string `json:"Maghrib"`
			Isha    string `json:"Isha"`
		} `json:"timings"`
		Date struct {
			Hijri struct {
				Day   string `json:"day"`
				Month struct {
					Number int `json:"number"`
				} `json:"month"`
			} `json:"hijri"`
		} `json:"date"`
	} `json:"data"`
}

func (c *AlAdhanClient) fetch(ctx context.Context, date time.Time, loc Location, params Params) (*timingsResponse, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	q.Set("method", strconv.Itoa(params.Method))
	q.Set("school", strconv.Itoa(params.School))

	endpoint := fmt.Sprintf("%s/v1/timings/%s?%s", c.baseURL, date.Format("02-01-2006"), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build timings request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("date", date.Format("2006-01-02")).Msg("aladhan request failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Msg("aladhan returned non-200")
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if body.Code != http.StatusOK {
		return nil, fmt.Errorf("%w: api code %d", ErrUnavailable, body.Code)
	}
	return &body, nil
}

func (c *AlAdhanClient) ComputeDailyTimes(ctx context.Context, date time.Time, loc Location, params Params) (model.TimeMarkSet, error) {
	body, err := c.fetch(ctx, date, loc, params)
	if err != nil {
		return model.TimeMarkSet{}, err
	}

	t := body.Data.Timings
	return model.TimeMarkSet{
		Date:    time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		Fajr:    cleanClock(t.Fajr),
		Sunrise: cleanClock(t.Sunrise),
		Dhuhr:   cleanClock(t.Dhuhr),
		Asr:     cleanClock(t.Asr),
		Maghrib: cleanClock(t.Maghrib),
		Isha:    cleanClock(t.Isha),
	}, nil
}

func (c *AlAdhanClient) HijriDate(ctx context.Context, date time.Time, loc Location, params Params) (int, int, error) {
	body, err := c.fetch(ctx, date, loc, params)
	if err != nil {
		return 0, 0, err
	}
	day, err := strconv.Atoi(body.Data.Date.Hijri.Day)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: hijri day %q", ErrUnavailable, body.Data.Date.Hijri.Day)
	}
	return body.Data.Date.Hijri.Month.Number, day, nil
}

// cleanClock strips the timezone suffix the API sometimes appends,
// e.g. "05:10 (BST)" -> "05:10".
func cleanClock(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 {
		return s[:i]
	}
	return strings.TrimSpace(s)
}
