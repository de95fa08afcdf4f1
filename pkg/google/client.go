// Package google is a client for the Google Places Details web service.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/places-geojson/internal/model"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place"
	defaultTimeout = 10 * time.Second

	// DetailsFields is the field mask sent with every request. The API bills per field.
	DetailsFields = "name,geometry,formatted_address"
)

// Client performs Google Places API operations.
type Client interface {
	// PlaceDetails looks up a place by its feature ID. Each call issues exactly one request.
	PlaceDetails(ctx context.Context, id model.PlaceID) (*model.Place, error)
}

// LookupError is returned for any failed PlaceDetails call.
type LookupError struct {
	PlaceID    model.PlaceID
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("google: place details %s: status %d: %v", e.PlaceID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("google: place details %s: %v", e.PlaceID, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the default http.Client. The caller's client is used as-is;
// WithTimeout does not modify it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
// It has no effect when WithHTTPClient is given.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// detailsResponse mirrors the Places Details JSON. Pointers let missing fields be told
// apart from zero values.
type detailsResponse struct {
	Result *detailsResult `json:"result"`
	Status string         `json:"status"`
}

type detailsResult struct {
	FormattedAddress *string `json:"formatted_address"`
	Geometry         *struct {
		Location *struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Name *string `json:"name"`
}

func (c *httpClient) PlaceDetails(ctx context.Context, id model.PlaceID) (*model.Place, error) {
	fail := func(status int, err error) (*model.Place, error) {
		return nil, &LookupError{PlaceID: id, StatusCode: status, Err: err}
	}

	if c.apiKey == "" {
		return fail(0, eris.New("api key not configured"))
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(0, eris.Wrap(err, "rate limit"))
		}
	}

	params := url.Values{
		"key":    {c.apiKey},
		"ftid":   {string(id)},
		"fields": {DetailsFields},
	}
	reqURL := c.baseURL + "/details/json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fail(0, eris.Wrap(redactKey(err), "create request"))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, eris.Wrap(redactKey(err), "send request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, eris.Wrap(err, "read response"))
	}

	zap.L().Debug("google: place details",
		zap.String("place_id", string(id)),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return fail(resp.StatusCode, eris.Errorf("unexpected status: %s", snippet(respBody)))
	}

	place, err := parseDetails(respBody)
	if err != nil {
		return fail(resp.StatusCode, err)
	}
	return place, nil
}

// parseDetails decodes a Places Details body. Every requested field must be present;
// a missing field is an error, never a zero value.
func parseDetails(body []byte) (*model.Place, error) {
	var dr detailsResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, eris.Wrap(err, "unmarshal response")
	}

	r := dr.Result
	switch {
	case r == nil:
		return nil, eris.Errorf("response has no result (status %q)", dr.Status)
	case r.FormattedAddress == nil:
		return nil, eris.New("result missing formatted_address")
	case r.Name == nil:
		return nil, eris.New("result missing name")
	case r.Geometry == nil || r.Geometry.Location == nil:
		return nil, eris.New("result missing geometry.location")
	case r.Geometry.Location.Lat == nil || r.Geometry.Location.Lng == nil:
		return nil, eris.New("result missing geometry.location lat/lng")
	}

	lat, lng := *r.Geometry.Location.Lat, *r.Geometry.Location.Lng
	if !finite(lat) || !finite(lng) {
		return nil, eris.Errorf("result has non-finite coordinates (%v, %v)", lat, lng)
	}

	return &model.Place{
		FormattedAddress: *r.FormattedAddress,
		Name:             *r.Name,
		Location:         model.LatLng{Lat: lat, Lng: lng},
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// redactKey strips the query string from URL errors so the API key never reaches logs.
func redactKey(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
			u.RawQuery = ""
			urlErr.URL = u.String()
		}
	}
	return err
}

func snippet(body []byte) string {
	const maxLen = 256
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
