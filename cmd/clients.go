package main

import (
	"time"

	"github.com/sells-group/places-geojson/internal/config"
	"github.com/sells-group/places-geojson/pkg/google"
)

// newPlacesClient builds the Places client from config. The API key is passed
// explicitly; the google package never reads the environment.
func newPlacesClient(gc config.GoogleConfig) google.Client {
	opts := []google.Option{
		google.WithTimeout(time.Duration(gc.TimeoutSecs) * time.Second),
		google.WithRateLimit(gc.RateLimit),
	}
	if gc.BaseURL != "" {
		opts = append(opts, google.WithBaseURL(gc.BaseURL))
	}
	return google.NewClient(gc.APIKey, opts...)
}
