package model

import "net/url"

// Bookmark is one row of a saved-places CSV export.
type Bookmark struct {
	Row     int      `json:"row"` // 1-based data row, header excluded
	Title   string   `json:"title"`
	Note    *string  `json:"note,omitempty"`
	URL     *url.URL `json:"-"`
	Comment *string  `json:"comment,omitempty"`
}

// RawURL returns the bookmark URL as a string, or "" when unset.
func (b Bookmark) RawURL() string {
	if b.URL == nil {
		return ""
	}
	return b.URL.String()
}

// PlaceID is the opaque feature ID embedded in a bookmark URL.
type PlaceID string

// PlaceIDResult is the outcome of extracting a PlaceID from a URL.
// The zero value is NotFound.
type PlaceIDResult struct {
	ID    PlaceID
	Found bool
}

// Found returns a successful extraction result.
func Found(id PlaceID) PlaceIDResult {
	return PlaceIDResult{ID: id, Found: true}
}

// NotFound returns an empty extraction result.
func NotFound() PlaceIDResult {
	return PlaceIDResult{}
}
