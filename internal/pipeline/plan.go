package pipeline

import (
	"github.com/sells-group/places-geojson/internal/bookmark"
	"github.com/sells-group/places-geojson/internal/model"
)

// Resolution is the extracted place ID for one bookmark.
type Resolution struct {
	Row     int           `json:"row"`
	Title   string        `json:"title"`
	URL     string        `json:"url"`
	PlaceID model.PlaceID `json:"place_id,omitempty"`
	Found   bool          `json:"found"`
}

// Plan extracts the place ID of every bookmark without performing any lookup.
func Plan(records []model.Bookmark) []Resolution {
	out := make([]Resolution, 0, len(records))
	for _, rec := range records {
		res := bookmark.ExtractPlaceID(rec.URL)
		out = append(out, Resolution{
			Row:     rec.Row,
			Title:   rec.Title,
			URL:     rec.RawURL(),
			PlaceID: res.ID,
			Found:   res.Found,
		})
	}
	return out
}

// distinctIDs returns the place IDs of resolved entries in first-seen order.
func distinctIDs(resolved []Resolution) []model.PlaceID {
	seen := make(map[model.PlaceID]bool, len(resolved))
	var ids []model.PlaceID
	for _, r := range resolved {
		if seen[r.PlaceID] {
			continue
		}
		seen[r.PlaceID] = true
		ids = append(ids, r.PlaceID)
	}
	return ids
}

// LookupCount returns how many billed requests a run over plan would issue.
func LookupCount(plan []Resolution) int {
	var found []Resolution
	for _, r := range plan {
		if r.Found {
			found = append(found, r)
		}
	}
	return len(distinctIDs(found))
}
