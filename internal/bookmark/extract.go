package bookmark

import (
	"net/url"
	"strings"

	"github.com/sells-group/places-geojson/internal/model"
)

// ftidPrefix precedes the feature ID in the last path segment of a saved-place URL.
const ftidPrefix = "data=!4m2!3m1!1s"

// ExtractPlaceID returns the place ID embedded in the last path segment of u.
// The ftidPrefix is stripped when present; otherwise the segment is used as-is.
// URLs with no path, a trailing slash, or nothing left after stripping are NotFound.
func ExtractPlaceID(u *url.URL) model.PlaceIDResult {
	if u == nil {
		return model.NotFound()
	}

	path := u.EscapedPath()
	if path == "" {
		return model.NotFound()
	}

	// The segment stays percent-encoded as written in the URL.
	segment := path[strings.LastIndex(path, "/")+1:]

	id := strings.TrimPrefix(segment, ftidPrefix)
	if id == "" {
		return model.NotFound()
	}
	return model.Found(model.PlaceID(id))
}
