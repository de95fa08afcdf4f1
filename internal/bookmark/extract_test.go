package bookmark

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/places-geojson/internal/model"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtractPlaceID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want model.PlaceIDResult
	}{
		{
			name: "ftid suffix",
			raw:  "https://www.google.com/maps/place/E%26O+Kitchen+and+Bar/data=!4m2!3m1!1s0x8085808941977519:0x6a23af223bffdaf8",
			want: model.Found("0x8085808941977519:0x6a23af223bffdaf8"),
		},
		{
			name: "bare prefix payload",
			raw:  "https://www.google.com/maps/place/data=!4m2!3m1!1sXYZ",
			want: model.Found("XYZ"),
		},
		{
			name: "segment without prefix is kept",
			raw:  "https://www.google.com/maps/place/Golden+Gate+Park",
			want: model.Found("Golden+Gate+Park"),
		},
		{
			name: "other data payload is not stripped",
			raw:  "https://www.google.com/maps/place/data=!3m1!4b1",
			want: model.Found("data=!3m1!4b1"),
		},
		{
			name: "prefix stripped once",
			raw:  "https://www.google.com/maps/data=!4m2!3m1!1sdata=!4m2!3m1!1sABC",
			want: model.Found("data=!4m2!3m1!1sABC"),
		},
		{
			name: "prefix only",
			raw:  "https://www.google.com/maps/place/data=!4m2!3m1!1s",
			want: model.NotFound(),
		},
		{
			name: "no path",
			raw:  "https://www.google.com",
			want: model.NotFound(),
		},
		{
			name: "root path",
			raw:  "https://www.google.com/",
			want: model.NotFound(),
		},
		{
			name: "trailing slash",
			raw:  "https://www.google.com/maps/place/Foo/",
			want: model.NotFound(),
		},
		{
			name: "query string id is ignored",
			raw:  "https://maps.google.com/?cid=1234567890",
			want: model.NotFound(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractPlaceID(mustParse(t, tt.raw)))
		})
	}
}

func TestExtractPlaceID_Nil(t *testing.T) {
	t.Parallel()
	assert.Equal(t, model.NotFound(), ExtractPlaceID(nil))
}

func TestExtractPlaceID_KeepsSegmentEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want model.PlaceID
	}{
		{raw: "https://www.google.com/maps/place/E%26O+Kitchen", want: "E%26O+Kitchen"},
		{raw: "https://www.google.com/maps/place/data=!4m2!3m1!1s0x1%3A0x2", want: "0x1%3A0x2"},
		{raw: "https://www.google.com/maps/place/data=!4m2!3m1!1s0x1:0x2", want: "0x1:0x2"},
	}

	for _, tt := range tests {
		assert.Equal(t, model.Found(tt.want), ExtractPlaceID(mustParse(t, tt.raw)), tt.raw)
	}
}
