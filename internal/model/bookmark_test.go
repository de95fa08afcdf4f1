package model

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceIDResult_ZeroValueIsNotFound(t *testing.T) {
	t.Parallel()

	var r PlaceIDResult
	assert.False(t, r.Found)
	assert.Equal(t, NotFound(), r)
}

func TestFound(t *testing.T) {
	t.Parallel()

	r := Found("0x1:0x2")
	assert.True(t, r.Found)
	assert.Equal(t, PlaceID("0x1:0x2"), r.ID)
}

func TestBookmarkRawURL(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://www.google.com/maps/place/Foo")
	require.NoError(t, err)

	assert.Equal(t, "https://www.google.com/maps/place/Foo", Bookmark{URL: u}.RawURL())
	assert.Empty(t, Bookmark{}.RawURL())
}
