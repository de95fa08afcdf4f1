// Package bookmark reads saved-place CSV exports and extracts place IDs from their URLs.
package bookmark

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/places-geojson/internal/model"
)

// Column names of a saved-places export. Matching is case-sensitive.
const (
	ColTitle   = "Title"
	ColNote    = "Note"
	ColURL     = "URL"
	ColComment = "Comment"
)

// requiredCols must appear in the header. Note and Comment may be absent and read as nil.
var requiredCols = []string{ColTitle, ColURL}

// ReadOptions configures Read.
type ReadOptions struct {
	// Encoding is a WHATWG encoding label such as "windows-1252".
	// Empty means UTF-8 with an optional byte order mark.
	Encoding string
}

// MalformedRecordError reports a CSV row that cannot be turned into a Bookmark.
type MalformedRecordError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("bookmark: row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("bookmark: row %d: invalid %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Read parses every data row of a saved-places CSV into bookmarks, in file order.
// The first row must be a header naming the Title, Note, URL and Comment columns.
func Read(ctx context.Context, r io.Reader, opts ReadOptions) ([]model.Bookmark, error) {
	decoded, err := decode(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("bookmark: csv is empty, expected a header row")
	}
	if err != nil {
		return nil, eris.Wrap(err, "bookmark: read header")
	}

	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.TrimSpace(col)] = i
	}
	for _, col := range requiredCols {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Errorf("bookmark: missing required column %q", col)
		}
	}

	bookmarks := make([]model.Bookmark, 0)
	for row := 1; ; row++ {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "bookmark: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedRecordError{Row: row, Err: eris.Wrap(err, "read row")}
		}

		b, err := parseRecord(row, record, colIdx)
		if err != nil {
			return nil, err
		}
		zap.L().Debug("bookmark: record", zap.Int("row", row), zap.String("title", b.Title), zap.String("url", b.RawURL()))
		bookmarks = append(bookmarks, b)
	}

	return bookmarks, nil
}

func parseRecord(row int, record []string, colIdx map[string]int) (model.Bookmark, error) {
	title := getCol(record, colIdx, ColTitle)
	if title == "" {
		return model.Bookmark{}, &MalformedRecordError{Row: row, Field: ColTitle, Err: eris.New("value is required")}
	}

	rawURL := getCol(record, colIdx, ColURL)
	if rawURL == "" {
		return model.Bookmark{}, &MalformedRecordError{Row: row, Field: ColURL, Err: eris.New("value is required")}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.Bookmark{}, &MalformedRecordError{Row: row, Field: ColURL, Value: rawURL, Err: eris.Wrap(err, "parse url")}
	}
	if !u.IsAbs() {
		return model.Bookmark{}, &MalformedRecordError{Row: row, Field: ColURL, Value: rawURL, Err: eris.New("url is not absolute")}
	}

	return model.Bookmark{
		Row:     row,
		Title:   title,
		Note:    optionalCol(record, colIdx, ColNote),
		URL:     u,
		Comment: optionalCol(record, colIdx, ColComment),
	}, nil
}

// decode wraps r so the CSV reader always sees UTF-8.
func decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}

	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "bookmark: unsupported encoding %q", encoding)
	}
	return enc.NewDecoder().Reader(r), nil
}

// getCol safely retrieves a trimmed column value from a CSV row.
func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func optionalCol(row []string, colIdx map[string]int, col string) *string {
	v := getCol(row, colIdx, col)
	if v == "" {
		return nil
	}
	return &v
}
