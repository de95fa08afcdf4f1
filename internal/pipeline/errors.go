package pipeline

import "fmt"

// MissingIdentifierError reports a bookmark whose URL carries no place ID.
type MissingIdentifierError struct {
	Row   int
	Title string
	URL   string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("pipeline: row %d %q: no place id in url %s", e.Row, e.Title, e.URL)
}

// RecordError ties a lookup failure to the bookmark that triggered it.
type RecordError struct {
	Row   int
	Title string
	URL   string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("pipeline: row %d %q (%s): %v", e.Row, e.Title, e.URL, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
