package orders

import "fmt"

// DownloadError is returned when the orders feed cannot be fetched.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ParseError is returned when the downloaded file is not a usable CSV feed.
// Line is 0 when the error is not tied to a specific line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LookupError is returned when a part code has no catalog entry.
type LookupError struct {
	Kind PartKind
	Code string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown %s code %q", e.Kind, e.Code)
}
