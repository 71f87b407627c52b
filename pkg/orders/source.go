package orders

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/robotorder/pkg/logging"
)

// Source downloads the orders feed to a local file and parses it.
type Source struct {
	client *http.Client
	path   string
	logger *logging.Logger
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(s *Source) {
		s.client = client
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *logging.Logger) SourceOption {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource creates a source that stores the downloaded feed at path.
func NewSource(path string, opts ...SourceOption) *Source {
	s := &Source{
		client: http.DefaultClient,
		path:   path,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the local path of the downloaded feed.
func (s *Source) Path() string {
	return s.path
}

// Fetch downloads url to the local path, overwriting any previous copy, and returns
// its rows in file order. There is no retry at this layer.
func (s *Source) Fetch(ctx context.Context, url string) ([]Row, error) {
	s.logger.Infof("Downloading orders from %s", url)

	if err := s.download(ctx, url); err != nil {
		return nil, err
	}

	rows, err := ParseFile(s.path)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Read %d orders from %s", len(rows), s.path)
	return rows, nil
}

func (s *Source) download(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &DownloadError{URL: url, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DownloadError{URL: url, StatusCode: resp.StatusCode}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &DownloadError{URL: url, Err: fmt.Errorf("failed to create directory: %w", err)}
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return &DownloadError{URL: url, Err: fmt.Errorf("failed to create %s: %w", s.path, err)}
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return &DownloadError{URL: url, Err: fmt.Errorf("failed to write %s: %w", s.path, err)}
	}

	if err := f.Close(); err != nil {
		return &DownloadError{URL: url, Err: fmt.Errorf("failed to write %s: %w", s.path, err)}
	}
	return nil
}

// ParseFile reads a CSV orders file from disk.
func ParseFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	return Parse(path, f)
}

// Parse reads CSV orders from r. name is only used in errors.
func Parse(name string, r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Path: name, Err: errors.New("empty orders file")}
	}
	if err != nil {
		return nil, csvError(name, err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	if err := checkHeader(header); err != nil {
		return nil, &ParseError{Path: name, Line: 1, Err: err}
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(name, err)
		}

		row := make(Row, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func csvError(name string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &ParseError{Path: name, Line: perr.Line, Err: perr.Err}
	}
	return &ParseError{Path: name, Err: err}
}
