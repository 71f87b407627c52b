package orders

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `Order number,Head,Body,Legs,Address
1,1,1,2,Street 1
2,7,1,4,Street 2
`

func serveFeed(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSourceFetch(t *testing.T) {
	srv := serveFeed(t, http.StatusOK, sampleFeed)
	path := filepath.Join(t.TempDir(), "orders.csv")

	// A stale copy must be overwritten
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the feed itself ......................................"), 0600))

	src := NewSource(path, WithHTTPClient(srv.Client()))
	rows, err := src.Fetch(context.Background(), srv.URL+"/orders.csv")
	require.NoError(t, err)

	want := []Row{
		{"Order number": "1", "Head": "1", "Body": "1", "Legs": "2", "Address": "Street 1"},
		{"Order number": "2", "Head": "7", "Body": "1", "Legs": "4", "Address": "Street 2"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleFeed, string(onDisk))
	assert.Equal(t, path, src.Path())
}

func TestSourceFetchDownloadErrors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := serveFeed(t, http.StatusNotFound, "missing")
		src := NewSource(filepath.Join(t.TempDir(), "orders.csv"), WithHTTPClient(srv.Client()))

		_, err := src.Fetch(context.Background(), srv.URL)
		var dlErr *DownloadError
		require.True(t, errors.As(err, &dlErr))
		assert.Equal(t, http.StatusNotFound, dlErr.StatusCode)
	})

	t.Run("unreachable host", func(t *testing.T) {
		srv := serveFeed(t, http.StatusOK, sampleFeed)
		url := srv.URL
		srv.Close()

		src := NewSource(filepath.Join(t.TempDir(), "orders.csv"))
		_, err := src.Fetch(context.Background(), url)
		var dlErr *DownloadError
		require.True(t, errors.As(err, &dlErr))
		assert.NotNil(t, dlErr.Err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := serveFeed(t, http.StatusOK, sampleFeed)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		src := NewSource(filepath.Join(t.TempDir(), "orders.csv"), WithHTTPClient(srv.Client()))
		_, err := src.Fetch(ctx, srv.URL)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantRows int
		wantLine int
		wantErr  string
	}{
		{
			name:     "byte order mark and padded header",
			input:    "\ufeffOrder number, Head, Body, Legs, Address\n3,2,3,4,Somewhere\n",
			wantRows: 1,
		},
		{
			name:     "header only",
			input:    "Order number,Head,Body,Legs,Address\n",
			wantRows: 0,
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: "empty orders file",
		},
		{
			name:     "missing column",
			input:    "Order number,Head,Body,Legs\n1,1,1,1\n",
			wantLine: 1,
			wantErr:  "missing columns: Address",
		},
		{
			name:     "ragged record",
			input:    "Order number,Head,Body,Legs,Address\n1,1,1\n",
			wantLine: 2,
			wantErr:  "wrong number of fields",
		},
		{
			name:     "bare quote",
			input:    "Order number,Head,Body,Legs,Address\n1,1,1,2,Str\"eet\n",
			wantLine: 2,
			wantErr:  "bare \"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Parse("orders.csv", strings.NewReader(tt.input))
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Len(t, rows, tt.wantRows)
				return
			}

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, tt.wantLine, parseErr.Line)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.csv"))
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestRowAccessors(t *testing.T) {
	row := Row{"Order number": "12", "Head": "3", "Body": "4", "Legs": "5", "Address": "Elm St"}

	assert.Equal(t, "12", row.OrderNumber())
	assert.Equal(t, "3", row.Head())
	assert.Equal(t, "4", row.Body())
	assert.Equal(t, "5", row.Legs())
	assert.Equal(t, "Elm St", row.Address())
	assert.NoError(t, row.Validate())

	delete(row, "Address")
	row["Legs"] = " "
	assert.EqualError(t, row.Validate(), `order "12" missing fields: Legs, Address`)
}
