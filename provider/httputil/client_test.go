package httputil

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHTTPClient_UserAgent(t *testing.T) {
	t.Parallel()
	client := NewHTTPClient(http.DefaultClient)

	if diff := cmp.Diff("kiln-sos/0.0.0", client.UserAgent()); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}

func TestHTTPClient_Fetch(t *testing.T) {
	t.Parallel()

	const body = "Date,Close,Currency\n01/02/2025,1.0393,EURUSD\n"
	packed := gzipped(t, body)

	mux := http.NewServeMux()
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != defaultUserAgent {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/gzip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(packed)
	})
	mux.HandleFunc("/unavailable", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	testCases := []struct {
		name      string
		path      string
		expected  Response
		temporary bool
		err       error
	}{
		{
			name:     "test_fetch_plain",
			path:     "/plain",
			expected: Response{Body: []byte(body), ContentType: "text/csv; charset=utf-8"},
		},
		{
			name:     "test_fetch_gzip",
			path:     "/gzip",
			expected: Response{Body: []byte(body), ContentType: "text/csv"},
		},
		{
			name:      "test_fetch_unavailable",
			path:      "/unavailable",
			temporary: true,
			err:       ErrStatusCode,
		},
		{
			name: "test_fetch_not_found",
			path: "/missing",
			err:  ErrStatusCode,
		},
	}

	client := NewHTTPClient(srv.Client())
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			u, err := url.Parse(srv.URL + tc.path)
			if err != nil {
				t.Fatal(err)
			}

			got, err := client.Fetch(context.Background(), *u)
			if !errors.Is(err, tc.err) {
				t.Fatalf("got %v, want %v", err, tc.err)
			}

			if tc.err != nil {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("got %T, want *StatusError", err)
				}
				if diff := cmp.Diff(tc.temporary, statusErr.Temporary()); diff != "" {
					t.Errorf("mismatch (-want, +got):\n%s", diff)
				}
				return
			}

			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}
