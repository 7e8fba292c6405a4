// Package awstest points real AWS SDK clients at local HTTP servers.
package awstest

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// Isolate clears the AWS environment and points the shared config and
// credentials files at an empty temp dir, so config.LoadDefaultConfig sees
// nothing from the machine running the tests. It returns the temp dir.
func Isolate(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()

	for _, k := range []string{
		"AWS_PROFILE", "AWS_DEFAULT_PROFILE", "AWS_REGION", "AWS_DEFAULT_REGION",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN",
		"AWS_ENDPOINT_URL", "AWS_ENDPOINT_URL_STS", "AWS_ENDPOINT_URL_DYNAMODB",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_MAX_ATTEMPTS", "1")
	return dir
}

// Endpoint isolates the environment and sends every SDK request to url.
func Endpoint(t testing.TB, url string) {
	t.Helper()
	Isolate(t)
	t.Setenv("AWS_ENDPOINT_URL", url)
}

// ClosedEndpoint returns a local URL nothing listens on.
func ClosedEndpoint(t testing.TB) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return "http://" + addr
}

// Request is what the server saw of one call.
type Request struct {
	Header http.Header
	Form   url.Values
	Body   string
}

// Server is a test endpoint answering every request with one canned response.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
}

// NewServer starts a server replying with status, contentType and body, and
// points the SDK at it.
func NewServer(t testing.TB, status int, contentType, body string) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form, _ := url.ParseQuery(string(b))

		s.mu.Lock()
		s.requests = append(s.requests, Request{Header: r.Header.Clone(), Form: form, Body: string(b)})
		s.mu.Unlock()

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Amzn-Requestid", "c0ffee")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)

	Endpoint(t, s.URL)
	return s
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}
