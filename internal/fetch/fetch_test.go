// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

var remoteStamp = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func newArtifactServer(t *testing.T, hits *atomic.Int32, headers map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		_, _ = w.Write([]byte("jar-bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadHTTPSetsModTime(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newArtifactServer(t, &hits, map[string]string{"Last-Modified": remoteStamp.Format(http.TimeFormat)})
	dir := filepath.Join(t.TempDir(), "lib", "main")

	f := New(WithHTTPClient(srv.Client()))
	got, err := f.Download(context.Background(), false, dir, mustParse(t, srv.URL+"/repo/foo-1.0.jar"))
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if want := filepath.Join(dir, "foo-1.0.jar"); got != want {
		t.Fatalf("Download() = %q, want %q", got, want)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "jar-bytes" {
		t.Errorf("content = %q, want %q", data, "jar-bytes")
	}
	info, err := os.Stat(got)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.ModTime().Equal(remoteStamp) {
		t.Errorf("ModTime() = %v, want %v", info.ModTime(), remoteStamp)
	}
}

func TestDownloadSkipsWhenModTimeMatches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newArtifactServer(t, &hits, map[string]string{"Last-Modified": remoteStamp.Format(http.TimeFormat)})
	dir := t.TempDir()
	target := filepath.Join(dir, "foo.jar")
	if err := os.WriteFile(target, []byte("local"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(target, remoteStamp, remoteStamp); err != nil {
		t.Fatal(err)
	}

	f := New(WithHTTPClient(srv.Client()))
	got, err := f.Download(context.Background(), false, dir, mustParse(t, srv.URL+"/foo.jar"))
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if got != target {
		t.Fatalf("Download() = %q, want %q", got, target)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "local" {
		t.Errorf("content = %q, local copy should be untouched", data)
	}
}

func TestDownloadReplacesStaleCopy(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newArtifactServer(t, &hits, map[string]string{"Last-Modified": remoteStamp.Format(http.TimeFormat)})
	dir := t.TempDir()
	target := filepath.Join(dir, "foo.jar")
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := remoteStamp.Add(-time.Hour)
	if err := os.Chtimes(target, stale, stale); err != nil {
		t.Fatal(err)
	}

	if _, err := New(WithHTTPClient(srv.Client())).Download(context.Background(), false, dir, mustParse(t, srv.URL+"/foo.jar")); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "jar-bytes" {
		t.Errorf("content = %q, want refreshed content", data)
	}
}

func TestDownloadHonoursContentDisposition(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newArtifactServer(t, &hits, map[string]string{
		"Content-Disposition": `attachment; filename="bar-2.0.jar"`,
	})
	dir := t.TempDir()
	stamp := time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)

	f := New(WithHTTPClient(srv.Client()), WithClock(func() time.Time { return stamp }))
	got, err := f.Download(context.Background(), false, dir, mustParse(t, srv.URL+"/download?id=7"))
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if want := filepath.Join(dir, "bar-2.0.jar"); got != want {
		t.Fatalf("Download() = %q, want %q", got, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "download")); !os.IsNotExist(err) {
		t.Errorf("original name should have been renamed away, stat err = %v", err)
	}
	info, _ := os.Stat(got)
	if !info.ModTime().Equal(stamp) {
		t.Errorf("ModTime() = %v, want %v (clock fallback)", info.ModTime(), stamp)
	}
}

func TestDownloadOffline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := New(WithHTTPClient(&http.Client{Transport: failingTransport{t: t}}))
	uri := mustParse(t, "https://repo.example.org/foo.jar")

	_, err := f.Download(context.Background(), true, dir, uri)
	if !errors.Is(err, ErrOfflineMissingArtifact) {
		t.Fatalf("Download() error = %v, want ErrOfflineMissingArtifact", err)
	}
	var missing *OfflineMissingArtifactError
	if !errors.As(err, &missing) || missing.Target != filepath.Join(dir, "foo.jar") {
		t.Fatalf("Download() error = %#v, want target %q", err, filepath.Join(dir, "foo.jar"))
	}

	if err := os.WriteFile(filepath.Join(dir, "foo.jar"), []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := f.Download(context.Background(), true, dir, uri)
	if err != nil {
		t.Fatalf("Download() with cached copy error = %v", err)
	}
	if got != filepath.Join(dir, "foo.jar") {
		t.Errorf("Download() = %q", got)
	}
}

func TestDownloadFileURI(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	src := filepath.Join(home, "vendor", "baz.jar")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("baz"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(src, remoteStamp, remoteStamp); err != nil {
		t.Fatal(err)
	}
	uri, err := ResolveURI("vendor/baz.jar", home)
	if err != nil {
		t.Fatalf("ResolveURI() error = %v", err)
	}

	dir := filepath.Join(home, "lib", "main")
	got, err := New().Download(context.Background(), false, dir, uri)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	info, err := os.Stat(got)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.ModTime().Equal(remoteStamp) {
		t.Errorf("ModTime() = %v, want %v", info.ModTime(), remoteStamp)
	}
}

func TestDownloadErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	f := New(WithHTTPClient(srv.Client()))

	tests := []struct {
		name string
		uri  string
	}{
		{name: "not found", uri: srv.URL + "/missing.jar"},
		{name: "unsupported scheme", uri: "ftp://repo.example.org/foo.jar"},
		{name: "no file name", uri: srv.URL + "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := f.Download(context.Background(), false, t.TempDir(), mustParse(t, tt.uri)); err == nil {
				t.Fatalf("Download(%q) expected error", tt.uri)
			}
		})
	}
}

func TestDispositionName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: ""},
		{header: "inline", want: ""},
		{header: `attachment; filename="a.jar"`, want: "a.jar"},
		{header: "attachment; filename=b.jar", want: "b.jar"},
		{header: `attachment; filename="../../etc/c.jar"`, want: "c.jar"},
	}
	for _, tt := range tests {
		if got := dispositionName(tt.header); got != tt.want {
			t.Errorf("dispositionName(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

type failingTransport struct{ t *testing.T }

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.t.Error("offline download must not touch the network")
	return nil, errors.New("offline")
}
