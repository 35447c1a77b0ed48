// SPDX-License-Identifier: MPL-2.0

// Package fetch resolves declared external artifacts to local files.
//
// A download is skipped when the local copy carries the same modification
// time as the remote resource: after every transfer the local file's mtime is
// set to the remote's reported last-modified time, which makes the mtime the
// freshness marker for later runs. No content hashing is performed.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrOfflineMissingArtifact is the sentinel error wrapped by OfflineMissingArtifactError.
var ErrOfflineMissingArtifact = errors.New("artifact missing in offline mode")

type (
	// OfflineMissingArtifactError is returned when offline mode is active and
	// the artifact has not been downloaded before.
	OfflineMissingArtifactError struct {
		Target string
		URI    string
	}

	// Fetcher downloads artifacts over http(s) and copies file: URIs.
	Fetcher struct {
		client *http.Client
		now    func() time.Time
	}

	// Option configures a Fetcher.
	Option func(*Fetcher)

	// remote is an opened source resource.
	remote struct {
		body         io.ReadCloser
		lastModified time.Time
		// disposition is the raw Content-Disposition header, if any.
		disposition string
	}
)

// Error implements the error interface.
func (e *OfflineMissingArtifactError) Error() string {
	return fmt.Sprintf("target is missing and being offline: %s (from %s)", e.Target, e.URI)
}

// Unwrap returns ErrOfflineMissingArtifact for errors.Is() compatibility.
func (e *OfflineMissingArtifactError) Unwrap() error { return ErrOfflineMissingArtifact }

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithClock replaces time.Now, used when the remote reports no modification time.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{client: http.DefaultClient, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FileName returns the last path segment of uri, ignoring query and fragment.
func FileName(uri *url.URL) string {
	p := uri.Path
	if p == "" {
		p = uri.Opaque
	}
	return p[strings.LastIndex(p, "/")+1:]
}

// Download resolves uri to a file inside dir and returns its path.
//
// When offline, an existing target is returned unchanged and a missing one
// fails with *OfflineMissingArtifactError. Otherwise the remote resource is
// opened and transferred unless the local file's mtime equals the remote's
// last-modified time. A Content-Disposition filename hint renames the
// transferred file.
func (f *Fetcher) Download(ctx context.Context, offline bool, dir string, uri *url.URL) (string, error) {
	name := FileName(uri)
	if name == "" {
		return "", fmt.Errorf("cannot derive a file name from %s", uri)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}
	target := filepath.Join(dir, name)

	if offline {
		if _, err := os.Stat(target); err == nil {
			return target, nil
		}
		return "", &OfflineMissingArtifactError{Target: target, URI: uri.String()}
	}

	src, err := f.open(ctx, uri)
	if err != nil {
		return "", err
	}
	defer src.body.Close() //nolint:errcheck // read-only stream

	if info, statErr := os.Stat(target); statErr == nil && sameInstant(info.ModTime(), src.lastModified) {
		return target, nil
	}

	if err := transfer(src.body, target); err != nil {
		return "", err
	}

	if hint := dispositionName(src.disposition); hint != "" {
		renamed := filepath.Join(dir, hint)
		if err := os.Rename(target, renamed); err != nil {
			return "", fmt.Errorf("rename %s to %s: %w", target, renamed, err)
		}
		target = renamed
	}

	if err := os.Chtimes(target, src.lastModified, src.lastModified); err != nil {
		return "", fmt.Errorf("set modification time of %s: %w", target, err)
	}
	return target, nil
}

// open opens the resource behind uri.
func (f *Fetcher) open(ctx context.Context, uri *url.URL) (*remote, error) {
	switch uri.Scheme {
	case "file":
		p := filepath.FromSlash(uri.Path)
		file, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", uri, err)
		}
		info, err := file.Stat()
		if err != nil {
			file.Close() //nolint:errcheck // best-effort cleanup
			return nil, fmt.Errorf("stat %s: %w", uri, err)
		}
		return &remote{body: file, lastModified: info.ModTime()}, nil

	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri.String(), http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request for %s: %w", uri, err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", uri, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close() //nolint:errcheck // best-effort cleanup
			return nil, fmt.Errorf("get %s: unexpected status %s", uri, resp.Status)
		}
		lastModified := f.now()
		if header := resp.Header.Get("Last-Modified"); header != "" {
			if parsed, parseErr := http.ParseTime(header); parseErr == nil {
				lastModified = parsed
			}
		}
		return &remote{
			body:         resp.Body,
			lastModified: lastModified,
			disposition:  resp.Header.Get("Content-Disposition"),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported URI scheme %q in %s", uri.Scheme, uri)
	}
}

// transfer writes src to target, replacing any previous content.
func transfer(src io.Reader, target string) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close() //nolint:errcheck // the copy error is reported
		return fmt.Errorf("transfer to %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	return nil
}

// dispositionName extracts the file name hint of a Content-Disposition
// header. Only the base name is honoured so the hint cannot leave the
// destination directory.
func dispositionName(header string) string {
	if !strings.Contains(header, "=") {
		return ""
	}
	name := ""
	if _, params, err := mime.ParseMediaType(header); err == nil {
		name = params["filename"]
	}
	if name == "" {
		name = strings.Trim(strings.SplitN(header, "=", 2)[1], `"; `)
	}
	name = path.Base(filepath.ToSlash(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// sameInstant compares modification times at millisecond resolution.
func sameInstant(a, b time.Time) bool {
	return a.Truncate(time.Millisecond).Equal(b.Truncate(time.Millisecond))
}
