// Package docparse is the boundary to document text extraction. The core
// only needs to detect which files are worth downloading and hand their bytes
// to an Extractor; the extraction engine itself is a pluggable collaborator.
package docparse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Kind names the document formats the pipeline recognizes.
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindDOCX    Kind = "docx"
	KindDOC     Kind = "doc"
	KindUnknown Kind = ""
)

// ErrUnsupported is returned by extractors for formats they cannot handle.
// Callers skip the file and move on; extraction is always best-effort.
var ErrUnsupported = errors.New("unsupported document format")

// Extractor turns raw document bytes into plain text.
type Extractor interface {
	Extract(data []byte, kind Kind) (string, error)
}

// DetectKind classifies a file by its URL and display name. Query strings are
// ignored; the name wins when the URL has no useful extension.
func DetectKind(url, name string) Kind {
	for _, candidate := range []string{strings.ToLower(strings.SplitN(url, "?", 2)[0]), strings.ToLower(name)} {
		switch {
		case strings.HasSuffix(candidate, ".pdf"):
			return KindPDF
		case strings.HasSuffix(candidate, ".docx"):
			return KindDOCX
		case strings.HasSuffix(candidate, ".doc"):
			return KindDOC
		}
	}
	return KindUnknown
}

// IsTarget reports whether the file looks like a document the pipeline should
// attempt to extract.
func IsTarget(url, name string) bool {
	if url == "" || name == "" {
		return false
	}
	return DetectKind(url, name) != KindUnknown
}

// Unsupported is the default extractor when no extraction engine is wired
// in. Every document degrades to "no text available".
type Unsupported struct{}

func (Unsupported) Extract([]byte, Kind) (string, error) {
	return "", ErrUnsupported
}

const downloadTimeout = 20 * time.Second

// Downloader fetches document bytes from the URLs found in messages and CV
// records. It uses its own timeout budget, independent of the API client.
type Downloader struct {
	HTTPClient *http.Client
	UserAgent  string
}

func NewDownloader(userAgent string) *Downloader {
	return &Downloader{
		HTTPClient: &http.Client{Timeout: downloadTimeout},
		UserAgent:  userAgent,
	}
}

// Fetch downloads the file at url. Any failure is returned as-is; callers
// treat a failed download as "no document" rather than a request failure.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: bad status: %s", url, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
