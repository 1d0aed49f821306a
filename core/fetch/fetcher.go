// Package fetch implements the Loader interface.
// Documents are read from local files, or fetched with an HTTP GET when the
// location is an http(s) URL.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gaurav-prasanna/blockpipe/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "blockpipe/1.0 (https://github.com/gaurav-prasanna/blockpipe)"
	maxDocumentSize  = 32 << 20
)

// Loader loads documents from files and URLs.
type Loader struct {
	client *http.Client
}

// New creates a Loader with a sensible timeout.
func New() *Loader {
	return &Loader{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// IsURL reports whether location names an http(s) resource.
func IsURL(location string) bool {
	parsed, err := url.Parse(location)
	return err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// Load reads the document at location.
func (l *Loader) Load(ctx context.Context, location string) (*core.Document, error) {
	if IsURL(location) {
		return l.fetch(ctx, location)
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return &core.Document{Location: location, Content: string(data)}, nil
}

func (l *Loader) fetch(ctx context.Context, location string) (*core.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,text/plain")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, location)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return &core.Document{Location: location, Content: string(body)}, nil
}
