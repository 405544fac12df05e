package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Source yields the bytes of one GeoJSON document.
type Source interface {
	// Name labels the resulting layer.
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads a local file.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return filepath.Base(s.Path) }

func (s FileSource) Open(context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// HTTPSource fetches a URL with GET.
type HTTPSource struct {
	URL    string
	Client *http.Client // nil means http.DefaultClient
}

func (s HTTPSource) Name() string {
	u := strings.TrimRight(s.URL, "/")
	if i := strings.LastIndexByte(u, '/'); i >= 0 && i < len(u)-1 {
		return u[i+1:]
	}
	return u
}

func (s HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	c := s.Client
	if c == nil {
		c = http.DefaultClient
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", s.URL, resp.Status)
	}
	return resp.Body, nil
}

// TextSource holds an in-memory document, such as pasted text.
type TextSource struct {
	Label string
	Text  string
}

func (s TextSource) Name() string { return s.Label }

func (s TextSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.Text)), nil
}

// SourceFor picks HTTPSource for http(s) URLs and FileSource otherwise.
func SourceFor(arg string) Source {
	lower := strings.ToLower(arg)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return HTTPSource{URL: arg}
	}
	return FileSource{Path: arg}
}
