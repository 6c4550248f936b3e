// Package fonts provides the font files the card renderer measures and draws
// text with.
package fonts

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/interactive-solutions/go-showcase"
	"github.com/interactive-solutions/go-showcase/render/vector"
)

// maxFontSize bounds a single font download.
const maxFontSize = 10 << 20

type embedded struct{}

// Embedded serves the Go font family compiled into the binary.
func Embedded() showcase.FontSource {
	return embedded{}
}

func (embedded) Load(ctx context.Context) (vector.Fonts, error) {
	return vector.Fonts{Regular: goregular.TTF, Bold: gobold.TTF}, nil
}

type HttpOption func(s *httpSource)

func SetHttpClient(client *retryablehttp.Client) HttpOption {
	return func(s *httpSource) {
		s.client = client
	}
}

// httpSource downloads both weights from a font host and keeps them once
// both downloads have succeeded. Failures are not cached.
type httpSource struct {
	client *retryablehttp.Client

	regularUrl string
	boldUrl    string

	mu     sync.Mutex
	cached *vector.Fonts
}

func NewHttpSource(regularUrl, boldUrl string, options ...HttpOption) showcase.FontSource {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	s := &httpSource{
		client:     client,
		regularUrl: regularUrl,
		boldUrl:    boldUrl,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

func (s *httpSource) Load(ctx context.Context) (vector.Fonts, error) {
	s.mu.Lock()
	cached := s.cached
	s.mu.Unlock()

	if cached != nil {
		return *cached, nil
	}

	regular, err := s.fetch(ctx, s.regularUrl)
	if err != nil {
		return vector.Fonts{}, errors.Wrap(err, "Failed to load regular font")
	}

	bold, err := s.fetch(ctx, s.boldUrl)
	if err != nil {
		return vector.Fonts{}, errors.Wrap(err, "Failed to load bold font")
	}

	loaded := vector.Fonts{Regular: regular, Bold: bold}

	s.mu.Lock()
	s.cached = &loaded
	s.mu.Unlock()

	return loaded, nil
}

func (s *httpSource) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", showcase.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("Unexpected response code %d received from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontSize))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read font from %s", url)
	}

	return data, nil
}
