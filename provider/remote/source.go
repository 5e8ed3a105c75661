package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Davphla/kiln-sos/internal/logging"
	"github.com/Davphla/kiln-sos/provider"
	"github.com/Davphla/kiln-sos/provider/codec"
	"github.com/Davphla/kiln-sos/provider/httputil"
	"github.com/Davphla/kiln-sos/rate"
	"github.com/go-kit/log/level"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultRetryNum       = 1
	DefaultRetryDuration  = 5 * time.Second
)

type Options struct {
	RetryNum       uint64
	RetryDuration  time.Duration
	RequestTimeout time.Duration
}

type Option func(*Source)

// WithRetryNum sets how many times a temporary failure is retried
func WithRetryNum(n uint64) Option {
	return func(s *Source) {
		s.opts.RetryNum = n
	}
}

// WithRetryDuration sets the constant pause between attempts
func WithRetryDuration(d time.Duration) Option {
	return func(s *Source) {
		s.opts.RetryDuration = d
	}
}

// WithRequestTimeout bounds the whole fetch including retries
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Source) {
		s.opts.RequestTimeout = d
	}
}

// WithDecoder forces a decoder instead of choosing one from the response Content-Type
// or the URL path extension
func WithDecoder(decodeFn codec.DecodeFunc) Option {
	return func(s *Source) {
		s.decode = decodeFn
	}
}

// WithName overrides the source name, the URL by default
func WithName(name string) Option {
	return func(s *Source) {
		s.name = name
	}
}

var _ provider.Source = (*Source)(nil)

func NewSource(client *http.Client, u url.URL, opts ...Option) *Source {
	s := &Source{
		url:    u,
		name:   u.String(),
		client: httputil.NewHTTPClient(client),
		opts: Options{
			RetryNum:       DefaultRetryNum,
			RetryDuration:  DefaultRetryDuration,
			RequestTimeout: DefaultRequestTimeout,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Source downloads one dataset, temporary failures are retried with a constant backoff
type Source struct {
	url    url.URL
	name   string
	decode codec.DecodeFunc
	client httputil.SourceHTTPClient
	opts   Options
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) FetchObservations(ctx context.Context) ([]rate.Observation, error) {
	logger := logging.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	b, err := retry.NewConstant(s.opts.RetryDuration)
	if err != nil {
		return nil, fmt.Errorf("retry backoff: %w", err)
	}

	b = retry.WithMaxRetries(s.opts.RetryNum, b)

	var resp httputil.Response
	attempt := 0
	if err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		r, err := s.client.Fetch(ctx, s.url)
		if err != nil {
			_ = level.Warn(logger).Log("msg", "fetch failed", "source", s.name, "attempt", attempt, "err", err)
			if temporary(err) {
				return retry.RetryableError(fmt.Errorf("fetch %s: %w", s.name, err))
			}

			return fmt.Errorf("fetch %s: %w", s.name, err)
		}

		resp = r

		return nil
	}); err != nil {
		return nil, err
	}

	decodeFn, err := s.decoder(resp.ContentType)
	if err != nil {
		return nil, fmt.Errorf("pick decoder: %w", err)
	}

	list, err := decodeFn(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.name, err)
	}

	_ = level.Info(logger).Log("msg", "observations loaded", "source", s.name, "count", len(list))

	return list, nil
}

func (s *Source) decoder(contentType string) (codec.DecodeFunc, error) {
	if s.decode != nil {
		return s.decode, nil
	}

	if decodeFn, err := codec.ForContentType(contentType); err == nil {
		return decodeFn, nil
	}

	return codec.ForExtension(s.url.Path)
}

// temporary reports whether err is worth another attempt. Transport failures are,
// and so are 5xx and 429 responses
func temporary(err error) bool {
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	return !errors.Is(err, context.Canceled)
}
