package file

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/Davphla/kiln-sos/internal/logging"
	"github.com/Davphla/kiln-sos/provider"
	"github.com/Davphla/kiln-sos/provider/codec"
	"github.com/Davphla/kiln-sos/rate"
	"github.com/go-kit/log/level"
)

type Option func(*Source)

// WithDecoder overrides the decoder picked from the file extension
func WithDecoder(decodeFn codec.DecodeFunc) Option {
	return func(s *Source) {
		s.decode = decodeFn
	}
}

var _ provider.Source = (*Source)(nil)

// NewSource returns a Source reading the dataset name from fsys
func NewSource(fsys fs.FS, name string, opts ...Option) *Source {
	s := &Source{fsys: fsys, name: name}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Source reads one dataset file, the decoder follows the file extension unless WithDecoder is given
type Source struct {
	fsys   fs.FS
	name   string
	decode codec.DecodeFunc
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) FetchObservations(ctx context.Context) ([]rate.Observation, error) {
	logger := logging.FromContext(ctx)

	decodeFn := s.decode
	if decodeFn == nil {
		var err error
		if decodeFn, err = codec.ForExtension(s.name); err != nil {
			return nil, fmt.Errorf("pick decoder: %w", err)
		}
	}

	b, err := fs.ReadFile(s.fsys, s.name)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", s.name, err)
	}

	list, err := decodeFn(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.name, err)
	}

	_ = level.Info(logger).Log("msg", "observations loaded", "source", s.name, "count", len(list))

	return list, nil
}
