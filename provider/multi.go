package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Davphla/kiln-sos/internal/logging"
	"github.com/Davphla/kiln-sos/rate"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
)

type RespStatus byte

const (
	RespStatusFailed RespStatus = iota
	RespStatusOK
)

// SourceInfo reports how a single source of a Multi behaved
type SourceInfo struct {
	Name         string
	Status       RespStatus
	Count        int
	ErrorMessage string
}

// Batch is the merged result of a Multi fetch
type Batch struct {
	Observations []rate.Observation
	Info         []SourceInfo
}

// Verify reports whether every source answered
func (b Batch) Verify() bool {
	for _, info := range b.Info {
		if info.Status != RespStatusOK {
			return false
		}
	}

	return true
}

var _ Source = (*Multi)(nil)

// NewMulti returns a Source that loads all sources concurrently and concatenates their
// observations in the order the sources are given
func NewMulti(sources ...Source) *Multi {
	return &Multi{sources: sources}
}

type Multi struct {
	sources []Source
}

func (m *Multi) Name() string {
	names := make([]string, len(m.sources))
	for i, s := range m.sources {
		names[i] = s.Name()
	}

	return strings.Join(names, "+")
}

// FetchObservations fails when any of the sources fails
func (m *Multi) FetchObservations(ctx context.Context) ([]rate.Observation, error) {
	batch, err := m.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	return batch.Observations, nil
}

// Fetch loads every source. The batch holds the observations of the sources that answered,
// the error joins the failures of the others
func (m *Multi) Fetch(ctx context.Context) (Batch, error) {
	var (
		group multierror.Group
		mtx   sync.Mutex
	)

	logger := logging.FromContext(ctx)
	results := make([][]rate.Observation, len(m.sources))
	info := make([]SourceInfo, len(m.sources))

	for i, source := range m.sources {
		i, source := i, source
		group.Go(func() error {
			report := SourceInfo{Name: source.Name()}

			list, err := source.FetchObservations(ctx)

			mtx.Lock()
			defer mtx.Unlock()

			if err != nil {
				report.Status = RespStatusFailed
				report.ErrorMessage = err.Error()
				info[i] = report
				_ = level.Warn(logger).Log("msg", "fetch observations failed", "source", report.Name, "err", err)
				return fmt.Errorf("source %s: %w", report.Name, err)
			}

			report.Status = RespStatusOK
			report.Count = len(list)
			info[i] = report
			results[i] = list

			return nil
		})
	}

	err := group.Wait().ErrorOrNil()

	batch := Batch{Info: info, Observations: make([]rate.Observation, 0)}
	for _, list := range results {
		batch.Observations = append(batch.Observations, list...)
	}

	return batch, err
}
