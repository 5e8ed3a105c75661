package provider

import (
	"context"

	"github.com/Davphla/kiln-sos/rate"
)

// Source loads a collection of rate observations from a dataset. The calculator never talks to a
// Source itself, callers load the observations first and hand them over
//
//go:generate mockgen -source source.go -destination mock_source.go -package provider
type Source interface {
	// FetchObservations returns every observation of the dataset in dataset order
	FetchObservations(ctx context.Context) ([]rate.Observation, error)

	// Name identifies the dataset in logs and errors
	Name() string
}
