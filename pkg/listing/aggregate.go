package listing

import (
	"context"
	"net/url"
	"sync"

	"github.com/cuemby/skyconsole/pkg/events"
	"github.com/cuemby/skyconsole/pkg/log"
	"github.com/cuemby/skyconsole/pkg/metrics"
	"github.com/rs/zerolog"
)

// AggregateFetcher performs one aggregate read
type AggregateFetcher[M any] func(ctx context.Context, query url.Values) (M, error)

// Aggregate holds a sibling read next to a list, such as summary counters.
// Its error is tracked apart from the list's, so either can fail without
// blocking the other.
type Aggregate[M any] struct {
	name      string
	fetch     AggregateFetcher[M]
	publisher events.Publisher
	logger    zerolog.Logger

	mu     sync.Mutex
	value  M
	err    error
	loaded bool
}

// NewAggregate creates an aggregate holder. Only WithPublisher applies.
func NewAggregate[M any](name string, fetch AggregateFetcher[M], opts ...Option) *Aggregate[M] {
	o := buildOptions(opts)
	return &Aggregate[M]{
		name:      name,
		fetch:     fetch,
		publisher: o.publisher,
		logger:    log.WithResource(name),
	}
}

// Load fetches the aggregate. On failure the previous value is kept, the
// error is recorded and also returned.
func (a *Aggregate[M]) Load(ctx context.Context, query url.Values) (M, error) {
	timer := metrics.NewTimer()
	value, err := a.fetch(ctx, query)
	timer.ObserveDurationVec(metrics.ListLoadDuration, a.name)

	a.mu.Lock()
	if err != nil {
		a.err = err
		a.mu.Unlock()

		metrics.ListLoadsTotal.WithLabelValues(a.name, "error").Inc()
		a.logger.Warn().Err(err).Msg("Aggregate load failed")
		events.Publish(a.publisher, events.EventAggregateFailed, err.Error(),
			map[string]string{"resource": a.name})
		var zero M
		return zero, err
	}
	a.value = value
	a.err = nil
	a.loaded = true
	a.mu.Unlock()

	metrics.ListLoadsTotal.WithLabelValues(a.name, "ok").Inc()
	events.Publish(a.publisher, events.EventAggregateLoaded, "aggregate loaded",
		map[string]string{"resource": a.name})
	return value, nil
}

// Value returns the last loaded value and whether any load succeeded
func (a *Aggregate[M]) Value() (M, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value, a.loaded
}

// Err returns the error of the latest load, nil after a success
func (a *Aggregate[M]) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}
