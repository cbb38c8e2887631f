package listing

import (
	"context"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"github.com/cuemby/skyconsole/pkg/events"
	"github.com/cuemby/skyconsole/pkg/log"
	"github.com/cuemby/skyconsole/pkg/metrics"
	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/rs/zerolog"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10

	pageKey = "page"
	sizeKey = "size"
)

// Fetcher performs one list call and returns the raw response body
type Fetcher func(ctx context.Context, query url.Values) ([]byte, error)

// State is a snapshot of one list
type State[T any] struct {
	Items      []T
	Filters    Filters
	Pagination types.Pagination
	Loading    bool
	Err        error
}

// PageRequest changes the page window. Zero fields keep their current value.
type PageRequest struct {
	Page int
	Size int
}

type options struct {
	publisher events.Publisher
	pageSize  int
	defaults  Filters
}

// Option configures a Controller or an Aggregate
type Option func(*options)

// WithPublisher sends list change events to p
func WithPublisher(p events.Publisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

// WithPageSize sets the initial page size
func WithPageSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithDefaults sets the initial filters
func WithDefaults(filters Filters) Option {
	return func(o *options) {
		o.defaults = filters.Clone()
	}
}

func buildOptions(opts []Option) options {
	o := options{pageSize: DefaultPageSize, defaults: Filters{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Controller owns the filter, pagination, loading and error state of one
// paginated collection, and the protocol that reloads it.
//
// Every load takes a generation number. When a load completes after a newer
// one was issued, its result is discarded and its error is not recorded, so
// the state always reflects the latest request.
type Controller[T any] struct {
	resource  string
	fetch     Fetcher
	publisher events.Publisher
	logger    zerolog.Logger

	mu         sync.Mutex
	items      []T
	filters    Filters
	pagination types.Pagination
	err        error
	inflight   int
	generation uint64
}

// NewController creates a list controller for resource at page 1 with the
// default filters
func NewController[T any](resource string, fetch Fetcher, opts ...Option) *Controller[T] {
	o := buildOptions(opts)
	return &Controller[T]{
		resource:  resource,
		fetch:     fetch,
		publisher: o.publisher,
		logger:    log.WithResource(resource),
		items:     []T{},
		filters:   o.defaults,
		pagination: types.Pagination{
			Page: DefaultPage,
			Size: o.pageSize,
		},
	}
}

// Resource returns the name the controller was created with
func (c *Controller[T]) Resource() string {
	return c.resource
}

// Load fetches the list with the current filters and pagination, with
// overrides laid over them for this call only. A positive "page" or "size"
// in overrides replaces the current window. The error is recorded in the
// state and also returned.
func (c *Controller[T]) Load(ctx context.Context, overrides Filters) error {
	c.mu.Lock()
	query := c.queryLocked(overrides)
	gen := c.beginLocked()
	c.mu.Unlock()

	return c.run(ctx, gen, query)
}

// SetFilters merges filters into the current ones, resets the page to 1 and
// reloads
func (c *Controller[T]) SetFilters(ctx context.Context, filters Filters) error {
	c.mu.Lock()
	c.filters = c.filters.Merge(filters)
	c.pagination.Page = DefaultPage
	query := c.queryLocked(Filters{pageKey: DefaultPage})
	gen := c.beginLocked()
	c.mu.Unlock()

	return c.run(ctx, gen, query)
}

// SetPagination merges req into the current window and reloads it
func (c *Controller[T]) SetPagination(ctx context.Context, req PageRequest) error {
	c.mu.Lock()
	if req.Page > 0 {
		c.pagination.Page = req.Page
	}
	if req.Size > 0 {
		c.pagination.Size = req.Size
	}
	query := c.queryLocked(nil)
	gen := c.beginLocked()
	c.mu.Unlock()

	return c.run(ctx, gen, query)
}

// Reload fetches the list again with its current filters and pagination
func (c *Controller[T]) Reload(ctx context.Context) error {
	return c.Load(ctx, nil)
}

// State returns a snapshot of the list
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[T]{
		Items:      slices.Clone(c.items),
		Filters:    c.filters.Clone(),
		Pagination: c.pagination,
		Loading:    c.inflight > 0,
		Err:        c.err,
	}
}

func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Controller[T]) Pagination() types.Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pagination
}

func (c *Controller[T]) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Clone()
}

// Loading reports whether any load is in flight
func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Err returns the error of the latest load, nil after a success
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// queryLocked layers the current window, the filters and the overrides, in
// that order, then pins page and size
func (c *Controller[T]) queryLocked(overrides Filters) url.Values {
	page := overrides.Int(pageKey)
	if page == 0 {
		page = c.pagination.Page
	}
	size := overrides.Int(sizeKey)
	if size == 0 {
		size = c.pagination.Size
	}

	query := c.filters.Merge(overrides).Encode()
	query.Set(pageKey, strconv.Itoa(page))
	query.Set(sizeKey, strconv.Itoa(size))
	return query
}

func (c *Controller[T]) beginLocked() uint64 {
	c.generation++
	c.inflight++
	return c.generation
}

func (c *Controller[T]) run(ctx context.Context, gen uint64, query url.Values) error {
	timer := metrics.NewTimer()
	raw, err := c.fetch(ctx, query)

	var env Envelope[T]
	if err == nil {
		env, err = DecodeEnvelope[T](raw)
	}
	timer.ObserveDurationVec(metrics.ListLoadDuration, c.resource)

	c.mu.Lock()
	c.inflight--

	if gen != c.generation {
		c.mu.Unlock()
		metrics.ListLoadsTotal.WithLabelValues(c.resource, "stale").Inc()
		c.logger.Debug().Uint64("generation", gen).Msg("Discarding superseded list response")
		return err
	}

	if err != nil {
		c.err = err
		c.mu.Unlock()
		metrics.ListLoadsTotal.WithLabelValues(c.resource, "error").Inc()
		c.logger.Warn().Err(err).Str("query", query.Encode()).Msg("List load failed")
		events.Publish(c.publisher, events.EventListFailed, err.Error(),
			map[string]string{"resource": c.resource})
		return err
	}

	c.items, c.pagination = env.Apply(c.pagination)
	c.err = nil
	pagination := c.pagination
	c.mu.Unlock()

	metrics.ListLoadsTotal.WithLabelValues(c.resource, "ok").Inc()
	c.logger.Debug().
		Int("page", pagination.Page).
		Int("size", pagination.Size).
		Int64("total", pagination.Total).
		Msg("List loaded")
	events.Publish(c.publisher, events.EventListLoaded, "list loaded", map[string]string{
		"resource": c.resource,
		"page":     strconv.Itoa(pagination.Page),
		"total":    strconv.FormatInt(pagination.Total, 10),
	})
	return nil
}
