package listing

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/cuemby/skyconsole/pkg/events"
	"github.com/cuemby/skyconsole/pkg/metrics"
	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID string `json:"id"`
}

// fakeFetcher answers list calls from a queue of responses
type fakeFetcher struct {
	mu        sync.Mutex
	queries   []url.Values
	responses []fakeResponse
}

type fakeResponse struct {
	body string
	err  error
	// wait, when set, blocks the call until closed
	wait chan struct{}
}

func (f *fakeFetcher) push(body string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeResponse{body: body, err: err})
}

func (f *fakeFetcher) pushBlocked(body string, err error) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	wait := make(chan struct{})
	f.responses = append(f.responses, fakeResponse{body: body, err: err, wait: wait})
	return wait
}

func (f *fakeFetcher) fetch(ctx context.Context, query url.Values) ([]byte, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	var resp fakeResponse
	if len(f.responses) > 0 {
		resp = f.responses[0]
		f.responses = f.responses[1:]
	}
	f.mu.Unlock()

	if resp.wait != nil {
		<-resp.wait
	}
	return []byte(resp.body), resp.err
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeFetcher) lastQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func ids(items []row) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

// TestDecodeEnvelope tests both naming conventions and bare arrays
func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		items []string
		page  *int
		size  *int
		total *int64
	}{
		{
			name:  "records page size total",
			body:  `{"records":[{"id":"a"}],"page":2,"size":20,"total":41}`,
			items: []string{"a"},
			page:  intPtr(2),
			size:  intPtr(20),
			total: int64Ptr(41),
		},
		{
			name:  "items current pageSize totalCount",
			body:  `{"items":[{"id":"a"},{"id":"b"}],"current":3,"pageSize":5,"totalCount":12}`,
			items: []string{"a", "b"},
			page:  intPtr(3),
			size:  intPtr(5),
			total: int64Ptr(12),
		},
		{
			name:  "records preferred over items",
			body:  `{"records":[],"items":[{"id":"x"}]}`,
			items: []string{},
		},
		{
			name:  "null records fall back to items",
			body:  `{"records":null,"items":[{"id":"x"}]}`,
			items: []string{"x"},
		},
		{
			name:  "page preferred over current",
			body:  `{"page":1,"current":9}`,
			items: []string{},
			page:  intPtr(1),
		},
		{
			name:  "bare array",
			body:  `[{"id":"n1"},{"id":"n2"}]`,
			items: []string{"n1", "n2"},
		},
		{
			name:  "empty body",
			body:  ``,
			items: []string{},
		},
		{
			name:  "null body",
			body:  ` null `,
			items: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope[row]([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.items, ids(env.Items))
			assert.NotNil(t, env.Items)
			assert.Equal(t, tt.page, env.Page)
			assert.Equal(t, tt.size, env.Size)
			assert.Equal(t, tt.total, env.Total)
		})
	}

	_, err := DecodeEnvelope[row]([]byte(`{"records":"nope"}`))
	assert.Error(t, err)
}

// TestEnvelopeApply tests fallbacks to the previous window and the row count
func TestEnvelopeApply(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		prev      types.Pagination
		wantItems int
		want      types.Pagination
	}{
		{
			name:      "server window",
			body:      `{"items":[{"id":"a"},{"id":"b"},{"id":"c"}],"page":2,"pageSize":20}`,
			prev:      types.Pagination{Page: 1, Size: 10, Total: 99},
			wantItems: 3,
			want:      types.Pagination{Page: 2, Size: 20, Total: 3},
		},
		{
			name: "missing window",
			body: `{"items":[],"total":7}`,
			prev: types.Pagination{Page: 4, Size: 25},
			want: types.Pagination{Page: 4, Size: 25, Total: 7},
		},
		{
			name:      "non-positive window",
			body:      `{"items":[{"id":"a"}],"page":0,"pageSize":-1,"total":1}`,
			prev:      types.Pagination{Page: 3, Size: 50},
			wantItems: 1,
			want:      types.Pagination{Page: 3, Size: 50, Total: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope[row]([]byte(tt.body))
			require.NoError(t, err)

			items, p := env.Apply(tt.prev)
			assert.Len(t, items, tt.wantItems)
			assert.Equal(t, tt.want, p)
		})
	}
}

// TestFiltersEncode tests query serialization
func TestFiltersEncode(t *testing.T) {
	f := Filters{
		"keyword": "",
		"status":  "ALL",
		"owner":   nil,
		"tags":    []string{"etl", "nightly"},
		"empty":   []string{},
		"enabled": true,
		"limit":   int64(5),
		"ratio":   0.5,
	}

	assert.Equal(t, url.Values{
		"status":  {"ALL"},
		"tags":    {"etl,nightly"},
		"enabled": {"true"},
		"limit":   {"5"},
		"ratio":   {"0.5"},
	}, f.Encode())
}

// TestFiltersMergeIsolated tests that merged filters share no slices with their sources
func TestFiltersMergeIsolated(t *testing.T) {
	tags := []string{"a"}
	base := Filters{"tags": tags, "keyword": "x"}
	merged := base.Merge(Filters{"keyword": "y"})

	tags[0] = "changed"
	assert.Equal(t, []string{"a"}, merged["tags"])
	assert.Equal(t, "y", merged["keyword"])
	assert.Equal(t, "x", base["keyword"])
}

// TestLoadQueryLayering tests the order in which query sources are applied
func TestLoadQueryLayering(t *testing.T) {
	f := &fakeFetcher{}
	c := NewController[row]("tasks", f.fetch,
		WithPageSize(20),
		WithDefaults(Filters{"keyword": "", "status": "ALL", "owner": nil, "tags": []string{}}))

	f.push(`{"records":[]}`, nil)
	require.NoError(t, c.Load(context.Background(), nil))
	assert.Equal(t, url.Values{"status": {"ALL"}, "page": {"1"}, "size": {"20"}}, f.lastQuery())

	f.push(`{"records":[]}`, nil)
	require.NoError(t, c.Load(context.Background(), Filters{"status": "FAILED", "page": 3, "tags": []string{"a", "b"}}))
	assert.Equal(t, url.Values{
		"status": {"FAILED"},
		"tags":   {"a,b"},
		"page":   {"3"},
		"size":   {"20"},
	}, f.lastQuery())

	// Overrides apply to one call only
	assert.Equal(t, "ALL", c.Filters()["status"])
}

// TestSetFiltersResetsPage tests that new filters always load page 1
func TestSetFiltersResetsPage(t *testing.T) {
	f := &fakeFetcher{}
	c := NewController[row]("tasks", f.fetch, WithDefaults(Filters{"status": "ALL"}))

	f.push(`{"records":[{"id":"a"}],"page":5,"size":10,"total":60}`, nil)
	require.NoError(t, c.SetPagination(context.Background(), PageRequest{Page: 5}))
	require.Equal(t, 5, c.Pagination().Page)

	calls := f.calls()
	wait := f.pushBlocked(`{"records":[{"id":"b"}],"total":1}`, nil)
	done := make(chan error, 1)
	go func() {
		done <- c.SetFilters(context.Background(), Filters{"keyword": "x"})
	}()

	require.Eventually(t, func() bool { return f.calls() == calls+1 }, time.Second, time.Millisecond)
	// The page reads 1 as soon as the call is issued
	assert.Equal(t, 1, c.Pagination().Page)
	assert.True(t, c.Loading())
	assert.Equal(t, url.Values{
		"status":  {"ALL"},
		"keyword": {"x"},
		"page":    {"1"},
		"size":    {"10"},
	}, f.lastQuery())

	close(wait)
	require.NoError(t, <-done)
	assert.Equal(t, calls+1, f.calls())
	assert.False(t, c.Loading())
	assert.Equal(t, []string{"b"}, ids(c.Items()))
	assert.Equal(t, Filters{"status": "ALL", "keyword": "x"}, c.Filters())
}

// TestSetPaginationMerges tests that zero fields keep the current window
func TestSetPaginationMerges(t *testing.T) {
	f := &fakeFetcher{}
	c := NewController[row]("nodes", f.fetch)

	f.push(`[]`, nil)
	require.NoError(t, c.SetPagination(context.Background(), PageRequest{Size: 50}))
	assert.Equal(t, "1", f.lastQuery().Get("page"))
	assert.Equal(t, "50", f.lastQuery().Get("size"))

	f.push(`[]`, nil)
	require.NoError(t, c.SetPagination(context.Background(), PageRequest{Page: 2}))
	assert.Equal(t, "2", f.lastQuery().Get("page"))
	assert.Equal(t, "50", f.lastQuery().Get("size"))
}

// TestLoadFailure tests that failures are recorded, returned and cleared on success
func TestLoadFailure(t *testing.T) {
	f := &fakeFetcher{}
	pub := events.NewBroker()
	pub.Start()
	defer pub.Stop()
	sub := pub.Subscribe()
	defer pub.Unsubscribe(sub)

	c := NewController[row]("tasks", f.fetch, WithPublisher(pub))

	f.push(`{"records":[{"id":"a"}]}`, nil)
	require.NoError(t, c.Reload(context.Background()))
	assert.Equal(t, events.EventListLoaded, (<-sub).Type)

	failure := errors.New("boom")
	f.push("", failure)
	err := c.Reload(context.Background())
	assert.ErrorIs(t, err, failure)

	state := c.State()
	assert.ErrorIs(t, state.Err, failure)
	assert.False(t, state.Loading)
	assert.Equal(t, []string{"a"}, ids(state.Items))
	assert.Equal(t, events.EventListFailed, (<-sub).Type)

	f.push(`{"records":[]}`, nil)
	require.NoError(t, c.Reload(context.Background()))
	assert.NoError(t, c.Err())
	assert.Empty(t, c.Items())
}

// TestMalformedResponse tests that undecodable bodies are load failures
func TestMalformedResponse(t *testing.T) {
	f := &fakeFetcher{}
	c := NewController[row]("tasks", f.fetch)

	f.push(`{"records":{}}`, nil)
	assert.Error(t, c.Reload(context.Background()))
	assert.Error(t, c.Err())
}

// TestStaleResponseDiscarded tests that an older response cannot overwrite a newer one
func TestStaleResponseDiscarded(t *testing.T) {
	f := &fakeFetcher{}
	c := NewController[row]("tasks", f.fetch)
	stale := metrics.ListLoadsTotal.WithLabelValues("tasks", "stale")
	before := testutil.ToFloat64(stale)

	first := f.pushBlocked(`{"records":[{"id":"old"}],"total":1}`, errors.New("late failure"))
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- c.SetFilters(context.Background(), Filters{"keyword": "a"})
	}()
	require.Eventually(t, func() bool { return f.calls() == 1 }, time.Second, time.Millisecond)

	f.push(`{"records":[{"id":"new"}],"total":1}`, nil)
	require.NoError(t, c.SetFilters(context.Background(), Filters{"keyword": "ab"}))
	assert.True(t, c.Loading())

	close(first)
	assert.Error(t, <-firstDone)

	state := c.State()
	assert.Equal(t, []string{"new"}, ids(state.Items))
	assert.NoError(t, state.Err)
	assert.False(t, state.Loading)
	assert.Equal(t, before+1, testutil.ToFloat64(stale))
}

// TestAggregate tests the sibling read and its independent error
func TestAggregate(t *testing.T) {
	failure := errors.New("metrics down")
	var fail bool
	var gotQuery url.Values
	agg := NewAggregate[types.TaskMetrics]("tasks.metrics", func(ctx context.Context, query url.Values) (types.TaskMetrics, error) {
		gotQuery = query
		if fail {
			return types.TaskMetrics{}, failure
		}
		return types.TaskMetrics{TotalTasks: 4}, nil
	})

	_, ok := agg.Value()
	assert.False(t, ok)

	m, err := agg.Load(context.Background(), url.Values{"range": {"7d"}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), m.TotalTasks)
	assert.Equal(t, "7d", gotQuery.Get("range"))

	fail = true
	_, err = agg.Load(context.Background(), nil)
	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, agg.Err(), failure)

	kept, ok := agg.Value()
	assert.True(t, ok)
	assert.Equal(t, int64(4), kept.TotalTasks)
}
