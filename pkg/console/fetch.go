package console

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/cuemby/skyconsole/pkg/listing"
)

func rawFetcher(list func(context.Context, url.Values) (json.RawMessage, error)) listing.Fetcher {
	return func(ctx context.Context, query url.Values) ([]byte, error) {
		return list(ctx, query)
	}
}

// valueFetcher adapts an endpoint returning a pointer; a nil result is the zero value
func valueFetcher[M any](get func(context.Context, url.Values) (*M, error)) listing.AggregateFetcher[M] {
	return func(ctx context.Context, query url.Values) (M, error) {
		var zero M
		v, err := get(ctx, query)
		if err != nil || v == nil {
			return zero, err
		}
		return *v, nil
	}
}
