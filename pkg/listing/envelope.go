package listing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cuemby/skyconsole/pkg/types"
)

// Envelope is a list response reduced to one shape. Nil fields were absent
// from the response.
type Envelope[T any] struct {
	Items []T
	Page  *int
	Size  *int
	Total *int64
}

// wireEnvelope accepts both field naming conventions used by the backend
type wireEnvelope[T any] struct {
	Records    []T    `json:"records"`
	Items      []T    `json:"items"`
	Page       *int   `json:"page"`
	Current    *int   `json:"current"`
	Size       *int   `json:"size"`
	PageSize   *int   `json:"pageSize"`
	Total      *int64 `json:"total"`
	TotalCount *int64 `json:"totalCount"`
}

// DecodeEnvelope normalizes a list response body. It accepts records or
// items for the rows, page or current, size or pageSize, total or
// totalCount, and also a bare JSON array. An empty or null body is an empty
// envelope.
func DecodeEnvelope[T any](raw []byte) (Envelope[T], error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Envelope[T]{Items: []T{}}, nil
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return Envelope[T]{}, fmt.Errorf("failed to decode list: %w", err)
		}
		return Envelope[T]{Items: nonNil(items)}, nil
	}

	var wire wireEnvelope[T]
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Envelope[T]{}, fmt.Errorf("failed to decode list envelope: %w", err)
	}

	env := Envelope[T]{
		Items: wire.Records,
		Page:  firstNonNil(wire.Page, wire.Current),
		Size:  firstNonNil(wire.Size, wire.PageSize),
		Total: firstNonNil(wire.Total, wire.TotalCount),
	}
	if env.Items == nil {
		env.Items = wire.Items
	}
	env.Items = nonNil(env.Items)
	return env, nil
}

// Apply resolves the envelope against the previously held pagination.
// Missing or non-positive page and size keep their previous values; a
// missing total falls back to the row count.
func (e Envelope[T]) Apply(prev types.Pagination) ([]T, types.Pagination) {
	next := prev
	if e.Page != nil && *e.Page > 0 {
		next.Page = *e.Page
	}
	if e.Size != nil && *e.Size > 0 {
		next.Size = *e.Size
	}
	if e.Total != nil {
		next.Total = *e.Total
	} else {
		next.Total = int64(len(e.Items))
	}
	return e.Items, next
}

func firstNonNil[V any](values ...*V) *V {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
