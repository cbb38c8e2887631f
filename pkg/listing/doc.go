/*
Package listing implements the generic resource list controller.

A Controller[T] owns one paginated, filterable collection: its rows, filters,
page window, loading flag and last error. It is configured with a Fetcher
that performs the list call and is instantiated once per resource kind.

# Load protocol

Load builds the query by laying the current filters, then the per-call
overrides, over the current page window. String slices are joined with
commas and empty values are left out. The response is normalized by
DecodeEnvelope, which accepts either backend naming convention or a bare
array. A failure is stored in the state and returned to the caller as well.

SetFilters merges filters, resets the page to 1 and loads page 1 in one step.
SetPagination merges the page window and loads it.

Loads are numbered. A response that arrives after a newer load was issued is
discarded, and counted as stale in skyconsole_list_loads_total.

# Aggregates

Aggregate[M] holds a sibling read, such as summary counters, with its own
error so a failed aggregate never hides the list and vice versa.
*/
package listing
