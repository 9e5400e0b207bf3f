// Package driver runs batches of expansion requests.
//
// A request pairs one declaration with one operator. The driver:
//  1. Looks the request up in the expansion cache by ir.ExpansionKey
//  2. On a miss, calls derive.Expand and renders the fragment
//  3. Writes new expansions back to the cache
//
// Lookups and expansions run concurrently (bounded by WithLimit).
// Cache writes happen afterwards in request order, each stamped with the
// next value of the logical Clock, so a batch always leaves the same rows
// behind regardless of scheduling.
//
// Per-request failures (unsupported shapes) are reported on the Result and
// do not stop the batch. Cache failures abort it.
package driver
