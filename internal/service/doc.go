// Package service implements the storage service: a single goroutine that
// owns the storage table and serves typed requests arriving on a channel,
// one at a time, in arrival order.
//
// Read requests carry a reply channel that receives exactly one value. Write
// requests are fire-and-forget and are applied before the next request is
// received, so a write is visible to every request that arrives after it.
package service
