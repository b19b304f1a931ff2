// Package admission implements process-wide admission control for the
// storefront HTTP pipeline.
//
// Every inbound request passes through the Gate middleware, which consumes
// one token from a shared TokenBucket before any business logic runs. When
// the bucket is empty the request is rejected with 429 Too Many Requests
// and a Retry-After hint; the downstream handler is never invoked.
//
// The bucket is constructed once at process start and injected wherever it
// is needed. There is no ambient global state and no persistence: a fresh
// process starts with a full bucket.
package admission
