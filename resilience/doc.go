// Package resilience holds the two flow-control primitives voicemap uses when
// talking to a remote inference provider:
//
//   - Poll: bounded, constant-interval polling of an asynchronous job.
//   - RateLimiter: a token bucket that spaces outgoing requests.
//
// Neither retries a failed call. A transport error or a job the provider marks
// as failed is returned to the caller on first sight.
package resilience
