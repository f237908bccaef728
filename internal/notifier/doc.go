// Package notifier delivers outbound alerts to the chat adapter.
//
// Notify only enqueues. A single worker drains the queue in order, waits on a
// token-bucket limiter, and retries failed sends with jittered exponential
// backoff. Identical alerts inside the dedup window are dropped. Every
// delivery attempt outcome is kept in a small in-memory history, published on
// the event bus and appended to the audit store when one is configured.
package notifier
