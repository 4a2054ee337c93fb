// Package task implements durable delayed task dispatch. Tasks are
// enqueued into per-category Redis sorted sets scored by their
// earliest allowed run time, with payloads stored alongside in a
// hash. Per-category worker pools poll for due tasks, claim them
// atomically and execute registered handlers, retrying transient
// failures with exponential backoff.
package task
