// Package events decouples the orchestration services from the task
// dispatch machinery. Services emit TaskRequestEvents describing the
// background work they need, optionally with a dispatch delay for
// staggered scheduling, and registered handlers turn those events
// into queued tasks.
package events
