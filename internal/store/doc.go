// Package store defines the persistence interfaces the orchestration
// core depends on, along with the sentinel errors implementations
// return. Job and performance state lives in a keyed store with TTL
// (Redis implementation under internal/platform/redisjobs); generated
// content lives in a relational store (internal/platform/postgres).
// Consumers treat an expired entry exactly like a missing one.
package store
