// Package redisjobs provides Redis-backed implementations of the
// store interfaces for job state, performance records and the
// fine-tuning dataset. Records are JSON documents with a bounded TTL;
// updates go through optimistic WATCH transactions so concurrent
// mutations of the same key serialize without locks.
package redisjobs
