// Package postgres implements the content store on PostgreSQL.
// Generated content outlives the Redis job records, so it gets a
// durable home; everything else job-related stays in Redis.
package postgres
