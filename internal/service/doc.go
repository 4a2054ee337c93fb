// Package service implements the orchestration core: batch content
// generation, automated publishing with destination routing, and
// post-publish performance tracking. Services own the business flow
// and delegate persistence to stores, external calls to the
// generator/publisher/collector boundaries, and background scheduling
// to task request events.
package service
