// Package domain defines the core business entities of the content
// automation pipeline: batch generation jobs and their tasks, generated
// content items, automated publishing jobs, destination sites and
// routing rules, and post-publish performance records. Entities carry
// their own validation and status-transition rules; persistence and
// orchestration live elsewhere.
package domain
