// Package api is the thin HTTP adapter over the orchestration
// services: it decodes and validates requests, invokes the service
// layer and maps service errors onto HTTP status codes without leaking
// internal details to clients.
package api
