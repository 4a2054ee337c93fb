// Package gemini implements the content generator on Google's Gemini
// API. The generator renders a prompt from a configurable template,
// requests a structured JSON article and maps provider failures onto
// the generation package's error taxonomy so the task runner can
// decide what to retry.
package gemini
