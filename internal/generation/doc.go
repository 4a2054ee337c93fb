// Package generation defines the boundary between the orchestration
// core and external AI content-generation services. The core depends
// only on the Generator interface; concrete providers live under
// internal/platform (e.g. the Gemini implementation).
package generation
