// Package config defines the application configuration structure and
// loading. Values come from an optional YAML file and AUTOPRESS_
// prefixed environment variables, with env vars taking precedence,
// and are validated before use.
package config
