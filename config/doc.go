// Package config handles loading and parsing of configuration from environment
// variables and an optional YAML file. It defines the application configuration
// structure including the bind address, API token, Ollama instance list, and
// debug toggle.
package config
