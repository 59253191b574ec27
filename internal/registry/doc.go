// Package registry holds the immutable mapping from Ollama instance names to
// their base URLs, parsed once at startup from the OLLAMA_INSTANCES setting.
package registry
