package registry

import (
	"fmt"
	"strings"
)

// FallbackURL is substituted when configuration yields no usable instances.
const FallbackURL = "http://localhost:11434"

// Entry is one parsed instance in configuration order.
type Entry struct {
	Name    string
	BaseURL string
}

// Registry maps instance names to base URLs. It is built once at startup
// and read-only afterwards, so it is safe to share across requests.
type Registry struct {
	backends   map[string]string
	names      []string
	defaultURL string
}

// Parse splits a comma-separated instance list into entries. Each token is
// either name:host:port or name:port (localhost assumed). Tokens with any
// other shape are skipped and returned verbatim for the caller to log.
func Parse(spec string) (entries []Entry, skipped []string) {
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		parts := strings.Split(token, ":")
		switch len(parts) {
		case 3:
			entries = append(entries, Entry{
				Name:    parts[0],
				BaseURL: fmt.Sprintf("http://%s:%s", parts[1], parts[2]),
			})
		case 2:
			entries = append(entries, Entry{
				Name:    parts[0],
				BaseURL: fmt.Sprintf("http://localhost:%s", parts[1]),
			})
		default:
			skipped = append(skipped, token)
		}
	}

	return entries, skipped
}

// New builds a registry from parsed entries. The first entry becomes the
// default instance. For duplicate names the last URL wins, but the name keeps
// its original position. An empty entry list yields a single synthetic
// default pointing at FallbackURL.
func New(entries []Entry) *Registry {
	r := &Registry{
		backends: make(map[string]string, len(entries)),
	}

	for _, e := range entries {
		if _, seen := r.backends[e.Name]; !seen {
			r.names = append(r.names, e.Name)
		}
		r.backends[e.Name] = e.BaseURL
	}

	if len(r.names) == 0 {
		r.backends["default"] = FallbackURL
		r.names = []string{"default"}
	}

	r.defaultURL = r.backends[r.names[0]]

	return r
}

// Resolve returns the base URL for the named instance, or the default
// instance's URL when the name is empty or unknown.
func (r *Registry) Resolve(name string) string {
	if url, ok := r.backends[name]; ok {
		return url
	}
	return r.defaultURL
}

// Has reports whether name is a configured instance.
func (r *Registry) Has(name string) bool {
	_, ok := r.backends[name]
	return ok
}

// Default returns the default instance's base URL.
func (r *Registry) Default() string {
	return r.defaultURL
}

// Names returns the instance names in configuration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}
