package route

import (
	"strings"

	"github.com/angeloszaimis/ollama-proxy/internal/registry"
)

// Resolution is the outcome of routing one request path.
type Resolution struct {
	// BaseURL is the backend to dispatch to.
	BaseURL string
	// ForwardPath is the path to request on the backend, without a
	// leading slash.
	ForwardPath string
	// Instance is the matched instance name, or "default" when the first
	// segment selected no instance.
	Instance string
}

// Resolve decides which instance a request path addresses. When the first
// segment is a configured instance name it is stripped and the remainder is
// forwarded to that instance. Any other path goes to the default instance
// in full, first segment included, since that segment was never an instance
// selector.
func Resolve(reg *registry.Registry, path string) Resolution {
	path = strings.TrimPrefix(path, "/")

	first, rest, _ := strings.Cut(path, "/")

	if reg.Has(first) {
		return Resolution{
			BaseURL:     reg.Resolve(first),
			ForwardPath: rest,
			Instance:    first,
		}
	}

	return Resolution{
		BaseURL:     reg.Default(),
		ForwardPath: path,
		Instance:    "default",
	}
}
