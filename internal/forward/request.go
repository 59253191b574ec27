package forward

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
)

// Request carries everything needed to dispatch one outbound call. It is
// built per inbound request and discarded after the response is relayed.
type Request struct {
	Method    string
	TargetURL string
	Query     url.Values
	Header    http.Header
	Body      []byte
	// Stream is the sniffed "stream" flag from the request body. It only
	// selects the relay strategy and never alters the body itself.
	Stream bool
}

// NewRequest buffers the inbound body and derives the outbound request.
// The Host and Authorization headers are dropped so the backend never sees
// the proxy's credential.
func NewRequest(r *http.Request, targetURL string) (*Request, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:    r.Method,
		TargetURL: targetURL,
		Query:     r.URL.Query(),
		Header:    filterRequestHeaders(r.Header),
		Body:      body,
		Stream:    sniffStream(body),
	}, nil
}

func filterRequestHeaders(in http.Header) http.Header {
	out := make(http.Header, len(in))
	for key, values := range in {
		if http.CanonicalHeaderKey(key) == "Host" || http.CanonicalHeaderKey(key) == "Authorization" {
			continue
		}
		out[key] = values
	}
	return out
}

// sniffStream inspects the body for a boolean "stream" field. Anything that
// does not decode as such defaults to the buffered strategy.
func sniffStream(body []byte) bool {
	if len(body) == 0 {
		return false
	}

	var payload struct {
		Stream bool `json:"stream"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}

	return payload.Stream
}
