package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound call, streamed or not.
const DefaultTimeout = 300 * time.Second

// hopHeaders must not be relayed back to the caller: the reconstructed
// payload no longer matches the backend's transfer framing.
var hopHeaders = []string{
	"Content-Encoding",
	"Content-Length",
	"Transfer-Encoding",
	"Connection",
}

// Engine dispatches proxied requests to a backend and relays the response,
// selecting a buffered or streaming relay per request.
type Engine struct {
	logger *slog.Logger
	client *http.Client
}

func NewEngine(logger *slog.Logger) *Engine {
	return NewEngineWithTimeout(logger, DefaultTimeout)
}

func NewEngineWithTimeout(logger *slog.Logger, timeout time.Duration) *Engine {
	return &Engine{
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// relay is one strategy for moving the backend response to the caller.
// A returned *Error means nothing was written yet and the caller can still
// receive a clean error response.
type relay interface {
	run(ctx context.Context, w http.ResponseWriter) *Error
}

// Forward dispatches the request and relays the response to w. It returns
// a non-nil *Error only when no response bytes have been written.
func (e *Engine) Forward(ctx context.Context, w http.ResponseWriter, req *Request) *Error {
	var rel relay
	if req.Stream {
		rel = &streamRelay{engine: e, request: req}
	} else {
		rel = &bufferedRelay{engine: e, request: req}
	}

	return rel.run(ctx, w)
}

func (e *Engine) newOutbound(ctx context.Context, r *Request) (*http.Request, error) {
	out, err := http.NewRequestWithContext(ctx, r.Method, r.TargetURL, bytes.NewReader(r.Body))
	if err != nil {
		return nil, err
	}

	if r.Header != nil {
		out.Header = r.Header.Clone()
	}
	if len(r.Query) > 0 {
		out.URL.RawQuery = r.Query.Encode()
	}

	return out, nil
}

// bufferedRelay awaits the full backend response, reconstructs the payload
// as JSON, and relays it with hop-by-hop headers stripped.
type bufferedRelay struct {
	engine  *Engine
	request *Request
}

func (b *bufferedRelay) run(ctx context.Context, w http.ResponseWriter) *Error {
	out, err := b.engine.newOutbound(ctx, b.request)
	if err != nil {
		return classify(err)
	}

	resp, err := b.engine.client.Do(out)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify(err)
	}

	payload := reconstruct(raw, b.engine.logger)

	header := w.Header()
	for key, values := range filterResponseHeaders(resp.Header) {
		header[key] = values
	}
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(payload); err != nil {
		b.engine.logger.Debug("caller went away during buffered write", slog.Any("err", err))
	}

	return nil
}

// reconstruct passes valid JSON through untouched. Anything else is wrapped
// so a non-JSON backend reply never fails the whole request.
func reconstruct(raw []byte, logger *slog.Logger) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}

	if json.Valid(raw) {
		return raw
	}

	logger.Warn("could not parse backend response as JSON, wrapping raw text")
	wrapped, err := json.Marshal(map[string]string{"raw_response": string(raw)})
	if err != nil {
		return []byte("{}")
	}
	return wrapped
}

func filterResponseHeaders(in http.Header) http.Header {
	out := make(http.Header, len(in))
	for key, values := range in {
		if isHopHeader(key) {
			continue
		}
		out[key] = values
	}
	return out
}

func isHopHeader(key string) bool {
	for _, h := range hopHeaders {
		if http.CanonicalHeaderKey(key) == h {
			return true
		}
	}
	return false
}

// streamRelay forwards backend bytes to the caller as they arrive, one
// flush per chunk. Once the status line has been relayed a backend failure
// can only truncate the stream.
type streamRelay struct {
	engine  *Engine
	request *Request
}

func (s *streamRelay) run(ctx context.Context, w http.ResponseWriter) *Error {
	out, err := s.engine.newOutbound(ctx, s.request)
	if err != nil {
		return classify(err)
	}

	resp, err := s.engine.client.Do(out)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 32*1024)
	chunks := 0

	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			chunks++
			if _, werr := w.Write(buf[:n]); werr != nil {
				s.engine.logger.Debug("caller went away during stream",
					slog.Int("chunks", chunks),
					slog.Any("err", werr))
				return nil
			}
			if flusher != nil {
				flusher.Flush()
			}
		}

		if err == io.EOF {
			s.engine.logger.Debug("stream relay complete", slog.Int("chunks", chunks))
			return nil
		}
		if err != nil {
			// The status line is already on the wire, so the stream
			// ends here honestly truncated.
			s.engine.logger.Error("stream relay truncated",
				slog.Int("chunks", chunks),
				slog.Any("err", err))
			return nil
		}
	}
}
