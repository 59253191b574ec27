// Backend is a fake Ollama instance used for manual proxy testing.
// It provides /api/tags, /api/generate (with NDJSON streaming), and /health.
//
// Usage:
//
//	go run backend.go -port 11434
//
// The server logs all requests and honors the "stream" flag the same way a
// real Ollama instance does.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// GenerateRequest is the subset of the Ollama generate payload we care about.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateChunk is one NDJSON line of a streamed generation.
type GenerateChunk struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func main() {
	port := flag.Int("port", 11434, "port to listen on")
	flag.Parse()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{
				{"name": "llama3:latest"},
				{"name": "mistral:latest"},
			},
		})
	})

	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL.Path)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req GenerateRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if !req.Stream {
			json.NewEncoder(w).Encode(GenerateChunk{
				Model:    req.Model,
				Response: "stub response for: " + req.Prompt,
				Done:     true,
			})
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		words := []string{"stub", " streamed", " response"}
		enc := json.NewEncoder(w)
		for _, word := range words {
			enc.Encode(GenerateChunk{Model: req.Model, Response: word})
			flusher.Flush()
			time.Sleep(100 * time.Millisecond)
		}
		enc.Encode(GenerateChunk{Model: req.Model, Done: true})
		flusher.Flush()
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok"}`)
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("fake Ollama backend listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
