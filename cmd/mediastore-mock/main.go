package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

type uploadRequest struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
}

type uploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	PublicURL string    `json:"publicUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		cdnBase = flag.String("cdn", "https://cdn.example.com", "public base URL for stored objects")
		ttl     = flag.Duration("ttl", 15*time.Minute, "upload ticket lifetime")
	)
	flag.Parse()

	var mu sync.Mutex
	objects := make(map[string]struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/uploads", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		var req uploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
			http.Error(w, "invalid upload request", http.StatusBadRequest)
			return
		}
		mu.Lock()
		objects[req.Path] = struct{}{}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(uploadResponse{
			UploadURL: fmt.Sprintf("http://localhost:%s/blob/%s", *port, req.Path),
			PublicURL: fmt.Sprintf("%s/%s", *cdnBase, req.Path),
			ExpiresAt: time.Now().UTC().Add(*ttl),
		})
	})
	mux.HandleFunc("/v1/objects", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		path := r.URL.Query().Get("path")
		mu.Lock()
		_, ok := objects[path]
		delete(objects, path)
		mu.Unlock()
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	addr := ":" + *port
	log.Printf("mock media store listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
