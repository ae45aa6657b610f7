package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
)

type synopsisEntry struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Source      *string `json:"source,omitempty"`
}

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		data    = flag.String("data", "mock-synopsis.json", "path to mock data file")
		apiKey  = flag.String("api-key", "", "require this X-API-Key when set")
		verbose = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	file, err := os.ReadFile(*data)
	if err != nil {
		logger.Error("read mock data", slog.Any("error", err))
		os.Exit(1)
	}

	var payload map[string]synopsisEntry
	if err := json.Unmarshal(file, &payload); err != nil {
		logger.Error("parse mock data", slog.Any("error", err))
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/synopsis", func(w http.ResponseWriter, r *http.Request) {
		if *apiKey != "" && r.Header.Get("X-API-Key") != *apiKey {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		title := r.URL.Query().Get("title")
		if *verbose {
			logger.Info("synopsis lookup", slog.String("title", title))
		}
		entry, ok := payload[title]
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		if entry.Title == "" {
			entry.Title = title
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entry); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	addr := ":" + *port
	logger.Info("mock synopsis listening", slog.String("addr", addr), slog.Int("entries", len(payload)))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}
