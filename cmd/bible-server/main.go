package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	slogmulti "github.com/samber/slog-multi"

	"bible-reader/internal/provider"
	"bible-reader/internal/server"
)

func main() {
	addr := flag.String("addr", ":3001", "listen address")
	dataDir := flag.String("data", "public", "directory holding translation and cross-reference JSON")
	logFile := flag.String("log-file", "", "also write JSON logs to this file")
	model := flag.String("model", "", "override the upstream model name")
	timeout := flag.Duration("timeout", 2*time.Minute, "upstream query deadline")
	flag.Parse()

	log := newLogger(*logFile)

	password := os.Getenv("BIBLE_READER_PASSWORD")
	apiKey := os.Getenv("ANTHROPIC_API_KEY")

	// The query endpoint degrades to a configuration error when secrets
	// are missing; the data endpoints stay up regardless.
	var prov provider.Provider
	if apiKey != "" {
		opts := []provider.AnthropicOption{provider.WithAPIKey(apiKey)}
		if *model != "" {
			opts = append(opts, provider.WithModel(*model))
		}
		prov = provider.NewAnthropic(opts...)
	} else {
		log.Warn("ANTHROPIC_API_KEY not set; query endpoint disabled")
	}
	if password == "" {
		log.Warn("BIBLE_READER_PASSWORD not set; query endpoint disabled")
	}

	srv := server.New(server.Config{
		DataDir:      *dataDir,
		Password:     password,
		QueryTimeout: *timeout,
		Logger:       log,
	}, prov)

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("listening", "addr", *addr, "data", *dataDir)
	if err := httpSrv.ListenAndServe(); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func newLogger(logFile string) *slog.Logger {
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, nil),
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Error("open log file", "path", logFile, "err", err)
			os.Exit(1)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, nil))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}
