package bible

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoaderFetchDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/en_kjv.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleTranslation))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL)
	trans, err := l.Translation(context.Background(), "en_kjv.json")
	if err != nil {
		t.Fatalf("Translation: %v", err)
	}
	if len(trans.Books()) != 2 {
		t.Errorf("books = %d, want 2", len(trans.Books()))
	}
}

func TestLoaderFallsBackOnHTML(t *testing.T) {
	var fallbackHit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/en_kjv.json":
			// SPA host serving its index page for an unknown path.
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<!DOCTYPE html><html></html>"))
		case "/api/json/en_kjv.json":
			fallbackHit = true
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(sampleTranslation))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(srv.URL)
	if _, err := l.Translation(context.Background(), "en_kjv.json"); err != nil {
		t.Fatalf("Translation: %v", err)
	}
	if !fallbackHit {
		t.Error("api fallback was not used")
	}
}

func TestLoaderFallsBackOnInvalidJSON(t *testing.T) {
	var fallbackHit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/en_kjv.json":
			// A corrupt or truncated file with the right content type.
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{truncated garbage, not JSON`))
		case "/api/json/en_kjv.json":
			fallbackHit = true
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(sampleTranslation))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(srv.URL)
	trans, err := l.Translation(context.Background(), "en_kjv.json")
	if err != nil {
		t.Fatalf("Translation: %v", err)
	}
	if !fallbackHit {
		t.Error("api fallback was not used")
	}
	if len(trans.Books()) != 2 {
		t.Errorf("books = %d, want 2", len(trans.Books()))
	}
}

func TestLoaderRejectsHTMLBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Wrong content type header but an HTML body anyway.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("<html><body>not json</body></html>"))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL)
	_, err := l.Fetch(context.Background(), "en_kjv.json")
	if err == nil {
		t.Fatal("Fetch succeeded on HTML body")
	}
	le, ok := err.(*LoadError)
	if !ok {
		t.Fatalf("error type = %T, want *LoadError", err)
	}
	if le.Filename != "en_kjv.json" || le.Direct == nil || le.Fallback == nil {
		t.Errorf("LoadError = %+v", le)
	}
}

func TestLoaderBothPathsFail(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	l := NewLoader(srv.URL)
	if _, err := l.Fetch(context.Background(), "missing.json"); err == nil {
		t.Fatal("Fetch succeeded against 404 host")
	}
}
