package bible

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LoadError reports a data fetch that failed on both the direct path and
// the API fallback.
type LoadError struct {
	Filename string
	Direct   error
	Fallback error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v (api fallback: %v)", e.Filename, e.Direct, e.Fallback)
}

// Loader fetches JSON documents from the reader's data host. The direct
// path GET {base}/{filename} is tried first; if the host answers with HTML
// or a body that is not valid JSON, the allow-listed
// GET {base}/api/json/{filename} endpoint is used instead.
type Loader struct {
	BaseURL string
	Client  *http.Client
}

// NewLoader returns a Loader against the given base URL.
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch retrieves one JSON document, falling back to the API endpoint when
// the direct path fails.
func (l *Loader) Fetch(ctx context.Context, filename string) ([]byte, error) {
	data, directErr := l.get(ctx, l.BaseURL+"/"+filename)
	if directErr == nil {
		return data, nil
	}

	data, fallbackErr := l.get(ctx, l.BaseURL+"/api/json/"+filename)
	if fallbackErr == nil {
		return data, nil
	}

	return nil, &LoadError{Filename: filename, Direct: directErr, Fallback: fallbackErr}
}

// Translation fetches and decodes one translation file.
func (l *Loader) Translation(ctx context.Context, id string) (*Translation, error) {
	data, err := l.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return Decode(id, data)
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// SPA hosts answer missing files with the index page and a 200, so an
	// HTML reply is a miss even when the status looks fine.
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("%s: got HTML instead of JSON", url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", url, err)
	}

	// Catches HTML index pages served without the header as well as
	// truncated or corrupt files.
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s: body is not valid JSON", url)
	}

	return body, nil
}
