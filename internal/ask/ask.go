// Package ask submits reader questions, together with the passage being
// read, to the query proxy. It shapes the request and sorts failures into
// the categories the view layer shows; no business logic lives here.
package ask

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Category sorts query failures for display.
type Category int

const (
	CategoryUpstream Category = iota
	CategoryUnauthorized
	CategoryBadRequest
	CategoryTimeout
	CategoryOverloaded
	CategoryMalformed
	CategoryConfig
)

// Error is a categorized query failure.
type Error struct {
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "query failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CategoryOf extracts the category from an error chain, defaulting to
// CategoryUpstream.
func CategoryOf(err error) Category {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Category
	}
	return CategoryUpstream
}

// clientTimeout is deliberately longer than the proxy's upstream deadline
// so the server can answer with its own timeout category first.
const clientTimeout = 125 * time.Second

// Client calls the query proxy endpoint.
type Client struct {
	BaseURL string
	Client  *http.Client
}

// NewClient returns a Client against the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: clientTimeout},
	}
}

// BuildPrompt assembles the single prompt submitted upstream: a passage
// header, the chapter's verses joined by spaces, a blank line, then the
// question.
func BuildPrompt(bookName string, chapter int, verses []string, question string) string {
	return fmt.Sprintf("Bible passage: %s %d\n\n%s\n\n%s",
		bookName, chapter, strings.Join(verses, " "), question)
}

type askRequest struct {
	Query    string `json:"query"`
	Password string `json:"password"`
}

type askResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error"`
}

// Ask submits a prompt with the shared secret and returns the reply.
// Failures come back as *Error with a display category.
func (c *Client) Ask(ctx context.Context, prompt, password string) (string, error) {
	body, err := json.Marshal(askRequest{Query: prompt, Password: password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/ask-query", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", &Error{
				Category: CategoryTimeout,
				Message:  "request timed out; try again or simplify your query",
				Err:      err,
			}
		}
		return "", &Error{Category: CategoryUpstream, Err: err}
	}
	defer resp.Body.Close()

	var out askResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode != http.StatusOK {
		if decodeErr != nil {
			return "", &Error{
				Category: CategoryMalformed,
				Message:  fmt.Sprintf("server returned an unreadable error (status %d)", resp.StatusCode),
				Err:      decodeErr,
			}
		}
		return "", classify(resp.StatusCode, out.Error)
	}

	if decodeErr != nil {
		return "", &Error{
			Category: CategoryMalformed,
			Message:  "invalid JSON response from server",
			Err:      decodeErr,
		}
	}
	return out.Reply, nil
}

func classify(status int, message string) *Error {
	e := &Error{Message: message}
	lower := strings.ToLower(message)
	switch {
	case status == http.StatusUnauthorized:
		e.Category = CategoryUnauthorized
	case status == http.StatusBadRequest:
		e.Category = CategoryBadRequest
	case status == http.StatusGatewayTimeout:
		e.Category = CategoryTimeout
	case strings.Contains(lower, "not configured"):
		e.Category = CategoryConfig
	case strings.Contains(lower, "high demand") || strings.Contains(lower, "overloaded"):
		e.Category = CategoryOverloaded
	default:
		e.Category = CategoryUpstream
	}
	return e
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
