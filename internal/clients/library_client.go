// internal/clients/library_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"librarysim/internal/library"
	"librarysim/internal/wishlist"
)

// LibraryClient talks to a running library API.
type LibraryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLibraryClient uses http.DefaultClient when hc is nil.
func NewLibraryClient(baseURL string, hc *http.Client) *LibraryClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &LibraryClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// APIError is a non-outcome failure reported by the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("library api: status %d: %s", e.StatusCode, e.Message)
}

func (c *LibraryClient) Borrow(ctx context.Context, patron string, id int) (library.OutcomeResponse, error) {
	return c.circulate(ctx, "borrow", patron, id)
}

func (c *LibraryClient) Confirm(ctx context.Context, patron string, id int) (library.OutcomeResponse, error) {
	return c.circulate(ctx, "confirm", patron, id)
}

func (c *LibraryClient) Return(ctx context.Context, patron string, id int) (library.OutcomeResponse, error) {
	return c.circulate(ctx, "return", patron, id)
}

// circulate returns refused outcomes such as duplicate_order as values;
// only transport and request errors are returned as errors.
func (c *LibraryClient) circulate(ctx context.Context, action, patron string, id int) (library.OutcomeResponse, error) {
	path := fmt.Sprintf("/patrons/%s/%s/%d", url.PathEscape(patron), action, id)

	var out library.OutcomeResponse
	status, body, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		if status >= http.StatusBadRequest {
			return out, apiError(status, body)
		}
		return out, fmt.Errorf("decode %s response: %w", action, err)
	}
	if out.Outcome == "" {
		return out, apiError(status, body)
	}
	return out, nil
}

// Next returns the summary of the book under the server's catalog cursor.
func (c *LibraryClient) Next(ctx context.Context) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/books/next", nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", apiError(status, body)
	}

	var out struct {
		Book string `json:"book"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode next response: %w", err)
	}
	return out.Book, nil
}

func (c *LibraryClient) Wishlist(ctx context.Context, patron string) (wishlist.Entry, error) {
	var e wishlist.Entry
	status, body, err := c.do(ctx, http.MethodGet, "/patrons/"+url.PathEscape(patron)+"/wishlist", nil)
	if err != nil {
		return e, err
	}
	if status != http.StatusOK {
		return e, apiError(status, body)
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return e, fmt.Errorf("decode wishlist response: %w", err)
	}
	return e, nil
}

func (c *LibraryClient) RegisterPatron(ctx context.Context, kind, name string) (library.PatronView, error) {
	var p library.PatronView
	payload, err := json.Marshal(map[string]string{"kind": kind, "name": name})
	if err != nil {
		return p, err
	}

	status, body, err := c.do(ctx, http.MethodPost, "/patrons", payload)
	if err != nil {
		return p, err
	}
	if status != http.StatusCreated {
		return p, apiError(status, body)
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return p, fmt.Errorf("decode patron response: %w", err)
	}
	return p, nil
}

func (c *LibraryClient) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func apiError(status int, body []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error == "" {
		e.Error = strings.TrimSpace(string(body))
	}
	return &APIError{StatusCode: status, Message: e.Error}
}
