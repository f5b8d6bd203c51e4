// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pdf talks to the external HTML-to-PDF rendering engine. The
// engine receives self-contained HTML (all CSS and images inlined) and
// needs no network access of its own. Calls go through a circuit breaker
// so a down engine fails fast instead of stacking up blocked renders.
package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"docnexus/internal/apperr"
)

// Engine converts a self-contained HTML document to PDF bytes.
type Engine interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Client is the HTTP client for the rendering engine
// (POST /render with {"html": ...} returning application/pdf).
type Client struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a PDF engine client with the given base URL and
// per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:    "pdf-engine",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

type renderRequest struct {
	HTML string `json:"html"`
}

// Render sends the HTML to the engine and returns the PDF bytes. All
// failures, including an open breaker, surface as external dependency
// errors so callers can apply their own retry policy.
func (c *Client) Render(ctx context.Context, html string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.doRender(ctx, html)
	})
	if err != nil {
		return nil, apperr.External("pdf engine", err)
	}
	return result.([]byte), nil
}

func (c *Client) doRender(ctx context.Context, html string) ([]byte, error) {
	payload, err := json.Marshal(renderRequest{HTML: html})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	url := c.baseURL + "/render"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engine error (status %d): %s", resp.StatusCode, truncate(body, 200))
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("engine returned empty document")
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
