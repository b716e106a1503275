// Package engine provides the HTTP client for the external grammar
// correction service.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"redline/api/internal/editor"
)

// SampleCorrections is the static example set used as a fallback when the
// engine is unreachable and the client was built with debug fallback enabled.
// It keeps the editor demoable without the model; it is not a production
// contract.
var SampleCorrections = []editor.Correction{
	{
		ID:         1,
		Kind:       "spelling",
		Original:   "ia",
		Corrected:  "is",
		StartIndex: 5,
		EndIndex:   7,
		Message:    "Correct your spelling",
	},
	{
		ID:         2,
		Kind:       "grammar",
		Original:   "ran",
		Corrected:  "run",
		StartIndex: 15,
		EndIndex:   18,
		Message:    "Correct your tense",
	},
}

// Client talks to the correction engine's /correct endpoint.
type Client struct {
	baseURL  string
	http     *http.Client
	fallback []editor.Correction
}

// NewClient creates an engine client. When debugFallback is set, transport
// and server failures return SampleCorrections instead of an error.
func NewClient(baseURL string, debugFallback bool) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	if debugFallback {
		c.fallback = SampleCorrections
	}
	return c
}

type correctRequest struct {
	Text string `json:"text"`
}

type correctResponse struct {
	Corrections []editor.Correction `json:"corrections"`
}

// Correct submits text to the engine and returns its proposed corrections.
func (c *Client) Correct(ctx context.Context, text string) ([]editor.Correction, error) {
	payload, err := json.Marshal(correctRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal correct request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/correct", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build correct request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.degrade(fmt.Errorf("call correction engine: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.degrade(fmt.Errorf("correction engine status %d", resp.StatusCode))
	}

	var decoded correctResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return c.degrade(fmt.Errorf("decode correction response: %w", err))
	}
	if decoded.Corrections == nil {
		return []editor.Correction{}, nil
	}
	return decoded.Corrections, nil
}

func (c *Client) degrade(err error) ([]editor.Correction, error) {
	if c.fallback == nil {
		return nil, err
	}
	log.Printf("engine: falling back to sample corrections: %v", err)
	return c.fallback, nil
}
