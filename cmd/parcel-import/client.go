package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"landregistry/internal/registry/handler"
	"landregistry/internal/registry/models"
	"landregistry/pkg/platform/httputil"
)

type registryClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newRegistryClient(baseURL, token string) *registryClient {
	return &registryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// register posts one property and returns the id the registry allocated.
func (c *registryClient) register(ctx context.Context, req *handler.RegisterPropertyRequest) (models.PropertyID, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/properties", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("post property: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var e httputil.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			return 0, fmt.Errorf("register failed with status %d", resp.StatusCode)
		}
		return 0, fmt.Errorf("register failed: %s: %s", e.Error, e.ErrorDescription)
	}

	var out handler.RegisterPropertyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return out.ID, nil
}
