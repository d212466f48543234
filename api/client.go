package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"stopusing/client/transport"
)

// Envelope is the standard response wrapper every backend endpoint uses.
type Envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client maps domain operations one-to-one onto backend endpoints. It adds
// nothing beyond the transport's contract except unwrapping the response
// envelope; transport errors propagate unchanged.
type Client struct {
	t *transport.Client
}

func New(t *transport.Client) *Client {
	return &Client{t: t}
}

func call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any, opts ...transport.CallOption) (T, error) {
	var zero T
	raw, err := c.t.Do(ctx, method, path, query, body, opts...)
	if err != nil {
		return zero, err
	}
	if raw == nil {
		return zero, nil
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("error decoding response envelope: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return zero, nil
	}
	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return zero, fmt.Errorf("error decoding response data: %w", err)
	}
	return data, nil
}
