package server

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/chazu/stackcalc/pkg/wire"
)

// Client calls the evaluation service.
type Client struct {
	evaluate *connect.Client[wire.EvaluateRequest, wire.EvaluateResponse]
}

// NewClient creates a client for the server at baseURL, for example
// "http://localhost:4100".
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(wire.Codec{})}, opts...)
	return &Client{
		evaluate: connect.NewClient[wire.EvaluateRequest, wire.EvaluateResponse](
			httpClient, baseURL+EvaluateProcedure, opts...),
	}
}

// Evaluate asks the server to evaluate source.
func (c *Client) Evaluate(ctx context.Context, source string, disassemble bool) (*wire.EvaluateResponse, error) {
	resp, err := c.evaluate.CallUnary(ctx, connect.NewRequest(&wire.EvaluateRequest{
		Source:      source,
		Disassemble: disassemble,
	}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
