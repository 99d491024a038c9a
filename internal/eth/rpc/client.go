// Package rpc provides a minimal JSON-RPC 2.0 client for Ethereum nodes.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	ethtypes "github.com/ananthanir/ethlite/internal/eth/types"
	"github.com/ananthanir/ethlite/internal/metrics"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// DefaultTimeout bounds a single HTTP round trip.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

var (
	// ErrRPCResponse indicates a malformed or mismatched RPC response.
	ErrRPCResponse = &ethlerr.EthliteError{
		Code:     "RPC_INVALID_RESPONSE",
		Message:  "invalid RPC response",
		ExitCode: ethlerr.ExitNetwork,
	}

	// ErrNilResponse indicates a null result where a value was required.
	ErrNilResponse = &ethlerr.EthliteError{
		Code:     "RPC_NIL_RESPONSE",
		Message:  "nil RPC response",
		ExitCode: ethlerr.ExitNetwork,
	}

	// ErrCallFailed indicates the node refused or reverted an eth_call.
	ErrCallFailed = &ethlerr.EthliteError{
		Code:     "CALL_FAILED",
		Message:  "eth_call failed",
		ExitCode: ethlerr.ExitNetwork,
	}
)

// Client is a minimal Ethereum JSON-RPC client. It is safe for concurrent use.
type Client struct {
	url        string
	httpClient *http.Client
	limiter    *RateLimiter
	retry      RetryConfig
	metrics    *metrics.Metrics
	idCounter  atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimiter throttles requests to the endpoint.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(c *Client) { c.limiter = rl }
}

// WithRetryConfig sets how transient transport failures are retried.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithMetrics records calls into m instead of metrics.Global.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient creates a new RPC client for the endpoint URL.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		url:        endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retry:      DefaultRetryConfig(),
		metrics:    metrics.Global,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client talks to.
func (c *Client) URL() string {
	return c.url
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object returned by the node.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

func (e *Error) details() map[string]string {
	d := map[string]string{
		"code":    strconv.Itoa(e.Code),
		"message": e.Message,
	}
	if len(e.Data) > 0 && string(e.Data) != "null" {
		d["data"] = strings.Trim(string(e.Data), `"`)
	}
	return d
}

// Call performs a JSON-RPC call, waiting on the rate limiter and retrying
// transient transport failures. A node-reported error is returned as *Error.
func (c *Client) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	cfg := c.retry
	onRetry := cfg.OnRetry
	cfg.OnRetry = func(attempt int, err error) {
		c.metrics.RecordRetry()
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}

	start := time.Now()
	result, err := Do(ctx, cfg, func() (json.RawMessage, error) {
		return c.do(ctx, method, params)
	})
	c.metrics.RecordRPCCall(method, time.Since(start), err)

	if err == nil {
		return result, nil
	}

	var rpcErr *Error
	var ee *ethlerr.EthliteError
	switch {
	case errors.As(err, &rpcErr):
		return nil, rpcErr
	case IsRetryable(err), !errors.As(err, &ee):
		return nil, ethlerr.WithDetails(
			ethlerr.WithCause(ethlerr.ErrNetworkError, err),
			map[string]string{"method": method, "endpoint": c.url},
		)
	default:
		return nil, err
	}
}

func (c *Client) do(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.url); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	id := c.idCounter.Add(1)
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      id,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, WrapRetryable(fmt.Errorf("sending HTTP request: %w", err))
	}
	// Body.Close error is intentionally ignored as it only fails if the
	// connection is already broken, and there's no recovery action.
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, WrapRetryable(fmt.Errorf("reading response body: %w", err))
	}

	switch {
	case httpResp.StatusCode == http.StatusTooManyRequests:
		c.pause(ctx, ParseRetryAfter(httpResp.Header.Get("Retry-After")))
		return nil, ErrRateLimited
	case httpResp.StatusCode >= http.StatusInternalServerError:
		return nil, WrapRetryable(fmt.Errorf("HTTP %d", httpResp.StatusCode))
	}

	var resp response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		if httpResp.StatusCode != http.StatusOK {
			return nil, ethlerr.WithDetails(ethlerr.ErrNetworkError, map[string]string{
				"status": strconv.Itoa(httpResp.StatusCode),
			})
		}
		return nil, ethlerr.WithCause(ErrRPCResponse, err)
	}

	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.ID != id {
		return nil, ethlerr.WithDetails(ErrRPCResponse, map[string]string{
			"expected_id": strconv.FormatUint(id, 10),
			"id":          strconv.FormatUint(resp.ID, 10),
		})
	}

	return resp.Result, nil
}

// pause honors a Retry-After hint, capped by the retry policy's MaxDelay.
func (c *Client) pause(ctx context.Context, d time.Duration) {
	if d <= 0 || c.retry.MaxAttempts <= 1 {
		return
	}
	if c.retry.MaxDelay > 0 && d > c.retry.MaxDelay {
		d = c.retry.MaxDelay
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// ChainID returns the chain ID reported by the node.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	hexVal, err := c.callString(ctx, "eth_chainId")
	if err != nil {
		return nil, err
	}
	return parseHexBigInt(hexVal)
}

// CallMsg represents the parameters for eth_call.
type CallMsg struct {
	From  *ethtypes.Address
	To    ethtypes.Address
	Gas   uint64
	Value *big.Int
	Data  []byte
}

// MarshalJSON encodes the message with 0x-prefixed quantities and data.
func (m CallMsg) MarshalJSON() ([]byte, error) {
	type callMsgJSON struct {
		From  string `json:"from,omitempty"`
		To    string `json:"to"`
		Gas   string `json:"gas,omitempty"`
		Value string `json:"value,omitempty"`
		Data  string `json:"data,omitempty"`
	}

	msg := callMsgJSON{To: m.To.Hex()}
	if m.From != nil {
		msg.From = m.From.Hex()
	}
	if m.Gas > 0 {
		msg.Gas = hexutil.EncodeUint64(m.Gas)
	}
	if m.Value != nil && m.Value.Sign() > 0 {
		msg.Value = hexutil.EncodeBig(m.Value)
	}
	if len(m.Data) > 0 {
		msg.Data = hexutil.Encode(m.Data)
	}

	return json.Marshal(msg)
}

// EthCall executes a read-only call and returns the 0x-prefixed return data.
// block defaults to "latest".
func (c *Client) EthCall(ctx context.Context, msg CallMsg, block string) (string, error) {
	if block == "" {
		block = "latest"
	}

	hexVal, err := c.callString(ctx, "eth_call", msg, block)
	if err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			return "", ethlerr.WithDetails(ethlerr.WithCause(ErrCallFailed, rpcErr), rpcErr.details())
		}
		return "", err
	}

	if _, err := hexutil.Decode(hexVal); err != nil {
		return "", ethlerr.WithCause(ErrRPCResponse, fmt.Errorf("call result %q: %w", hexVal, err))
	}
	return hexVal, nil
}

// SendRawTransaction broadcasts a signed transaction given as 0x hex and
// returns the transaction hash reported by the node. A JSON-RPC error from
// the node is returned as ErrTxRejected carrying the node's code and message.
func (c *Client) SendRawTransaction(ctx context.Context, rawHex string) (string, error) {
	raw, err := hexutil.Decode(rawHex)
	if err != nil || len(raw) == 0 {
		return "", ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{"raw": rawHex})
	}

	txHash, err := c.callString(ctx, "eth_sendRawTransaction", rawHex)
	if err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			return "", ethlerr.WithDetails(ethlerr.WithCause(ethlerr.ErrTxRejected, rpcErr), rpcErr.details())
		}
		return "", err
	}

	if _, err := ethtypes.HexToHash(txHash); err != nil {
		return "", ethlerr.WithCause(ErrRPCResponse, fmt.Errorf("tx hash %q: %w", txHash, err))
	}
	return txHash, nil
}

// Close releases idle connections held by the HTTP client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// callString performs a call whose result must be a non-null JSON string.
func (c *Client) callString(ctx context.Context, method string, params ...any) (string, error) {
	result, err := c.Call(ctx, method, params...)
	if err != nil {
		return "", err
	}
	if len(result) == 0 || string(result) == "null" {
		return "", ethlerr.WithDetails(ErrNilResponse, map[string]string{"method": method})
	}

	var s string
	if err := json.Unmarshal(result, &s); err != nil {
		return "", ethlerr.WithCause(ErrRPCResponse, fmt.Errorf("parsing %s result: %w", method, err))
	}
	return s, nil
}

// parseHexBigInt parses a 0x-prefixed quantity.
func parseHexBigInt(s string) (*big.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return big.NewInt(0), nil
	}

	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, ethlerr.WithDetails(ErrRPCResponse, map[string]string{"quantity": s})
	}
	return n, nil
}
