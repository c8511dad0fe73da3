package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"chain-chat-relay/backend/pkg/logger"
)

// ErrNotFound is returned when the ledger has no record for the
// requested transaction or block.
var ErrNotFound = errors.New("ledger: not found")

// TxReader is the ledger-query contract the enricher depends on. Both
// calls may fail with ErrNotFound or a transient transport error.
type TxReader interface {
	TransactionByHash(ctx context.Context, hash string) (*RPCTransaction, error)
	BlockByNumber(ctx context.Context, number string) (*RPCBlock, error)
}

// RPCTransaction is the subset of an eth_getTransactionByHash result
// the enricher consumes. Quantity fields stay in hex form until
// conversion.
type RPCTransaction struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	BlockNumber string `json:"blockNumber"`
}

// RPCBlock is the subset of an eth_getBlockByNumber result the
// enricher consumes.
type RPCBlock struct {
	Number    string `json:"number"`
	Timestamp string `json:"timestamp"`
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("ledger: rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Client talks JSON-RPC 2.0 to an Ethereum-compatible endpoint.
// Endpoint and credentials come from config; see pkg/config.
type Client struct {
	client   *http.Client
	endpoint string
	log      *logger.Logger
	nextID   atomic.Uint64
}

// NewClient creates a ledger client for the given endpoint URL. The
// timeout bounds each individual RPC round trip.
func NewClient(endpoint string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		log:      log,
	}
}

// TransactionByHash fetches one transaction by its hash.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (*RPCTransaction, error) {
	var tx RPCTransaction
	if err := c.call(ctx, "eth_getTransactionByHash", []any{hash}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// BlockByNumber fetches block header fields for a hex block number.
// Transaction bodies are not requested.
func (c *Client) BlockByNumber(ctx context.Context, number string) (*RPCBlock, error) {
	var blk RPCBlock
	if err := c.call(ctx, "eth_getBlockByNumber", []any{number, false}, &blk); err != nil {
		return nil, err
	}
	return &blk, nil
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("ledger: marshal %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ledger: build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("ledger: %s request failed: %w", method, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger: %s returned status %d", method, httpResp.StatusCode)
	}

	var resp rpcResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return fmt.Errorf("ledger: decode %s response: %w", method, err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return ErrNotFound
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("ledger: unmarshal %s result: %w", method, err)
	}
	return nil
}
