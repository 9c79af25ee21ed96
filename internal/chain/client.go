// Package chain resolves wallet transaction counts on Polygon.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// LookupKind classifies a failed nonce lookup.
type LookupKind int

const (
	// LookupInvalid means the address failed syntax validation; no RPC call was made.
	LookupInvalid LookupKind = iota
	// LookupTimeout means a single attempt exceeded the request timeout.
	LookupTimeout
	// LookupUnreachable means all retry attempts were exhausted.
	LookupUnreachable
)

func (k LookupKind) String() string {
	switch k {
	case LookupInvalid:
		return "invalid"
	case LookupTimeout:
		return "timeout"
	default:
		return "unreachable"
	}
}

// LookupError reports a failed nonce lookup with its failure kind.
type LookupError struct {
	Kind   LookupKind
	Wallet string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("nonce lookup %s for %s: %v", e.Kind, e.Wallet, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// NonceClient performs a single nonce round-trip. Retry is the caller's
// responsibility, not the client's.
type NonceClient interface {
	TransactionCount(ctx context.Context, wallet string) (uint64, error)
}

// EthClient implements NonceClient against a Polygon JSON-RPC endpoint.
type EthClient struct {
	client *ethclient.Client
}

// Dial connects to the given RPC endpoint.
func Dial(ctx context.Context, rpcURL string) (*EthClient, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial polygon rpc: %w", err)
	}
	return &EthClient{client: client}, nil
}

// TransactionCount returns the latest nonce for the wallet.
func (c *EthClient) TransactionCount(ctx context.Context, wallet string) (uint64, error) {
	return c.client.NonceAt(ctx, common.HexToAddress(wallet), nil)
}

// Close releases the underlying RPC connection.
func (c *EthClient) Close() {
	c.client.Close()
}

// Default resolver tuning.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultRetries     = 3
	DefaultBackoff     = 1 * time.Second
	DefaultMaxBackoff  = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Resolver wraps a NonceClient with address validation, per-attempt
// timeouts, and exponential-backoff retry.
type Resolver struct {
	client  NonceClient
	timeout time.Duration
	retries int
	backoff time.Duration
}

// NewResolver creates a Resolver around client. Zero values fall back to defaults.
func NewResolver(client NonceClient, timeout time.Duration, retries int, backoff time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries <= 0 {
		retries = DefaultRetries
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &Resolver{
		client:  client,
		timeout: timeout,
		retries: retries,
		backoff: backoff,
	}
}

// ResolveTransactionCount returns the wallet's transaction count.
// Malformed addresses fail fast with LookupInvalid and never reach the RPC.
// Transient failures are retried; exhaustion yields LookupUnreachable.
func (r *Resolver) ResolveTransactionCount(ctx context.Context, wallet string) (uint64, error) {
	if !common.IsHexAddress(wallet) {
		return 0, &LookupError{
			Kind:   LookupInvalid,
			Wallet: wallet,
			Err:    errors.New("not a valid hex address"),
		}
	}

	delay := r.backoff
	var lastErr error

	for attempt := 0; attempt < r.retries; attempt++ {
		if attempt > 0 {
			// Exponential backoff with jitter; the +1 keeps Int63n legal
			// for sub-4ns delays
			jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
			select {
			case <-ctx.Done():
				return 0, &LookupError{Kind: LookupUnreachable, Wallet: wallet, Err: ctx.Err()}
			case <-time.After(delay + jitter):
			}
			delay = time.Duration(float64(delay) * DefaultBackoffMult)
			if delay > DefaultMaxBackoff {
				delay = DefaultMaxBackoff
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		nonce, err := r.client.TransactionCount(attemptCtx, wallet)
		cancel()

		if err == nil {
			return nonce, nil
		}

		lastErr = err
		if errors.Is(err, context.DeadlineExceeded) {
			lastErr = &LookupError{Kind: LookupTimeout, Wallet: wallet, Err: err}
		}

		slog.Debug("nonce_lookup_retry",
			"wallet", wallet,
			"attempt", attempt+1,
			"error", err,
		)

		// Parent cancellation ends the retry loop immediately
		if ctx.Err() != nil {
			break
		}
	}

	return 0, &LookupError{Kind: LookupUnreachable, Wallet: wallet, Err: lastErr}
}
