package chain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validWallet = "0x1234567890abcdef1234567890abcdef12345678"

// fakeNonceClient returns queued responses in order, repeating the last one.
type fakeNonceClient struct {
	mu        sync.Mutex
	calls     int
	responses []fakeResponse
}

type fakeResponse struct {
	nonce uint64
	err   error
}

func (f *fakeNonceClient) TransactionCount(ctx context.Context, wallet string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	r := f.responses[i]
	return r.nonce, r.err
}

func (f *fakeNonceClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fastResolver(client NonceClient, retries int) *Resolver {
	return NewResolver(client, time.Second, retries, time.Millisecond)
}

func TestResolveInvalidAddressFailsFast(t *testing.T) {
	client := &fakeNonceClient{responses: []fakeResponse{{nonce: 7}}}
	r := fastResolver(client, 3)

	_, err := r.ResolveTransactionCount(context.Background(), "not-an-address")
	require.Error(t, err)

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, LookupInvalid, lookupErr.Kind)
	assert.Equal(t, 0, client.callCount(), "invalid address must never reach the RPC")
}

func TestResolveSuccessFirstAttempt(t *testing.T) {
	client := &fakeNonceClient{responses: []fakeResponse{{nonce: 42}}}
	r := fastResolver(client, 3)

	nonce, err := r.ResolveTransactionCount(context.Background(), validWallet)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), nonce)
	assert.Equal(t, 1, client.callCount())
}

func TestResolveRetriesTransientFailure(t *testing.T) {
	client := &fakeNonceClient{responses: []fakeResponse{
		{err: errors.New("connection reset")},
		{err: errors.New("connection reset")},
		{nonce: 9},
	}}
	r := fastResolver(client, 3)

	nonce, err := r.ResolveTransactionCount(context.Background(), validWallet)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), nonce)
	assert.Equal(t, 3, client.callCount())
}

func TestResolveExhaustionReturnsUnreachable(t *testing.T) {
	rpcErr := errors.New("rpc down")
	client := &fakeNonceClient{responses: []fakeResponse{{err: rpcErr}}}
	r := fastResolver(client, 3)

	_, err := r.ResolveTransactionCount(context.Background(), validWallet)
	require.Error(t, err)

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, LookupUnreachable, lookupErr.Kind)
	assert.Equal(t, 3, client.callCount(), "should attempt exactly retries times")
	assert.ErrorIs(t, err, rpcErr)
}

func TestResolveContextCancellationStopsRetries(t *testing.T) {
	client := &fakeNonceClient{responses: []fakeResponse{{err: errors.New("rpc down")}}}
	r := NewResolver(client, time.Second, 5, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolveTransactionCount(ctx, validWallet)
	require.Error(t, err)
	assert.LessOrEqual(t, client.callCount(), 1)
}

func TestResolveTinyBackoffDoesNotPanic(t *testing.T) {
	client := &fakeNonceClient{responses: []fakeResponse{{err: errors.New("rpc down")}}}
	r := NewResolver(client, time.Second, 3, time.Nanosecond)

	_, err := r.ResolveTransactionCount(context.Background(), validWallet)
	require.Error(t, err)
	assert.Equal(t, 3, client.callCount())
}

func TestLookupKindString(t *testing.T) {
	assert.Equal(t, "invalid", LookupInvalid.String())
	assert.Equal(t, "timeout", LookupTimeout.String())
	assert.Equal(t, "unreachable", LookupUnreachable.String())
}
