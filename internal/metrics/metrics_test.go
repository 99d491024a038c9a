package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

func TestMetrics_Record(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordRPCCall("eth_sendRawTransaction", 100*time.Millisecond, nil)
	m.RecordRPCCall("eth_call", 200*time.Millisecond, ethlerr.ErrNetworkError)
	m.RecordRPCCall("eth_chainId", 0, nil)
	m.RecordRetry()
	m.RecordSign(nil)
	m.RecordSign(ethlerr.ErrSigningFailure)

	assert.Equal(t, Snapshot{
		RPCCallsTotal:   3,
		RPCErrorsTotal:  1,
		RPCRetries:      1,
		RPCLatencyNanos: int64(300 * time.Millisecond),
		SendRawCalls:    1,
		EthCallCalls:    1,
		TxSigned:        1,
		TxSignErrors:    1,
	}, m.Snapshot())
}

func TestSnapshot_LatencyAvg(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Snapshot{}.LatencyAvg())
	assert.Equal(t, 150*time.Millisecond,
		Snapshot{RPCCallsTotal: 2, RPCLatencyNanos: int64(300 * time.Millisecond)}.LatencyAvg())
}

func TestSnapshot_Attrs(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Snapshot{}.Attrs())

	attrs := Snapshot{TxSigned: 3}.Attrs()
	if assert.Len(t, attrs, 1) {
		assert.Equal(t, "tx_signed", attrs[0].Key)
		assert.Equal(t, int64(3), attrs[0].Value.Int64())
	}

	keys := map[string]bool{}
	for _, a := range (Snapshot{RPCCallsTotal: 2, RPCLatencyNanos: 10, SendRawCalls: 2}).Attrs() {
		keys[a.Key] = true
	}
	assert.Equal(t, map[string]bool{"rpc_calls": true, "send_raw_calls": true, "rpc_latency_avg": true}, keys)
}

func TestMetrics_Concurrent(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRPCCall("eth_call", time.Millisecond, nil)
			m.RecordSign(nil)
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(100), snap.RPCCallsTotal)
	assert.Equal(t, int64(100), snap.EthCallCalls)
	assert.Equal(t, int64(100), snap.TxSigned)
}
