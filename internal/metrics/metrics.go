// Package metrics provides process-level counters for RPC traffic and signing.
// Counters are atomic and safe for concurrent use.
package metrics

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// RPC metrics
	rpcCallsTotal   atomic.Int64
	rpcErrorsTotal  atomic.Int64
	rpcRetries      atomic.Int64
	rpcLatencyNanos atomic.Int64

	// Per-method RPC calls
	sendRawCalls atomic.Int64
	ethCallCalls atomic.Int64

	// Signing metrics
	txSigned     atomic.Int64
	txSignErrors atomic.Int64
}

// Global is the process-wide metrics instance used by the CLI.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRPCCall records an RPC call with its duration and success status.
func (m *Metrics) RecordRPCCall(method string, duration time.Duration, err error) {
	m.rpcCallsTotal.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())

	if err != nil {
		m.rpcErrorsTotal.Add(1)
	}

	switch method {
	case "eth_sendRawTransaction":
		m.sendRawCalls.Add(1)
	case "eth_call":
		m.ethCallCalls.Add(1)
	}
}

// RecordRetry records one retried RPC attempt.
func (m *Metrics) RecordRetry() {
	m.rpcRetries.Add(1)
}

// RecordSign records a signing attempt.
func (m *Metrics) RecordSign(err error) {
	if err != nil {
		m.txSignErrors.Add(1)
		return
	}
	m.txSigned.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	RPCCallsTotal   int64 `json:"rpc_calls_total"`
	RPCErrorsTotal  int64 `json:"rpc_errors_total"`
	RPCRetries      int64 `json:"rpc_retries"`
	RPCLatencyNanos int64 `json:"rpc_latency_nanos"`
	SendRawCalls    int64 `json:"send_raw_calls"`
	EthCallCalls    int64 `json:"eth_call_calls"`
	TxSigned        int64 `json:"tx_signed"`
	TxSignErrors    int64 `json:"tx_sign_errors"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RPCCallsTotal:   m.rpcCallsTotal.Load(),
		RPCErrorsTotal:  m.rpcErrorsTotal.Load(),
		RPCRetries:      m.rpcRetries.Load(),
		RPCLatencyNanos: m.rpcLatencyNanos.Load(),
		SendRawCalls:    m.sendRawCalls.Load(),
		EthCallCalls:    m.ethCallCalls.Load(),
		TxSigned:        m.txSigned.Load(),
		TxSignErrors:    m.txSignErrors.Load(),
	}
}

// LatencyAvg returns the mean RPC latency, or 0 before the first call.
func (s Snapshot) LatencyAvg() time.Duration {
	if s.RPCCallsTotal == 0 {
		return 0
	}
	return time.Duration(s.RPCLatencyNanos / s.RPCCallsTotal)
}

// Attrs returns the non-zero counters as log attributes.
func (s Snapshot) Attrs() []slog.Attr {
	counters := []struct {
		key string
		n   int64
	}{
		{"rpc_calls", s.RPCCallsTotal},
		{"rpc_errors", s.RPCErrorsTotal},
		{"rpc_retries", s.RPCRetries},
		{"send_raw_calls", s.SendRawCalls},
		{"eth_call_calls", s.EthCallCalls},
		{"tx_signed", s.TxSigned},
		{"tx_sign_errors", s.TxSignErrors},
	}

	attrs := make([]slog.Attr, 0, len(counters)+1)
	for _, c := range counters {
		if c.n != 0 {
			attrs = append(attrs, slog.Int64(c.key, c.n))
		}
	}
	if s.RPCCallsTotal > 0 {
		attrs = append(attrs, slog.Duration("rpc_latency_avg", s.LatencyAvg()))
	}
	return attrs
}
