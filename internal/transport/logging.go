// SPDX-License-Identifier: MIT
package transport

import (
	"sync/atomic"

	applog "lumiband/internal/log"
)

// LoggingTransport implements the Transport interface by logging messages
// at debug level. Only every Nth message is logged.
type LoggingTransport struct {
	every uint64
	count atomic.Uint64
}

// NewLoggingTransport logs one of every `every` messages (all when every < 2).
func NewLoggingTransport(every int) *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{every: uint64(max(every, 1))}
}

// Send logs the received data.
func (lt *LoggingTransport) Send(data any) error {
	n := lt.count.Add(1)
	if (n-1)%lt.every != 0 {
		return nil
	}
	applog.Debugf("LOG_TRANSPORT: #%d (%T): %+v", n, data, data)
	return nil // Logging transport never fails to "send"
}

// Count returns the number of messages received.
func (lt *LoggingTransport) Count() uint64 { return lt.count.Load() }

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("LOG_TRANSPORT: Close called after %d messages.", lt.count.Load())
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
