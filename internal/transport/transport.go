// SPDX-License-Identifier: MIT
package transport

// Transport defines a generic interface for sending frames and status
// messages off the device. Implementations must be safe for concurrent use
// and must not block the tick goroutine.
type Transport interface {
	Send(data any) error
	Close() error
}
