// SPDX-License-Identifier: MIT
package udp

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	applog "lumiband/internal/log"
)

// WLED realtime protocol bytes.
const (
	ProtocolDRGB  = 0x02 // Whole strip, up to MaxDRGBPixels.
	ProtocolDNRGB = 0x04 // Chunk starting at a 16-bit pixel index.

	MaxDRGBPixels  = 490
	MaxDNRGBPixels = 489

	DefaultTimeoutSeconds = 2
	DefaultInterval       = 33 * time.Millisecond
)

// PacketSender transmits one datagram.
type PacketSender interface {
	Send(data []byte) error
}

// FrameSource provides the latest shown frame. strip.Strip satisfies it.
type FrameSource interface {
	Len() int
	LatestInto(dst []color.RGBA) uint64
}

// UDPPublisher periodically packs the latest frame into WLED realtime
// packets and sends them using a PacketSender. It runs in a separate
// goroutine managed by Start and Stop.
type UDPPublisher struct {
	sender   PacketSender
	source   FrameSource
	interval time.Duration
	timeout  uint8 // Seconds WLED stays in realtime mode after the last packet.

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop.

	packets uint64 // Packets sent, owned by the publisher goroutine.

	// Pre-allocated buffers, reused for every packet.
	pixels []color.RGBA
	packet []byte
}

// NewUDPPublisher creates and initializes a new UDPPublisher.
// If the provided interval is invalid (<= 0), it defaults to DefaultInterval.
// A zero timeout selects DefaultTimeoutSeconds.
func NewUDPPublisher(interval time.Duration, timeout uint8, sender PacketSender, source FrameSource) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("UDPPublisher: frame source cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultInterval
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}
	if timeout == 0 {
		timeout = DefaultTimeoutSeconds
	}

	n := source.Len()
	applog.Infof("UDPPublisher: Initializing (Interval: %s, Pixels: %d)", interval, n)

	return &UDPPublisher{
		sender:   sender,
		source:   source,
		interval: interval,
		timeout:  timeout,
		pixels:   make([]color.RGBA, n),
		packet:   make([]byte, 0, 4+3*min(n, MaxDRGBPixels)),
	}, nil
}

// Start begins the periodic publishing process.
// It is safe to call Start multiple times; subsequent calls are no-ops if already started.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	// Capture locals so the goroutine does not race on p.ticker/p.doneChan.
	ticker := p.ticker
	doneChan := p.doneChan

	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-doneChan:
				applog.Infof("UDPPublisher: Publisher goroutine received stop signal.")
				return
			}
		}
	}()
}

// Stop gracefully signals the publisher goroutine to terminate and waits for it to exit.
// It is safe to call Stop multiple times; subsequent calls are no-ops.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		applog.Debugf("UDPPublisher: Stop called but not running.")
		return nil
	}

	p.stopOnce.Do(func() {
		applog.Infof("UDPPublisher: Initiating stop sequence...")
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})

	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("UDPPublisher: Publisher goroutine finished.")
	return nil
}

/*
WLED realtime packets (UDP, port 21324 by default)

DRGB, strips up to 490 pixels:

	+----------+-----------+-----+-----+-----+-----+-----+
	| 0x02     | timeout s | R0  | G0  | B0  | R1  | ... |
	+----------+-----------+-----+-----+-----+-----+-----+

DNRGB, one packet per chunk of up to 489 pixels:

	+----------+-----------+------------+------------+-----+-----+-----+-----+
	| 0x04     | timeout s | start (hi) | start (lo) | R   | G   | B   | ... |
	+----------+-----------+------------+------------+-----+-----+-----+-----+
*/

// publish sends the latest frame, split into as many packets as needed.
func (p *UDPPublisher) publish() {
	seq := p.source.LatestInto(p.pixels)
	for start := 0; ; {
		var n int
		p.packet, n = AppendPacket(p.packet[:0], p.pixels, start, p.timeout)
		if err := p.sender.Send(p.packet); err != nil {
			// The sender already logged the failure.
			return
		}
		p.packets++
		if applog.Enabled(applog.LevelDebug) {
			applog.Debugf("UDPPublisher: Sent frame %d pixels %d-%d (%d bytes)", seq, start, start+n, len(p.packet))
		}
		start += n
		if n == 0 || start >= len(p.pixels) {
			return
		}
	}
}

// AppendPacket appends one realtime packet carrying pixels from start on
// and returns it with the number of pixels packed. Strips that fit a single
// DRGB packet use DRGB, longer strips use DNRGB chunks.
func AppendPacket(dst []byte, pixels []color.RGBA, start int, timeout uint8) ([]byte, int) {
	if len(pixels) <= MaxDRGBPixels {
		dst = append(dst, ProtocolDRGB, timeout)
		for _, c := range pixels {
			dst = append(dst, c.R, c.G, c.B)
		}
		return dst, len(pixels)
	}

	chunk := pixels[start:min(start+MaxDNRGBPixels, len(pixels))]
	dst = append(dst, ProtocolDNRGB, timeout, byte(start>>8), byte(start))
	for _, c := range chunk {
		dst = append(dst, c.R, c.G, c.B)
	}
	return dst, len(chunk)
}

// Close implements the io.Closer interface. It gracefully stops the publisher goroutine.
func (p *UDPPublisher) Close() error {
	applog.Debugf("UDPPublisher: Close called, stopping publisher...")
	return p.Stop()
}

// Ensure UDPPublisher satisfies the io.Closer interface at compile time.
var _ interface{ Close() error } = (*UDPPublisher)(nil)
