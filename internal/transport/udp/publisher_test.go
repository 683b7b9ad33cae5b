// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"errors"
	"image/color"
	"net"
	"sync"
	"testing"
	"time"
)

type fakeSource struct {
	pixels []color.RGBA
	seq    uint64
}

func (f *fakeSource) Len() int { return len(f.pixels) }

func (f *fakeSource) LatestInto(dst []color.RGBA) uint64 {
	copy(dst, f.pixels)
	return f.seq
}

type fakeSender struct {
	mu      sync.Mutex
	packets [][]byte
	err     error
}

func (f *fakeSender) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.packets = append(f.packets, bytes.Clone(data))
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.packets)
}

func TestAppendPacket_DRGB(t *testing.T) {
	pixels := []color.RGBA{{R: 1, G: 2, B: 3, A: 255}, {R: 4, G: 5, B: 6, A: 255}}
	got, n := AppendPacket(nil, pixels, 0, 2)
	want := []byte{ProtocolDRGB, 2, 1, 2, 3, 4, 5, 6}
	if n != 2 || !bytes.Equal(got, want) {
		t.Errorf("AppendPacket = %v (%d), want %v", got, n, want)
	}
}

func TestAppendPacket_DNRGBChunks(t *testing.T) {
	pixels := make([]color.RGBA, 600)
	for i := range pixels {
		pixels[i] = color.RGBA{R: uint8(i), A: 255}
	}

	first, n := AppendPacket(nil, pixels, 0, 5)
	if n != MaxDNRGBPixels || first[0] != ProtocolDNRGB || first[1] != 5 || first[2] != 0 || first[3] != 0 {
		t.Fatalf("first chunk header %v, n=%d", first[:4], n)
	}
	if len(first) != 4+3*MaxDNRGBPixels {
		t.Errorf("first chunk length %d", len(first))
	}

	second, n := AppendPacket(nil, pixels, MaxDNRGBPixels, 5)
	if n != 600-MaxDNRGBPixels {
		t.Errorf("second chunk carries %d pixels", n)
	}
	if second[2] != byte(MaxDNRGBPixels>>8) || second[3] != byte(MaxDNRGBPixels&0xff) {
		t.Errorf("second chunk start = %d", int(second[2])<<8|int(second[3]))
	}
	if second[4] != byte(MaxDNRGBPixels&0xff) {
		t.Errorf("second chunk first red = %d", second[4])
	}
}

func TestNewUDPPublisher_Validation(t *testing.T) {
	src := &fakeSource{pixels: make([]color.RGBA, 3)}
	if _, err := NewUDPPublisher(time.Millisecond, 0, nil, src); err == nil {
		t.Errorf("expected error for nil sender")
	}
	if _, err := NewUDPPublisher(time.Millisecond, 0, &fakeSender{}, nil); err == nil {
		t.Errorf("expected error for nil source")
	}
	p, err := NewUDPPublisher(0, 0, &fakeSender{}, src)
	if err != nil {
		t.Fatal(err)
	}
	if p.interval != DefaultInterval || p.timeout != DefaultTimeoutSeconds {
		t.Errorf("defaults not applied: %s %d", p.interval, p.timeout)
	}
}

func TestPublish_SplitsLongStrips(t *testing.T) {
	sender := &fakeSender{}
	p, err := NewUDPPublisher(time.Millisecond, 1, sender, &fakeSource{pixels: make([]color.RGBA, 1000)})
	if err != nil {
		t.Fatal(err)
	}
	p.publish()
	if got := sender.count(); got != 3 {
		t.Errorf("packets = %d, want 3", got)
	}
	if p.packets != 3 {
		t.Errorf("packet counter = %d", p.packets)
	}
}

func TestPublish_StopsOnSendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("unreachable")}
	p, err := NewUDPPublisher(time.Millisecond, 1, sender, &fakeSource{pixels: make([]color.RGBA, 1000)})
	if err != nil {
		t.Fatal(err)
	}
	p.publish()
	if p.packets != 0 {
		t.Errorf("counted %d packets after failure", p.packets)
	}
}

func TestPublish_NoAllocations(t *testing.T) {
	p, err := NewUDPPublisher(time.Millisecond, 1, discard{}, &fakeSource{pixels: make([]color.RGBA, 60)})
	if err != nil {
		t.Fatal(err)
	}
	p.publish()
	if allocs := testing.AllocsPerRun(100, p.publish); allocs != 0 {
		t.Errorf("publish allocated %.1f times", allocs)
	}
}

type discard struct{}

func (discard) Send([]byte) error { return nil }

func TestPublisher_StartStop(t *testing.T) {
	sender := &fakeSender{}
	src := &fakeSource{pixels: []color.RGBA{{R: 9, A: 255}}, seq: 1}
	p, err := NewUDPPublisher(time.Millisecond, 1, sender, src)
	if err != nil {
		t.Fatal(err)
	}
	p.Start()
	p.Start() // no-op

	deadline := time.Now().Add(2 * time.Second)
	for sender.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
	got := sender.count()
	if got < 3 {
		t.Fatalf("only %d packets sent", got)
	}
	time.Sleep(5 * time.Millisecond)
	if sender.count() != got {
		t.Errorf("packets sent after Stop")
	}
}

func TestUDPSender_RoundTrip(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Skipf("udp unavailable: %v", err)
	}
	defer conn.Close()

	s, err := NewUDPSender(conn.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	payload := []byte{ProtocolDRGB, 1, 10, 20, 30}
	if err := s.Send(payload); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 64)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[:n], payload) {
		t.Errorf("received %v, want %v", buf[:n], payload)
	}
	if packets, sent := s.Stats(); packets != 1 || sent != uint64(len(payload)) {
		t.Errorf("Stats() = %d, %d; want 1, %d", packets, sent, len(payload))
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Send(payload); !errors.Is(err, ErrSenderClosed) {
		t.Errorf("Send after Close = %v, want ErrSenderClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
