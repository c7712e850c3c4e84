// Package saran2 provides a driver for the u-blox SARA-N2 NB-IoT modem.
//
// The modem is controlled over a UART using AT commands and exposes CoAP
// messaging, power save mode control, network registration queries, UE
// configuration, statistics collection and module reboot.
//
// All operations are synchronous and block the caller until the modem
// responds or the corresponding receive window expires. A single lock
// serializes all transport access, so a SaraN2 may be shared freely
// between goroutines; at most one transaction is ever in flight.
package saran2

import (
	"io"
	"sync"
	"time"

	"github.com/thingpilot/sara-n2-driver/at"
)

const (
	// NumberOfProfiles is the highest CoAP profile index accepted by the
	// modem. The bound is inclusive - profiles 0 through NumberOfProfiles
	// are valid.
	NumberOfProfiles = 3

	// MaxURILength is the longest request URI the modem accepts.
	MaxURILength = 200

	// MaxPayloadSize is the largest CoAP payload the modem delivers in a
	// single block. Buffers passed to the CoAP verbs should hold at least
	// this many bytes.
	MaxPayloadSize = 512

	// coapScanLimit caps the CoAP response scan, bounding worst case scan
	// cost. It exceeds MaxPayloadSize by enough to cover the response
	// code, quotes and continuation flag.
	coapScanLimit = 520

	// statsScanLimit caps the statistics report scan.
	statsScanLimit = 200
)

const (
	defaultTimeout     = 500 * time.Millisecond
	defaultCoAPTimeout = 10 * time.Second
	defaultScanTimeout = 100 * time.Millisecond
)

// Pin is a single digital control or sense line on the modem, such as the
// reset line or the V_INT power sense.
type Pin interface {
	Set(high bool) error
	Get() (bool, error)
}

// SaraN2 drives a SARA-N2 modem attached to the given byte stream.
type SaraN2 struct {
	// serializes all transactions on the parser
	mu sync.Mutex

	p *at.Parser

	// receive window for ordinary commands
	timeout time.Duration

	// widened window for CoAP responses and the boot banner
	coapTimeout time.Duration

	// per character window for the manual scanners
	scanTimeout time.Duration

	// optional control and sense lines
	rst  Pin
	vint Pin
}

// Option is a construction option for a SaraN2.
type Option func(*SaraN2)

// WithTimeout sets the receive window for ordinary commands.
//
// The default window is 500msec.
func WithTimeout(d time.Duration) Option {
	return func(m *SaraN2) {
		m.timeout = d
	}
}

// WithCoAPTimeout sets the widened receive window used while waiting for
// a CoAP response report or the boot banner after a reboot.
//
// The default window is 10sec.
func WithCoAPTimeout(d time.Duration) Option {
	return func(m *SaraN2) {
		m.coapTimeout = d
	}
}

// WithScanTimeout sets the per character window used by the manual
// response scanners.
//
// The default window is 100msec.
func WithScanTimeout(d time.Duration) Option {
	return func(m *SaraN2) {
		m.scanTimeout = d
	}
}

// WithResetLine provides the digital line driving the modem reset pin.
func WithResetLine(pin Pin) Option {
	return func(m *SaraN2) {
		m.rst = pin
	}
}

// WithPowerSense provides the digital line sensing the modem V_INT rail.
func WithPowerSense(pin Pin) Option {
	return func(m *SaraN2) {
		m.vint = pin
	}
}

// New creates a new SaraN2 on the modem byte stream.
//
// The stream is exclusively owned by the driver from this point on; no
// other component may read or write it.
func New(modem io.ReadWriter, options ...Option) *SaraN2 {
	m := &SaraN2{
		timeout:     defaultTimeout,
		coapTimeout: defaultCoAPTimeout,
		scanTimeout: defaultScanTimeout,
	}
	for _, option := range options {
		option(m)
	}
	m.p = at.New(modem, at.WithTimeout(m.timeout))
	return m
}

// Closed returns a channel which blocks while the connection to the modem
// is intact.
func (m *SaraN2) Closed() <-chan struct{} {
	return m.p.Closed()
}

// Ping checks the modem is alive and accepting commands.
func (m *SaraN2) Ping() error {
	return m.transact(ErrNoResponse, "AT")
}

// SetReset drives the modem reset line. The line is active low; asserting
// holds the module in reset.
//
// SetReset touches no transport state and may be called regardless of any
// in-flight transaction.
func (m *SaraN2) SetReset(asserted bool) error {
	if m.rst == nil {
		return ErrNoResetLine
	}
	return m.rst.Set(!asserted)
}

// PoweredOn reports the state of the module V_INT power sense line.
func (m *SaraN2) PoweredOn() (bool, error) {
	if m.vint == nil {
		return false, ErrNoPowerSense
	}
	return m.vint.Get()
}

// transact runs a single flush-send-expect exchange under the transaction
// lock. A missing OK is reported as the supplied failure.
func (m *SaraN2) transact(failure error, format string, args ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exchange(failure, format, args...)
}

// exchange flushes stale receive bytes, sends the command and awaits the
// OK acknowledgment. It requires the transaction lock to be held.
func (m *SaraN2) exchange(failure error, format string, args ...interface{}) error {
	m.p.Flush()
	if err := m.p.Send(format, args...); err != nil {
		return err
	}
	if err := m.p.Expect("OK"); err != nil {
		return failure
	}
	return nil
}
