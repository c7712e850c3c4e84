// Test suite for the saran2 driver.
//
// The mockModem does not emulate a real SARA-N2; it provides canned
// responses keyed by the exact command bytes, which is sufficient to
// exercise the transaction engine and the response scanners.

package saran2_test

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thingpilot/sara-n2-driver/saran2"
)

type mockModem struct {
	mu sync.Mutex

	// canned responses keyed by exact command bytes
	cmdSet map[string][]string

	// optional hook replacing cmdSet handling
	onWrite func(cmd string)

	// artificial delay between a write and its response
	latency time.Duration

	// commands written, in order
	writes []string

	// interleaving detection
	inFlight    bool
	interleaved bool

	closed bool

	// the buffer emulating bytes emitted by the modem
	r chan []byte
}

func newMockModem(cmdSet map[string][]string) *mockModem {
	return &mockModem{
		cmdSet: cmdSet,
		r:      make(chan []byte, 16),
	}
}

func (m *mockModem) Read(p []byte) (n int, err error) {
	data, ok := <-m.r
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (m *mockModem) Write(p []byte) (n int, err error) {
	m.mu.Lock()
	if m.inFlight {
		m.interleaved = true
	}
	m.inFlight = true
	m.writes = append(m.writes, string(p))
	onWrite := m.onWrite
	rsp := m.cmdSet[string(p)]
	latency := m.latency
	m.mu.Unlock()

	if latency > 0 {
		time.Sleep(latency)
	}
	if onWrite != nil {
		onWrite(string(p))
	} else {
		for _, l := range rsp {
			m.send(l)
		}
	}

	m.mu.Lock()
	m.inFlight = false
	m.mu.Unlock()
	return len(p), nil
}

// send queues modem output for the driver to read.
func (m *mockModem) send(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.r <- []byte(s)
	}
}

func (m *mockModem) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

func (m *mockModem) lastWrite() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writes) == 0 {
		return ""
	}
	return m.writes[len(m.writes)-1]
}

func (m *mockModem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.r)
	}
	return nil
}

// fast timeouts so failure paths do not stall the suite.
var testOptions = []saran2.Option{
	saran2.WithTimeout(100 * time.Millisecond),
	saran2.WithCoAPTimeout(300 * time.Millisecond),
	saran2.WithScanTimeout(50 * time.Millisecond),
}

func setupModem(t *testing.T, cmdSet map[string][]string, options ...saran2.Option) (*saran2.SaraN2, *mockModem) {
	t.Helper()
	mm := newMockModem(cmdSet)
	t.Cleanup(func() { mm.Close() })
	m := saran2.New(mm, append(testOptions[:len(testOptions):len(testOptions)], options...)...)
	require.NotNil(t, m)
	return m, mm
}

func TestNew(t *testing.T) {
	patterns := []struct {
		name    string
		options []saran2.Option
	}{
		{
			"default",
			nil,
		},
		{
			"timeouts",
			[]saran2.Option{
				saran2.WithTimeout(50 * time.Millisecond),
				saran2.WithCoAPTimeout(time.Second),
				saran2.WithScanTimeout(20 * time.Millisecond),
			},
		},
	}
	for _, p := range patterns {
		f := func(t *testing.T) {
			mm := newMockModem(nil)
			defer mm.Close()
			m := saran2.New(mm, p.options...)
			require.NotNil(t, m)
			select {
			case <-m.Closed():
				t.Error("modem closed")
			default:
			}
		}
		t.Run(p.name, f)
	}
}

func TestPing(t *testing.T) {
	cmdSet := map[string][]string{
		"AT\r\n": {"\r\nOK\r\n"},
	}
	m, mm := setupModem(t, cmdSet)
	assert.Nil(t, m.Ping())
	assert.Equal(t, "AT\r\n", mm.lastWrite())
}

func TestPingNoResponse(t *testing.T) {
	m, _ := setupModem(t, nil)
	assert.Equal(t, saran2.ErrNoResponse, m.Ping())
}

func TestLockReleasedOnFailure(t *testing.T) {
	// a failed transaction must leave the lock free for the next caller
	m, mm := setupModem(t, nil)
	assert.Equal(t, saran2.ErrNoResponse, m.Ping())

	mm.mu.Lock()
	mm.cmdSet = map[string][]string{"AT\r\n": {"\r\nOK\r\n"}}
	mm.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- m.Ping()
	}()
	select {
	case err := <-done:
		assert.Nil(t, err)
	case <-time.After(2 * time.Second):
		t.Error("lock not released after failed transaction")
	}
}

func TestStaleBytesFlushed(t *testing.T) {
	// residue from an earlier, timed out, exchange must not satisfy the
	// next command
	cmdSet := map[string][]string{
		"AT\r\n": {"\r\nOK\r\n"},
	}
	m, mm := setupModem(t, cmdSet)
	mm.send("\r\nOK\r\n+UCOAPCD:5,\"stale\",0\r\n")
	// allow the reader to drain the residue into the parser
	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, m.Ping())
	assert.Equal(t, 1, mm.writeCount())
}

func TestSerialization(t *testing.T) {
	cmdSet := map[string][]string{
		"AT\r\n":        {"\r\nOK\r\n"},
		"AT+CSCON?\r\n": {"\r\n+CSCON: 0,1\r\n", "OK\r\n"},
	}
	m, mm := setupModem(t, cmdSet)
	mm.latency = 10 * time.Millisecond

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			assert.Nil(t, m.Ping())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			connected, err := m.ConnectionStatus()
			assert.Nil(t, err)
			assert.True(t, connected)
		}
	}()
	wg.Wait()

	mm.mu.Lock()
	defer mm.mu.Unlock()
	assert.False(t, mm.interleaved, "command bytes interleaved on the transport")
	assert.Equal(t, 40, len(mm.writes))
}

type fakePin struct {
	level bool
	sets  []bool
	err   error
}

func (p *fakePin) Set(high bool) error {
	p.sets = append(p.sets, high)
	p.level = high
	return p.err
}

func (p *fakePin) Get() (bool, error) {
	return p.level, p.err
}

func TestSetReset(t *testing.T) {
	mm := newMockModem(nil)
	defer mm.Close()
	pin := &fakePin{level: true}
	m := saran2.New(mm, saran2.WithResetLine(pin))

	// active low
	assert.Nil(t, m.SetReset(true))
	assert.Equal(t, []bool{false}, pin.sets)
	assert.Nil(t, m.SetReset(false))
	assert.Equal(t, []bool{false, true}, pin.sets)
}

func TestSetResetUnconfigured(t *testing.T) {
	m, _ := setupModem(t, nil)
	assert.Equal(t, saran2.ErrNoResetLine, m.SetReset(true))
}

func TestPoweredOn(t *testing.T) {
	mm := newMockModem(nil)
	defer mm.Close()
	pin := &fakePin{level: true}
	m := saran2.New(mm, saran2.WithPowerSense(pin))

	on, err := m.PoweredOn()
	assert.Nil(t, err)
	assert.True(t, on)

	pin.level = false
	on, err = m.PoweredOn()
	assert.Nil(t, err)
	assert.False(t, on)
}

func TestPoweredOnUnconfigured(t *testing.T) {
	m, _ := setupModem(t, nil)
	_, err := m.PoweredOn()
	assert.Equal(t, saran2.ErrNoPowerSense, err)
}
