// SPDX-License-Identifier: MIT

// Package at provides the low level command/response primitive for AT
// modems.
//
// The Parser owns the byte stream to the modem and provides the blocking
// building blocks the driver layers above it are assembled from: formatted
// sends, literal token matching within a bounded receive window, line and
// scanf style receives, and raw byte reads with a caller supplied
// sub-timeout for responses that have to be walked character by character.
package at

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Parser provides request/response access to an AT modem over a byte
// stream.
//
// All receive operations are bounded; Expect, ReadLine and Scan by the
// configured receive window, ReadByte by the sub-timeout supplied per
// call. The Parser performs no locking of its own - callers are expected
// to serialize access (see saran2.SaraN2).
//
// The Parser closes the Closed channel when the connection to the
// underlying modem is broken (Read returns an error). Once closed the
// Parser cannot be reused - it must be recreated.
type Parser struct {
	// the underlying modem
	modem io.ReadWriter

	// channel of raw bytes read from the modem
	rx chan byte

	// closed when the modem read side fails
	closed chan struct{}

	// delimiter appended to sent commands and terminating received lines
	delim string

	// the receive window bounding Expect, ReadLine and Scan
	timeout time.Duration
}

// Option is a construction option for a Parser.
type Option func(*Parser)

// WithTimeout sets the receive window applied to Expect, ReadLine and
// Scan.
//
// The default window is 500msec.
func WithTimeout(d time.Duration) Option {
	return func(p *Parser) {
		p.timeout = d
	}
}

// WithDelimiter sets the line delimiter appended to sent commands and
// expected at the end of received lines.
//
// The default delimiter is CR+LF.
func WithDelimiter(delim string) Option {
	return func(p *Parser) {
		p.delim = delim
	}
}

// New creates a new Parser on the modem byte stream.
func New(modem io.ReadWriter, options ...Option) *Parser {
	p := &Parser{
		modem:   modem,
		rx:      make(chan byte, 4096),
		closed:  make(chan struct{}),
		delim:   "\r\n",
		timeout: 500 * time.Millisecond,
	}
	for _, option := range options {
		option(p)
	}
	go p.reader()
	return p
}

// reader pumps bytes from the modem into the rx channel.
//
// reader exits, closing the Closed channel, when the modem read fails.
func (p *Parser) reader() {
	buf := make([]byte, 256)
	for {
		n, err := p.modem.Read(buf)
		for _, b := range buf[:n] {
			p.rx <- b
		}
		if err != nil {
			close(p.closed)
			return
		}
	}
}

// Closed returns a channel which blocks while the connection to the modem
// is intact.
func (p *Parser) Closed() <-chan struct{} {
	return p.closed
}

// Timeout returns the current receive window.
func (p *Parser) Timeout() time.Duration {
	return p.timeout
}

// SetTimeout overrides the receive window.
//
// Callers widening or shortening the window for a sub-phase of a
// transaction must restore the previous value on every exit path.
func (p *Parser) SetTimeout(d time.Duration) {
	p.timeout = d
}

// Flush discards any bytes received from the modem but not yet consumed.
//
// It is issued before a command is sent so that stale output from a
// previous, possibly timed out, exchange cannot be attributed to the
// response of the next one.
func (p *Parser) Flush() {
	for {
		select {
		case <-p.rx:
		default:
			return
		}
	}
}

// Send formats the command per the format specifier and writes it to the
// modem, followed by the line delimiter.
//
// Send performs no receive; pair it with Expect, Scan or the raw reads.
func (p *Parser) Send(format string, args ...interface{}) error {
	cmd := fmt.Sprintf(format, args...) + p.delim
	_, err := p.modem.Write([]byte(cmd))
	return errors.Wrap(err, "send")
}

// Expect consumes bytes from the modem until the literal token is seen,
// or the receive window expires.
//
// Bytes preceding the token are discarded.
func (p *Parser) Expect(token string) error {
	deadline := time.Now().Add(p.timeout)
	match := make([]byte, 0, len(token))
	for {
		b, err := p.readByte(deadline)
		if err != nil {
			return errors.Wrapf(err, "expecting %q", token)
		}
		if len(match) == len(token) {
			copy(match, match[1:])
			match[len(match)-1] = b
		} else {
			match = append(match, b)
		}
		if string(match) == token {
			return nil
		}
	}
}

// ReadByte returns the next raw byte from the modem, waiting at most the
// given sub-timeout.
//
// It exists for the scanners that walk responses the token matching
// cannot parse, where each character may block for a shortened window
// distinct from the command's receive window.
func (p *Parser) ReadByte(timeout time.Duration) (byte, error) {
	return p.readByte(time.Now().Add(timeout))
}

// ReadLine returns the next non-empty delimiter terminated line received
// within the receive window, with the delimiter removed.
func (p *Parser) ReadLine() (string, error) {
	return p.readLine(time.Now().Add(p.timeout))
}

// Scan reads lines within the receive window until one matches the
// Sscanf style format, filling args.
//
// Lines that do not match the format are discarded.
func (p *Parser) Scan(format string, args ...interface{}) error {
	deadline := time.Now().Add(p.timeout)
	for {
		line, err := p.readLine(deadline)
		if err != nil {
			return errors.Wrapf(err, "scanning %q", format)
		}
		if n, serr := fmt.Sscanf(line, format, args...); serr == nil && n == len(args) {
			return nil
		}
	}
}

func (p *Parser) readLine(deadline time.Time) (string, error) {
	var line []byte
	for {
		b, err := p.readByte(deadline)
		if err != nil {
			return "", err
		}
		line = append(line, b)
		if strings.HasSuffix(string(line), p.delim) {
			line = line[:len(line)-len(p.delim)]
			if len(line) == 0 {
				continue
			}
			return string(line), nil
		}
	}
}

func (p *Parser) readByte(deadline time.Time) (byte, error) {
	d := time.Until(deadline)
	if d <= 0 {
		return 0, ErrTimeout
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case b := <-p.rx:
		return b, nil
	case <-t.C:
		return 0, ErrTimeout
	case <-p.closed:
		// drain any bytes received ahead of the close
		select {
		case b := <-p.rx:
			return b, nil
		default:
			return 0, ErrClosed
		}
	}
}

var (
	// ErrTimeout indicates the expected response was not received within
	// the receive window.
	ErrTimeout = errors.New("timeout")

	// ErrClosed indicates the connection to the underlying modem is
	// broken.
	ErrClosed = errors.New("closed")
)
