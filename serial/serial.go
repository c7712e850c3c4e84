// Package serial provides a serial port suitable for connecting to the
// modem. It is currently a simple wrapper around tarm serial.
package serial

import (
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is the SARA-N2 default baud rate.
const DefaultBaud = 57600

// Config contains the serial port configuration.
type Config struct {
	port        string
	baud        int
	readTimeout time.Duration
}

// Option modifies the Config used to open the port.
type Option func(*Config)

// WithPort sets the path to the serial device.
func WithPort(port string) Option {
	return func(c *Config) {
		c.port = port
	}
}

// WithBaud sets the baud rate for the port.
//
// The default rate is 57600.
func WithBaud(baud int) Option {
	return func(c *Config) {
		c.baud = baud
	}
}

// WithReadTimeout sets the blocking limit on raw port reads.
//
// With no read timeout a port read blocks until at least one byte
// arrives.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.readTimeout = d
	}
}

// New opens the serial port.
func New(options ...Option) (*serial.Port, error) {
	c := defaultConfig
	for _, option := range options {
		option(&c)
	}
	return serial.OpenPort(&serial.Config{
		Name:        c.port,
		Baud:        c.baud,
		ReadTimeout: c.readTimeout,
	})
}
