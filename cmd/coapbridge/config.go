// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the bridge configuration.
type Config struct {
	// address the HTTP API listens on
	Listen string `yaml:"listen"`

	// path to the modem serial device
	Device string `yaml:"device"`

	// serial baud rate
	Baud int `yaml:"baud"`

	// receive window for ordinary modem commands
	Timeout time.Duration `yaml:"timeout"`

	// receive window for CoAP responses and reboot
	CoAPTimeout time.Duration `yaml:"coap_timeout"`

	// log modem reads and writes
	Trace bool `yaml:"trace"`

	CoAP struct {
		// destination CoAP server
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`

		// modem profile used for bridge requests
		Profile int `yaml:"profile"`
	} `yaml:"coap"`
}

func defaultConfig() Config {
	c := Config{
		Listen:      ":8080",
		Device:      "/dev/ttyS0",
		Baud:        57600,
		Timeout:     500 * time.Millisecond,
		CoAPTimeout: 10 * time.Second,
	}
	c.CoAP.Port = 5683
	return c
}

// loadConfig reads the YAML configuration file and applies environment
// overrides. A missing file is not an error; the defaults apply.
//
// Recognised environment variables are BRIDGE_LISTEN, BRIDGE_DEVICE and
// BRIDGE_BAUD.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	b, err := os.ReadFile(path)
	if err == nil {
		if err = yaml.Unmarshal(b, &c); err != nil {
			return c, errors.Wrap(err, "parse config")
		}
	} else if !os.IsNotExist(err) {
		return c, errors.Wrap(err, "read config")
	}
	if v := os.Getenv("BRIDGE_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("BRIDGE_DEVICE"); v != "" {
		c.Device = v
	}
	if v := os.Getenv("BRIDGE_BAUD"); v != "" {
		baud, err := strconv.Atoi(v)
		if err != nil {
			return c, errors.Wrap(err, "parse BRIDGE_BAUD")
		}
		c.Baud = baud
	}
	return c, nil
}
