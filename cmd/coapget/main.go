// SPDX-License-Identifier: MIT

// coapget performs a CoAP GET through a SARA-N2 modem and prints the
// response payload.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/thingpilot/sara-n2-driver/saran2"
	"github.com/thingpilot/sara-n2-driver/serial"
	"github.com/thingpilot/sara-n2-driver/trace"
)

func main() {
	dev := flag.String("d", "/dev/ttyS0", "path to modem device")
	baud := flag.Int("b", serial.DefaultBaud, "baud rate")
	timeout := flag.Duration("t", 500*time.Millisecond, "command timeout")
	ctimeout := flag.Duration("ct", 10*time.Second, "CoAP response timeout")
	addr := flag.String("s", "", "CoAP server IP address")
	port := flag.Int("p", 5683, "CoAP server port")
	uri := flag.String("u", "", "request URI")
	profile := flag.Int("n", 0, "CoAP profile to use")
	verbose := flag.Bool("v", false, "log modem interactions")
	flag.Parse()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *addr == "" || *uri == "" {
		flag.Usage()
		os.Exit(2)
	}
	p, err := serial.New(serial.WithPort(*dev), serial.WithBaud(*baud))
	if err != nil {
		log.Fatal().Err(err).Msg("open serial port")
	}
	defer p.Close()
	var mio io.ReadWriter = p
	if *verbose {
		mio = trace.New(p, trace.WithLogger(&log))
	}
	m := saran2.New(mio,
		saran2.WithTimeout(*timeout),
		saran2.WithCoAPTimeout(*ctimeout),
	)
	if err = m.Ping(); err != nil {
		log.Fatal().Err(err).Msg("modem not responding")
	}
	for _, step := range []struct {
		name string
		op   func() error
	}{
		{"select profile", func() error { return m.SelectProfile(*profile) }},
		{"set address", func() error { return m.SetCoAPAddress(*addr, *port) }},
		{"set URI", func() error { return m.SetCoAPURI(*uri) }},
		{"set validity", func() error { return m.SetProfileValidity(1) }},
		{"select interface", func() error { return m.SelectCoAPInterface() }},
	} {
		if err = step.op(); err != nil {
			log.Fatal().Err(err).Msg(step.name)
		}
	}
	buf := make([]byte, saran2.MaxPayloadSize)
	rsp, err := m.Get(buf)
	if err != nil {
		log.Fatal().Err(err).Msg("GET failed")
	}
	log.Info().Int("code", rsp.Code).Bool("more", rsp.MoreBlocks).Msg("response")
	fmt.Printf("%s\n", rsp.Payload)
}
