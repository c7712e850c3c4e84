// SPDX-License-Identifier: MIT

// nuestats collects the operational statistics report from a SARA-N2
// modem and prints it as JSON.
package main

import (
	"encoding/json"
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

var statsTypes = map[string]saran2.StatsType{
	"radio":   saran2.StatsRadio,
	"cell":    saran2.StatsCell,
	"bler":    saran2.StatsBLER,
	"thp":     saran2.StatsThroughput,
	"appsmem": saran2.StatsAppSMem,
	"all":     saran2.StatsAll,
}

func main() {
	dev := flag.String("d", "/dev/ttyS0", "path to modem device")
	baud := flag.Int("b", serial.DefaultBaud, "baud rate")
	timeout := flag.Duration("t", 500*time.Millisecond, "command timeout")
	group := flag.String("g", "", "statistic group (radio, cell, bler, thp, appsmem, all)")
	verbose := flag.Bool("v", false, "log modem interactions")
	flag.Parse()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	p, err := serial.New(serial.WithPort(*dev), serial.WithBaud(*baud))
	if err != nil {
		log.Fatal().Err(err).Msg("open serial port")
	}
	defer p.Close()
	var mio io.ReadWriter = p
	if *verbose {
		mio = trace.New(p, trace.WithLogger(&log))
	}
	m := saran2.New(mio, saran2.WithTimeout(*timeout))
	if err = m.Ping(); err != nil {
		log.Fatal().Err(err).Msg("modem not responding")
	}
	var s saran2.Stats
	if *group == "" {
		s, err = m.Statistics()
	} else {
		st, ok := statsTypes[*group]
		if !ok {
			log.Fatal().Str("group", *group).Msg("unknown statistic group")
		}
		s, err = m.StatisticsByType(st)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("statistics report failed")
	}
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("encode report")
	}
	fmt.Printf("%s\n", out)
}
