// SPDX-License-Identifier: MIT

// coapbridge exposes a SARA-N2 modem as a small HTTP API, bridging REST
// calls onto the modem's CoAP client and statistics reports.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/thingpilot/sara-n2-driver/saran2"
	"github.com/thingpilot/sara-n2-driver/serial"
	"github.com/thingpilot/sara-n2-driver/trace"
)

type bridge struct {
	m   *saran2.SaraN2
	cfg Config
	log zerolog.Logger
}

func main() {
	cfgPath := flag.String("c", "coapbridge.yaml", "path to configuration file")
	flag.Parse()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	p, err := serial.New(serial.WithPort(cfg.Device), serial.WithBaud(cfg.Baud))
	if err != nil {
		log.Fatal().Err(err).Msg("open serial port")
	}
	defer p.Close()
	var mio io.ReadWriter = p
	if cfg.Trace {
		mio = trace.New(p, trace.WithLogger(&log))
	}
	b := &bridge{
		m: saran2.New(mio,
			saran2.WithTimeout(cfg.Timeout),
			saran2.WithCoAPTimeout(cfg.CoAPTimeout),
		),
		cfg: cfg,
		log: log,
	}
	if err = b.m.Ping(); err != nil {
		log.Fatal().Err(err).Msg("modem not responding")
	}
	if cfg.CoAP.Address != "" {
		if err = b.setupProfile(); err != nil {
			log.Fatal().Err(err).Msg("configure CoAP profile")
		}
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", b.status).Methods(http.MethodGet)
	api.HandleFunc("/stats", b.stats).Methods(http.MethodGet)
	api.HandleFunc("/stats/{group}", b.statsByGroup).Methods(http.MethodGet)
	api.HandleFunc("/coap/get", b.coapGet).Methods(http.MethodPost)
	api.HandleFunc("/coap/post", b.coapPost).Methods(http.MethodPost)
	api.HandleFunc("/psm", b.setPSM).Methods(http.MethodPut)
	api.HandleFunc("/reboot", b.reboot).Methods(http.MethodPost)

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      cors.AllowAll().Handler(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Info().Str("listen", cfg.Listen).Msg("bridge up")
	if err = srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

// setupProfile binds the configured destination to the bridge profile.
func (b *bridge) setupProfile() error {
	for _, op := range []func() error{
		func() error { return b.m.SelectProfile(b.cfg.CoAP.Profile) },
		func() error { return b.m.SetCoAPAddress(b.cfg.CoAP.Address, b.cfg.CoAP.Port) },
		func() error { return b.m.SetProfileValidity(1) },
		b.m.SelectCoAPInterface,
	} {
		if err := op(); err != nil {
			return err
		}
	}
	return nil
}

func (b *bridge) respond(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		b.log.Error().Err(err).Msg("encode response")
	}
}

func (b *bridge) fail(w http.ResponseWriter, code int, err error) {
	b.log.Error().Err(err).Msg("request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (b *bridge) status(w http.ResponseWriter, r *http.Request) {
	reg, err := b.m.RegistrationStatus()
	if err != nil {
		b.fail(w, http.StatusBadGateway, err)
		return
	}
	connected, err := b.m.ConnectionStatus()
	if err != nil {
		b.fail(w, http.StatusBadGateway, err)
		return
	}
	psm, err := b.m.PowerSaveMode()
	if err != nil {
		b.fail(w, http.StatusBadGateway, err)
		return
	}
	b.respond(w, map[string]interface{}{
		"registration":    reg,
		"connected":       connected,
		"power_save_mode": psm,
	})
}

func (b *bridge) stats(w http.ResponseWriter, r *http.Request) {
	s, err := b.m.Statistics()
	if err != nil {
		b.fail(w, http.StatusBadGateway, err)
		return
	}
	b.respond(w, s)
}

var statsGroups = map[string]saran2.StatsType{
	"radio":   saran2.StatsRadio,
	"cell":    saran2.StatsCell,
	"bler":    saran2.StatsBLER,
	"thp":     saran2.StatsThroughput,
	"appsmem": saran2.StatsAppSMem,
	"all":     saran2.StatsAll,
}

func (b *bridge) statsByGroup(w http.ResponseWriter, r *http.Request) {
	group := mux.Vars(r)["group"]
	st, ok := statsGroups[group]
	if !ok {
		b.fail(w, http.StatusNotFound, saran2.ErrInvalidStatsType)
		return
	}
	s, err := b.m.StatisticsByType(st)
	if err != nil {
		b.fail(w, http.StatusBadGateway, err)
		return
	}
	b.respond(w, s)
}

type coapRequest struct {
	URI    string `json:"uri"`
	Data   string `json:"data"`
	Format int    `json:"format"`
}

type coapResponse struct {
	Code       int    `json:"code"`
	Payload    string `json:"payload"`
	MoreBlocks bool   `json:"more_blocks"`
}

func (b *bridge) coapGet(w http.ResponseWriter, r *http.Request) {
	var req coapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.fail(w, http.StatusBadRequest, err)
		return
	}
	if err := b.m.SetCoAPURI(req.URI); err != nil {
		b.fail(w, http.StatusBadRequest, err)
		return
	}
	rsp, err := b.m.Get(make([]byte, saran2.MaxPayloadSize))
	if err != nil {
		b.fail(w, http.StatusBadGateway, err)
		return
	}
	b.respond(w, coapResponse{
		Code:       rsp.Code,
		Payload:    string(rsp.Payload),
		MoreBlocks: rsp.MoreBlocks,
	})
}

func (b *bridge) coapPost(w http.ResponseWriter, r *http.Request) {
	var req coapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.fail(w, http.StatusBadRequest, err)
		return
	}
	if err := b.m.SetCoAPURI(req.URI); err != nil {
		b.fail(w, http.StatusBadRequest, err)
		return
	}
	rsp, err := b.m.Post(req.Data, saran2.DataFormat(req.Format), make([]byte, saran2.MaxPayloadSize))
	if err != nil {
		b.fail(w, http.StatusBadGateway, err)
		return
	}
	b.respond(w, coapResponse{
		Code:       rsp.Code,
		Payload:    string(rsp.Payload),
		MoreBlocks: rsp.MoreBlocks,
	})
}

func (b *bridge) setPSM(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.fail(w, http.StatusBadRequest, err)
		return
	}
	var err error
	if req.Enabled {
		err = b.m.EnablePowerSaveMode()
	} else {
		err = b.m.DisablePowerSaveMode()
	}
	if err != nil {
		b.fail(w, http.StatusBadGateway, err)
		return
	}
	b.respond(w, map[string]bool{"enabled": req.Enabled})
}

func (b *bridge) reboot(w http.ResponseWriter, r *http.Request) {
	if err := b.m.Reboot(); err != nil {
		b.fail(w, http.StatusBadGateway, err)
		return
	}
	b.respond(w, map[string]bool{"rebooted": true})
}
