package saran2

import (
	"bytes"
	"encoding/binary"
	"strconv"
)

// StatsType selects one of the statistic groups reported by AT+NUESTATS.
type StatsType int

const (
	StatsRadio StatsType = iota
	StatsCell
	StatsBLER
	StatsThroughput
	StatsAppSMem
	StatsAll
)

// statsTypes maps StatsType to the report names the modem accepts. The
// table is immutable for the lifetime of the process.
var statsTypes = [...]string{
	"RADIO",
	"CELL",
	"BLER",
	"THP",
	"APPSMEM",
	"ALL",
}

// Stats is the operational statistics record reported by the modem.
//
// Fields appear in report order. Fields absent from a partial report are
// left zero.
type Stats struct {
	SignalPower int32 `json:"signal_power"`
	TotalPower  int32 `json:"total_power"`
	TxPower     int32 `json:"tx_power"`
	TxTime      int32 `json:"tx_time"`
	RxTime      int32 `json:"rx_time"`
	CellID      int32 `json:"cell_id"`
	ECL         int32 `json:"ecl"`
	SNR         int32 `json:"snr"`
	EARFCN      int32 `json:"earfcn"`
	PCI         int32 `json:"pci"`
	RSRQ        int32 `json:"rsrq"`
}

// StatsSize is the length of the flat form produced by MarshalBinary.
const StatsSize = 44

// MarshalBinary returns the record as StatsSize bytes: the eleven fields
// in declaration order, each a little-endian int32. The layout is defined
// by this field order alone, not by the in-memory representation.
func (s Stats) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, StatsSize))
	if err := binary.Write(buf, binary.LittleEndian, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary fills the record from the flat form produced by
// MarshalBinary.
func (s *Stats) UnmarshalBinary(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, s)
}

// slots returns the scan destinations in report order.
func (s *Stats) slots() []*int32 {
	return []*int32{
		&s.SignalPower,
		&s.TotalPower,
		&s.TxPower,
		&s.TxTime,
		&s.RxTime,
		&s.CellID,
		&s.ECL,
		&s.SNR,
		&s.EARFCN,
		&s.PCI,
		&s.RSRQ,
	}
}

// Statistics collects the full operational statistics report.
func (m *SaraN2) Statistics() (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readStats("AT+NUESTATS")
}

// StatisticsByType collects a single statistic group.
func (m *SaraN2) StatisticsByType(t StatsType) (Stats, error) {
	if t < 0 || int(t) >= len(statsTypes) {
		return Stats{}, ErrInvalidStatsType
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readStats(`AT+NUESTATS="%s"`, statsTypes[t])
}

// readStats sends the report command and scans the report into successive
// record slots. Requires the transaction lock.
//
// The report is a run of decimal fields separated by commas, with a
// carriage return terminating each record line; a comma or carriage
// return converts the accumulated token and stores it into the next slot,
// line feeds are ignored. The scan is capped at statsScanLimit bytes and
// ends on slot exhaustion, the cap, or stream exhaustion.
func (m *SaraN2) readStats(format string, args ...interface{}) (Stats, error) {
	m.p.Flush()
	if err := m.p.Send(format, args...); err != nil {
		return Stats{}, err
	}

	var s Stats
	slots := s.slots()
	next := 0
	var token []byte
	store := func() error {
		if len(token) == 0 {
			return nil
		}
		v, err := strconv.Atoi(string(token))
		if err != nil {
			return ErrParse
		}
		*slots[next] = int32(v)
		next++
		token = token[:0]
		return nil
	}
	for i := 0; i < statsScanLimit && next < len(slots); i++ {
		b, err := m.p.ReadByte(m.scanTimeout)
		if err != nil {
			// stream exhausted
			break
		}
		switch b {
		case ',', '\r':
			if err := store(); err != nil {
				return Stats{}, err
			}
		case '\n':
		default:
			token = append(token, b)
		}
	}
	if next == 0 {
		return Stats{}, ErrStats
	}
	return s, nil
}
