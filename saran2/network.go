package saran2

import (
	"github.com/thingpilot/sara-n2-driver/info"
)

// ConfigFunction selects one of the UE configuration functions accepted
// by AT+NCONFIG.
type ConfigFunction int

const (
	AutoConnect ConfigFunction = iota
	ScramblingCR0354
	SIAvoidanceCR0859
	CombineAttach
	CellReselection
	EnableBIP
)

// ConfigValue is the setting applied to a ConfigFunction.
type ConfigValue int

const (
	ConfigFalse ConfigValue = iota
	ConfigTrue
)

// configFunctions and configValues map the enumerations to the names the
// modem accepts. Both tables are immutable for the lifetime of the
// process.
var configFunctions = [...]string{
	"AUTOCONNECT",
	"CR_0354_0338_SCRAMBLING",
	"CR_0859_SI_AVOID",
	"COMBINE_ATTACH",
	"CELL_RESELECTION",
	"ENABLE_BIP",
}

var configValues = [...]string{
	"FALSE",
	"TRUE",
}

// Configure sets one of the UE configuration functions.
func (m *SaraN2) Configure(fn ConfigFunction, v ConfigValue) error {
	if fn < 0 || int(fn) >= len(configFunctions) || v < 0 || int(v) >= len(configValues) {
		return ErrInvalidConfig
	}
	return m.transact(ErrConfigure, `AT+NCONFIG="%s","%s"`, configFunctions[fn], configValues[v])
}

// RegistrationStatus returns the EPS network registration status reported
// by AT+CEREG. The status values follow 3GPP TS 27.007: 0 not registered,
// 1 registered home network, 2 searching, 3 denied, 5 registered roaming.
func (m *SaraN2) RegistrationStatus() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.Flush()
	if err := m.p.Send("AT+CEREG?"); err != nil {
		return 0, err
	}
	status, err := m.readStatusReply("+CEREG:", ErrRegistration)
	if err != nil {
		return 0, err
	}
	if err := m.p.Expect("OK"); err != nil {
		return 0, ErrRegistration
	}
	return status, nil
}

// ConnectionStatus reports whether the modem has a signalling connection
// established with the network (AT+CSCON).
func (m *SaraN2) ConnectionStatus() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.Flush()
	if err := m.p.Send("AT+CSCON?"); err != nil {
		return false, err
	}
	connected, err := m.readStatusReply("+CSCON:", ErrConnection)
	if err != nil {
		return false, err
	}
	return connected == 1, nil
}

// readStatusReply consumes a "<prefix> <urc>,<status>" reply and returns
// the status field. Requires the transaction lock.
func (m *SaraN2) readStatusReply(prefix string, failure error) (int, error) {
	if err := m.p.Expect(prefix); err != nil {
		return 0, failure
	}
	line, err := m.p.ReadLine()
	if err != nil {
		return 0, failure
	}
	fields := info.Fields(line)
	if len(fields) < 2 {
		return 0, ErrParse
	}
	status, err := info.Int(fields[1])
	if err != nil {
		return 0, ErrParse
	}
	return status, nil
}

// Reboot power cycles the module.
//
// The modem acknowledges immediately with REBOOTING; the boot banner and
// a final OK arrive only once the module has restarted, which is waited
// for on the widened window. The ordinary receive window is restored on
// every exit path, so a failed reboot cannot leak the widened window into
// the next transaction.
func (m *SaraN2) Reboot() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.Flush()
	if err := m.p.Send("AT+NRB"); err != nil {
		return err
	}
	if err := m.p.Expect("REBOOTING"); err != nil {
		return ErrReboot
	}
	m.p.SetTimeout(m.coapTimeout)
	defer m.p.SetTimeout(m.timeout)
	if err := m.p.Expect("u-blox"); err != nil {
		return ErrBootBanner
	}
	if err := m.p.Expect("OK"); err != nil {
		return ErrBootBanner
	}
	return nil
}
