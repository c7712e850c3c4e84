package saran2

// EnablePowerSaveMode requests PSM from the network on the next
// registration.
func (m *SaraN2) EnablePowerSaveMode() error {
	return m.transact(ErrEnablePSM, "AT+CPSMS=1")
}

// DisablePowerSaveMode disables PSM.
func (m *SaraN2) DisablePowerSaveMode() error {
	return m.transact(ErrDisablePSM, "AT+CPSMS=0")
}

// ConfigurePowerSaveTimers enables PSM with the requested periodic TAU
// (T3412) and active time (T3324) values.
//
// Each timer is an 8 character string of '0' and '1' characters encoding
// a GPRS timer per 3GPP TS 24.008 - three bits of unit followed by five
// bits of count. The strings are passed to the modem verbatim; their
// content is not validated by the driver and is a caller precondition.
func (m *SaraN2) ConfigurePowerSaveTimers(tau, active string) error {
	return m.transact(ErrSetTimers, `AT+CPSMS=1,,,"%s","%s"`, tau, active)
}

// PowerSaveMode queries whether PSM is currently enabled.
func (m *SaraN2) PowerSaveMode() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.Flush()
	if err := m.p.Send("AT+CPSMS?"); err != nil {
		return false, err
	}
	var mode int
	if err := m.p.Scan("+CPSMS:%d", &mode); err != nil {
		return false, ErrQueryPSM
	}
	if err := m.p.Expect("OK"); err != nil {
		return false, ErrQueryPSM
	}
	return mode == 1, nil
}
