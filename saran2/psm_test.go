package saran2_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thingpilot/sara-n2-driver/saran2"
)

func TestEnablePowerSaveMode(t *testing.T) {
	cmdSet := map[string][]string{
		"AT+CPSMS=1\r\n": {"\r\nOK\r\n"},
	}
	m, mm := setupModem(t, cmdSet)
	assert.Nil(t, m.EnablePowerSaveMode())
	assert.Equal(t, "AT+CPSMS=1\r\n", mm.lastWrite())
}

func TestDisablePowerSaveMode(t *testing.T) {
	cmdSet := map[string][]string{
		"AT+CPSMS=0\r\n": {"\r\nOK\r\n"},
	}
	m, mm := setupModem(t, cmdSet)
	assert.Nil(t, m.DisablePowerSaveMode())
	assert.Equal(t, "AT+CPSMS=0\r\n", mm.lastWrite())
}

func TestEnablePowerSaveModeError(t *testing.T) {
	m, _ := setupModem(t, nil)
	assert.Equal(t, saran2.ErrEnablePSM, m.EnablePowerSaveMode())
	m2, _ := setupModem(t, nil)
	assert.Equal(t, saran2.ErrDisablePSM, m2.DisablePowerSaveMode())
}

func TestConfigurePowerSaveTimers(t *testing.T) {
	cmd := `AT+CPSMS=1,,,"01000011","00000011"` + "\r\n"
	cmdSet := map[string][]string{
		cmd: {"\r\nOK\r\n"},
	}
	m, mm := setupModem(t, cmdSet)
	assert.Nil(t, m.ConfigurePowerSaveTimers("01000011", "00000011"))
	assert.Equal(t, cmd, mm.lastWrite())
}

func TestConfigurePowerSaveTimersError(t *testing.T) {
	m, _ := setupModem(t, nil)
	err := m.ConfigurePowerSaveTimers("01000011", "00000011")
	assert.Equal(t, saran2.ErrSetTimers, err)
}

func TestPowerSaveMode(t *testing.T) {
	patterns := []struct {
		name    string
		rsp     []string
		enabled bool
	}{
		{
			"enabled",
			[]string{"\r\n+CPSMS:1\r\n", "OK\r\n"},
			true,
		},
		{
			"disabled",
			[]string{"\r\n+CPSMS:0\r\n", "OK\r\n"},
			false,
		},
		{
			"fullReply",
			[]string{"\r\n+CPSMS: 1,,,\"01000011\",\"00000011\"\r\n", "OK\r\n"},
			true,
		},
	}
	for _, p := range patterns {
		f := func(t *testing.T) {
			cmdSet := map[string][]string{
				"AT+CPSMS?\r\n": p.rsp,
			}
			m, _ := setupModem(t, cmdSet)
			enabled, err := m.PowerSaveMode()
			assert.Nil(t, err)
			assert.Equal(t, p.enabled, enabled)
		}
		t.Run(p.name, f)
	}
}

func TestPowerSaveModeError(t *testing.T) {
	patterns := []struct {
		name string
		rsp  []string
	}{
		{
			"noReply",
			nil,
		},
		{
			"noFinalOK",
			[]string{"\r\n+CPSMS:1\r\n"},
		},
	}
	for _, p := range patterns {
		f := func(t *testing.T) {
			cmdSet := map[string][]string{
				"AT+CPSMS?\r\n": p.rsp,
			}
			m, _ := setupModem(t, cmdSet)
			_, err := m.PowerSaveMode()
			assert.Equal(t, saran2.ErrQueryPSM, err)
		}
		t.Run(p.name, f)
	}
}
