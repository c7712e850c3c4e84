// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := loadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Nil(t, err)
	assert.Equal(t, ":8080", c.Listen)
	assert.Equal(t, "/dev/ttyS0", c.Device)
	assert.Equal(t, 57600, c.Baud)
	assert.Equal(t, 500*time.Millisecond, c.Timeout)
	assert.Equal(t, 10*time.Second, c.CoAPTimeout)
	assert.Equal(t, 5683, c.CoAP.Port)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	cfg := `
listen: ":9000"
device: /dev/ttyUSB1
baud: 9600
timeout: 1s
trace: true
coap:
  address: 192.168.2.1
  port: 5684
  profile: 2
`
	require.Nil(t, os.WriteFile(path, []byte(cfg), 0o600))
	c, err := loadConfig(path)
	require.Nil(t, err)
	assert.Equal(t, ":9000", c.Listen)
	assert.Equal(t, "/dev/ttyUSB1", c.Device)
	assert.Equal(t, 9600, c.Baud)
	assert.Equal(t, time.Second, c.Timeout)
	assert.True(t, c.Trace)
	assert.Equal(t, "192.168.2.1", c.CoAP.Address)
	assert.Equal(t, 5684, c.CoAP.Port)
	assert.Equal(t, 2, c.CoAP.Profile)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BRIDGE_LISTEN", ":7070")
	t.Setenv("BRIDGE_DEVICE", "/dev/ttyAMA0")
	t.Setenv("BRIDGE_BAUD", "115200")
	c, err := loadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Nil(t, err)
	assert.Equal(t, ":7070", c.Listen)
	assert.Equal(t, "/dev/ttyAMA0", c.Device)
	assert.Equal(t, 115200, c.Baud)
}

func TestLoadConfigBadBaud(t *testing.T) {
	t.Setenv("BRIDGE_BAUD", "fast")
	_, err := loadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.NotNil(t, err)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.Nil(t, os.WriteFile(path, []byte("listen: [::"), 0o600))
	_, err := loadConfig(path)
	assert.NotNil(t, err)
}
