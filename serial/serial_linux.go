// SPDX-License-Identifier: MIT

//go:build linux

package serial

var defaultConfig = Config{
	port: "/dev/ttyS0",
	baud: DefaultBaud,
}
