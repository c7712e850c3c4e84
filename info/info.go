// Package info provides utility functions for manipulating info lines returned
// by the modem in response to AT commands.
package info

import (
	"strconv"
	"strings"
)

// HasPrefix returns true if the line begins with the info prefix for the command.
func HasPrefix(line, cmd string) bool {
	return strings.HasPrefix(line, cmd+":")
}

// TrimPrefix removes the command prefix, if any, and any intervening space
// from the info line.
func TrimPrefix(line, cmd string) string {
	return strings.TrimLeft(strings.TrimPrefix(line, cmd+":"), " ")
}

// Fields splits a comma separated info line into its fields, with
// surrounding space removed from each.
func Fields(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// Int converts a single decimal info field to an int.
func Int(field string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(field))
}
