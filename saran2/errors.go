package saran2

import "github.com/pkg/errors"

// Validation failures. These are detected before the transaction lock is
// acquired and never touch the transport.
var (
	// ErrInvalidProfile indicates a profile index outside 0 to
	// NumberOfProfiles.
	ErrInvalidProfile = errors.New("profile index out of range")

	// ErrInvalidValidity indicates a profile validity flag other than 0
	// or 1.
	ErrInvalidValidity = errors.New("profile validity flag must be 0 or 1")

	// ErrURITooLong indicates a request URI longer than MaxURILength.
	ErrURITooLong = errors.New("URI exceeds maximum length")

	// ErrInvalidHeaderOption indicates an unknown CoAP PDU header option.
	ErrInvalidHeaderOption = errors.New("header option out of range")

	// ErrInvalidDataFormat indicates an unknown CoAP content format.
	ErrInvalidDataFormat = errors.New("data format out of range")

	// ErrInvalidConfig indicates an unknown UE configuration function or
	// value.
	ErrInvalidConfig = errors.New("configuration function or value out of range")

	// ErrInvalidStatsType indicates an unknown statistics report type.
	ErrInvalidStatsType = errors.New("statistics type out of range")
)

// Transaction failures. The expected acknowledgment to the named command
// was not observed within the receive window. The transaction lock is
// always released before one of these is returned.
var (
	ErrNoResponse      = errors.New("no response to AT")
	ErrSetAddress      = errors.New("failed to set CoAP destination address")
	ErrSetURI          = errors.New("failed to set CoAP URI")
	ErrSetHeaderOption = errors.New("failed to toggle CoAP PDU header option")
	ErrSelectProfile   = errors.New("failed to select CoAP profile")
	ErrSetValidity     = errors.New("failed to set CoAP profile validity")
	ErrLoadProfile     = errors.New("failed to load CoAP profile from NVM")
	ErrSaveProfile     = errors.New("failed to save CoAP profile to NVM")
	ErrSelectInterface = errors.New("failed to select CoAP AT interface")
	ErrGet             = errors.New("GET request not acknowledged")
	ErrDelete          = errors.New("DELETE request not acknowledged")
	ErrPut             = errors.New("PUT request not acknowledged")
	ErrPost            = errors.New("POST request not acknowledged")
	ErrEnablePSM       = errors.New("failed to enable power save mode")
	ErrDisablePSM      = errors.New("failed to disable power save mode")
	ErrQueryPSM        = errors.New("failed to query power save mode")
	ErrSetTimers       = errors.New("failed to configure power save timers")
	ErrConfigure       = errors.New("failed to configure UE function")
	ErrRegistration    = errors.New("failed to query network registration")
	ErrConnection      = errors.New("failed to query connection status")
	ErrStats           = errors.New("statistics report not received")
)

var (
	// ErrParse indicates a response was present but could not be decoded
	// into the expected fields. Output buffers may have been partially
	// written and must be discarded.
	ErrParse = errors.New("failed to parse modem response")

	// ErrReboot indicates the modem did not acknowledge the reboot
	// command.
	ErrReboot = errors.New("reboot not acknowledged")

	// ErrBootBanner indicates the modem acknowledged the reboot but the
	// boot banner never arrived - distinct from ErrReboot so callers can
	// tell a module that never went down from one that failed to come
	// back.
	ErrBootBanner = errors.New("boot banner not received after reboot")

	// ErrNoResetLine indicates no reset line was configured at
	// construction.
	ErrNoResetLine = errors.New("no reset line configured")

	// ErrNoPowerSense indicates no power sense line was configured at
	// construction.
	ErrNoPowerSense = errors.New("no power sense line configured")
)
