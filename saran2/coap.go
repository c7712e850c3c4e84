package saran2

import (
	"strconv"
)

// HeaderOption selects one of the CoAP PDU header options that may be
// added to or removed from outgoing requests.
type HeaderOption int

const (
	OptionURIHost HeaderOption = iota
	OptionURIPort
	OptionURIPath
	OptionURIQuery
)

// DataFormat identifies the content format sent with PUT and POST
// payloads. The value is passed through to the modem verbatim.
type DataFormat int

const (
	FormatTextPlain DataFormat = iota
	FormatLinkFormat
	FormatXML
	FormatOctetStream
	FormatRDFXML
	FormatEXI
	FormatJSON
	FormatCBOR
)

// Response is a decoded CoAP response.
//
// Code follows the CoAP class convention: 2 success, 4 client error, 5
// server error. Payload aliases the buffer supplied to the verb that
// produced the Response and is only valid until that buffer is reused.
// MoreBlocks is set when the server has further blocks to deliver for the
// same resource.
type Response struct {
	Code       int
	Payload    []byte
	MoreBlocks bool
}

// SetCoAPAddress sets the destination IP address and port for the current
// CoAP profile.
//
// The address is sent verbatim; it must be a dotted quad without embedded
// double quote characters.
func (m *SaraN2) SetCoAPAddress(ip string, port int) error {
	return m.transact(ErrSetAddress, `AT+UCOAP=0,"%s","%d"`, ip, port)
}

// SetCoAPURI sets the request URI for the current CoAP profile.
func (m *SaraN2) SetCoAPURI(uri string) error {
	if len(uri) > MaxURILength {
		return ErrURITooLong
	}
	return m.transact(ErrSetURI, `AT+UCOAP=1,"%s"`, uri)
}

// SetHeaderOption adds (enable true) or removes one of the CoAP PDU
// header options for the current profile.
func (m *SaraN2) SetHeaderOption(opt HeaderOption, enable bool) error {
	if opt < OptionURIHost || opt > OptionURIQuery {
		return ErrInvalidHeaderOption
	}
	v := 0
	if enable {
		v = 1
	}
	return m.transact(ErrSetHeaderOption, `AT+UCOAP=2,"%d","%d"`, opt, v)
}

// SelectProfile makes the given profile current.
func (m *SaraN2) SelectProfile(profile int) error {
	if profile < 0 || profile > NumberOfProfiles {
		return ErrInvalidProfile
	}
	return m.transact(ErrSelectProfile, `AT+UCOAP=3,"%d"`, profile)
}

// SetProfileValidity marks the current profile valid (1) or invalid (0).
// Only a valid profile may be used for CoAP operations.
func (m *SaraN2) SetProfileValidity(valid int) error {
	if valid < 0 || valid > 1 {
		return ErrInvalidValidity
	}
	return m.transact(ErrSetValidity, `AT+UCOAP=4,"%d"`, valid)
}

// LoadProfile restores the given profile from the modem's non-volatile
// storage.
func (m *SaraN2) LoadProfile(profile int) error {
	if profile < 0 || profile > NumberOfProfiles {
		return ErrInvalidProfile
	}
	return m.transact(ErrLoadProfile, `AT+UCOAP=5,"%d"`, profile)
}

// SaveProfile persists the given profile to the modem's non-volatile
// storage.
func (m *SaraN2) SaveProfile(profile int) error {
	if profile < 0 || profile > NumberOfProfiles {
		return ErrInvalidProfile
	}
	return m.transact(ErrSaveProfile, `AT+UCOAP=6,"%d"`, profile)
}

// SelectCoAPInterface routes the +UCOAPC commands to the CoAP component.
// It must be issued once before any CoAP verb.
func (m *SaraN2) SelectCoAPInterface() error {
	return m.transact(ErrSelectInterface, "AT+USELCP=1")
}

// Get performs a CoAP GET against the current profile.
//
// The payload is written into buf, which should hold MaxPayloadSize
// bytes; Response.Payload is the filled prefix. On a non-nil error buf
// may have been partially written and its contents must be discarded.
func (m *SaraN2) Get(buf []byte) (Response, error) {
	return m.request(ErrGet, buf, "AT+UCOAPC=1")
}

// Delete performs a CoAP DELETE against the current profile. Buffer
// semantics are as for Get.
func (m *SaraN2) Delete(buf []byte) (Response, error) {
	return m.request(ErrDelete, buf, "AT+UCOAPC=2")
}

// Put performs a CoAP PUT with the given payload and content format.
// Buffer semantics are as for Get.
//
// The data is sent verbatim; it must not contain double quote characters.
func (m *SaraN2) Put(data string, format DataFormat, buf []byte) (Response, error) {
	if format < FormatTextPlain || format > FormatCBOR {
		return Response{}, ErrInvalidDataFormat
	}
	return m.request(ErrPut, buf, `AT+UCOAPC=3,"%s",%d`, data, format)
}

// Post performs a CoAP POST with the given payload and content format.
// Buffer semantics are as for Get.
//
// The data is sent verbatim; it must not contain double quote characters.
func (m *SaraN2) Post(data string, format DataFormat, buf []byte) (Response, error) {
	if format < FormatTextPlain || format > FormatCBOR {
		return Response{}, ErrInvalidDataFormat
	}
	return m.request(ErrPost, buf, `AT+UCOAPC=4,"%s",%d`, data, format)
}

// request issues a CoAP verb and decodes the +UCOAPCD report into buf.
func (m *SaraN2) request(failure error, buf []byte, format string, args ...interface{}) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.Flush()
	if err := m.p.Send(format, args...); err != nil {
		return Response{}, err
	}
	return m.readCoAPResponse(failure, buf)
}

// states of the CoAP response scan
const (
	scanCode = iota
	scanPayload
	scanFlag
	scanDone
)

// readCoAPResponse scans a +UCOAPCD report from the raw byte stream.
//
// The report interleaves a bare integer response code, a double quoted
// payload and a bare continuation flag on one line, and the payload may
// itself contain delimiter characters, so after the report prefix the
// stream is walked one byte at a time rather than pattern matched. The
// payload runs from the first double quote to the second; the first '0'
// or '1' after the closing quote is the continuation flag and ends the
// scan. The scan is capped at coapScanLimit bytes and each byte is waited
// on for at most the scan sub-timeout.
//
// The ordinary receive window is restored on every exit path.
func (m *SaraN2) readCoAPResponse(failure error, buf []byte) (Response, error) {
	m.p.SetTimeout(m.coapTimeout)
	defer m.p.SetTimeout(m.timeout)

	if err := m.p.Expect("+UCOAPCD:"); err != nil {
		return Response{}, failure
	}

	var (
		rsp   Response
		code  []byte
		n     int
		state = scanCode
	)
	for i := 0; i < coapScanLimit && state != scanDone; i++ {
		b, err := m.p.ReadByte(m.scanTimeout)
		if err != nil {
			// stream exhausted
			break
		}
		switch state {
		case scanCode:
			switch b {
			case ',':
			case '"':
				state = scanPayload
			default:
				code = append(code, b)
			}
		case scanPayload:
			if b == '"' {
				state = scanFlag
				break
			}
			if n < len(buf) {
				buf[n] = b
				n++
			}
		case scanFlag:
			if b == '0' || b == '1' {
				rsp.MoreBlocks = b == '1'
				state = scanDone
			}
		}
	}
	if state == scanCode || state == scanPayload {
		// never saw the closing quote
		return Response{}, ErrParse
	}
	c, err := strconv.Atoi(string(code))
	if err != nil {
		return Response{}, ErrParse
	}
	rsp.Code = c
	rsp.Payload = buf[:n]
	return rsp, nil
}
