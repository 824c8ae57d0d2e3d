// Package nmea picks the one fact the discipline loop needs out of a GPS
// receiver's NMEA-0183 chatter: whether the fix is currently 3D. It does not
// attempt to be a general sentence parser — only $GPGSA, and only far enough
// to read the fix-mode field and, for diagnostics, PDOP.
package nmea

import "strconv"

// FixMode is the fix-mode field (field 2) of a $GPGSA sentence.
type FixMode byte

const (
	FixUnknown FixMode = 0
	Fix3D      FixMode = '3'
)

// Locked3D reports whether the sentence carries a 3D fix, the only
// distinction the discipline loop cares about (spec 4.D's Locked3D vs.
// Unlocked).
func (m FixMode) Locked3D() bool {
	return m == Fix3D
}

// GSA is the subset of a parsed $GPGSA sentence the rest of the firmware
// touches.
type GSA struct {
	FixMode FixMode
	PDOP    float64 // 0 if absent or unparsable; diagnostic only.
}

// ParseGSA validates a raw NMEA sentence's checksum and, if it names a
// $GPGSA frame, extracts the fix mode (field 2) and PDOP (field 15). It
// returns ok=false for anything that is not a checksum-valid $GPGSA: a
// different sentence type, a short or truncated line, or a checksum
// mismatch. Every one of those is silent drop at the caller (spec 7,
// Malformed input), mirroring handleGPS() treating a bad line as a no-op
// rather than an error.
//
// raw must not include the trailing CR/LF the receiver's line framing
// strips; it starts with '$' and ends with "*HH".
func ParseGSA(raw string) (g GSA, ok bool) {
	if !validChecksum(raw) {
		return GSA{}, false
	}
	if len(raw) < 6 || raw[:6] != "$GPGSA" {
		return GSA{}, false
	}

	star := indexByte(raw, '*')
	body := raw[:star] // sentence without "*HH"

	fixField, ok := field(body, 2)
	if !ok || len(fixField) == 0 {
		return GSA{}, false
	}

	g.FixMode = FixMode(fixField[0])

	if pdopField, ok := field(body, 15); ok {
		if v, err := strconv.ParseFloat(pdopField, 64); err == nil {
			g.PDOP = v
		}
	}
	return g, true
}

// validChecksum XORs every byte between '$' and '*' and compares it against
// the two trailing hex digits, exactly as handleGPS() does byte-for-byte.
func validChecksum(raw string) bool {
	if len(raw) < 9 || raw[0] != '$' {
		return false // no sentence is shorter than "$GPGGA*xx"
	}
	star := indexByte(raw, '*')
	if star < 0 || star > len(raw)-3 {
		return false // no room for "*" and two checksum digits
	}
	var sum byte
	for i := 1; i < star; i++ {
		sum ^= raw[i]
	}
	want, ok := hexByte(raw[star+1], raw[star+2])
	return ok && want == sum
}

// field returns the n'th comma-delimited field of s (0-indexed, with field 0
// being the sentence name before the first comma).
func field(s string, n int) (string, bool) {
	start := 0
	for i := 0; i < n; i++ {
		idx := indexByteFrom(s, ',', start)
		if idx < 0 {
			return "", false
		}
		start = idx + 1
	}
	end := indexByteFrom(s, ',', start)
	if end < 0 {
		end = len(s)
	}
	return s[start:end], true
}

func indexByte(s string, c byte) int {
	return indexByteFrom(s, c, 0)
}

func indexByteFrom(s string, c byte, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func hexByte(hi, lo byte) (byte, bool) {
	h, ok1 := hexNibble(hi)
	l, ok2 := hexNibble(lo)
	return h<<4 | l, ok1 && ok2
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
