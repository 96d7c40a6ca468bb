package session

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// fallbackFingerprint is used when signal collection fails outright.
const fallbackFingerprint = "fallback"

// Signals are the environment values a fingerprint is derived from. Empty
// fields are legal; a server-side caller typically only has the first two.
type Signals struct {
	UserAgent string
	Language  string
	// Screen is "WxH" when known.
	Screen   string
	Timezone string
}

// SignalProvider supplies the current environment signals. Injecting the
// provider keeps the fingerprint algorithm testable without a live client.
type SignalProvider interface {
	Signals() (Signals, error)
}

// StaticSignals is a SignalProvider returning fixed values. The zero value
// provides empty signals.
type StaticSignals struct {
	Values Signals
}

func (s StaticSignals) Signals() (Signals, error) {
	return s.Values, nil
}

// Fingerprint derives the 32-bit environment fingerprint: the signals are
// joined with "||" and run through FNV-1a over UTF-16 code units (matching
// what the browser client computes over its JS string), rendered as hex.
// Any provider failure yields a fixed fallback string instead of an error.
func Fingerprint(p SignalProvider) string {
	if p == nil {
		return fallbackFingerprint
	}
	sig, err := p.Signals()
	if err != nil {
		return fallbackFingerprint
	}

	joined := strings.Join([]string{sig.UserAgent, sig.Language, sig.Screen, sig.Timezone}, "||")

	h := uint32(0x811c9dc5)
	for _, u := range utf16.Encode([]rune(joined)) {
		h ^= uint32(u)
		h *= 0x01000193
	}
	return strconv.FormatUint(uint64(h), 16)
}
