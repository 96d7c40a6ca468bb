package validate

import (
	"encoding/binary"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
)

// Hostnames and address ranges that an admin-supplied URL must never point
// at. A "live URL" field can end up fetched or rendered server-side, so
// without this denylist the admin surface becomes an SSRF pivot into the
// internal network and cloud metadata services.
var (
	// cgnat is the carrier-grade NAT range 100.64.0.0/10.
	cgnat = netip.MustParsePrefix("100.64.0.0/10")

	// metadataAddr is the cloud metadata service address.
	metadataAddr = netip.MustParseAddr("169.254.169.254")

	blockedHostnames = map[string]bool{
		"localhost":                true,
		"metadata.google.internal": true,
	}
)

// IsSafeURL reports whether a URL is acceptable for an optional link field.
// An empty string is safe (the field is optional). Otherwise the URL must
// parse, use http or https, and resolve to a hostname outside the denylist:
// loopback, RFC1918 private ranges, link-local (including 169.254.169.254),
// carrier-grade NAT, IPv6 loopback/unique-local/link-local, and the literal
// metadata hostname are all rejected.
func IsSafeURL(raw string) bool {
	if raw == "" {
		return true
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if blockedHostnames[host] {
		return false
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		// Resolvers accept shorthand numeric hosts that ParseAddr does
		// not: "127.1" dials 127.0.0.1. Expand those before deciding.
		if shorthand, ok := parseNumericHost(host); ok {
			return !isBlockedAddr(shorthand)
		}
		// Not an IP literal. Hostname-shaped values other than the
		// blocked literals are allowed; DNS rebinding is out of scope
		// for a client-side gate.
		return true
	}
	return !isBlockedAddr(addr)
}

// parseNumericHost interprets the shorthand IPv4 forms inet_aton accepts:
// one to four dot-separated parts, each decimal, octal (leading 0), or hex
// (0x), with the final part filling the remaining bytes. "127.1" is
// 127.0.0.1, "0177.0.0.1" is loopback, "2130706433" is loopback.
func parseNumericHost(host string) (netip.Addr, bool) {
	parts := strings.Split(host, ".")
	if len(parts) > 4 {
		return netip.Addr{}, false
	}

	nums := make([]uint64, len(parts))
	for i, p := range parts {
		if p == "" || strings.ContainsRune(p, '_') {
			return netip.Addr{}, false
		}
		n, err := strconv.ParseUint(p, 0, 64)
		if err != nil {
			return netip.Addr{}, false
		}
		nums[i] = n
	}

	// All but the last part are single bytes; the last covers the rest.
	last := len(nums) - 1
	var v uint32
	for i := 0; i < last; i++ {
		if nums[i] > 0xFF {
			return netip.Addr{}, false
		}
		v = v<<8 | uint32(nums[i])
	}
	rest := 8 * (4 - last)
	if nums[last] >= 1<<rest {
		return netip.Addr{}, false
	}
	v = v<<rest | uint32(nums[last])

	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b), true
}

// isBlockedAddr reports whether an IP address falls in a denylisted range.
func isBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case addr.IsLoopback(),
		addr.IsPrivate(),      // 10/8, 172.16/12, 192.168/16, fc00::/7
		addr.IsLinkLocalUnicast(), // 169.254/16, fe80::/10
		addr.IsUnspecified():
		return true
	case addr == metadataAddr:
		return true
	case addr.Is4() && cgnat.Contains(addr):
		return true
	case addr.Is4() && addr.As4()[0] == 0: // 0.x.x.x
		return true
	}
	return false
}
