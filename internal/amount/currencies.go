package amount

import "strings"

// hexCurrencySymbols maps known 160-bit (40 hex digit) currency codes to
// their display symbols. Standard 3-letter codes never hit this table.
var hexCurrencySymbols = map[string]string{
	"585A494C4C410000000000000000000000000000": "XZILLA",
	"534F4C4F00000000000000000000000000000000": "SOLO",
	"434F524500000000000000000000000000000000": "CORE",
	"5553444300000000000000000000000000000000": "USDC",
}

// ResolveSymbol maps a 40-hex-digit currency code to its known symbol.
// Unknown codes (including all standard 3-letter codes) pass through
// unchanged, which makes the function idempotent.
func ResolveSymbol(code string) string {
	if len(code) != 40 || !isHex(code) {
		return code
	}
	if symbol, ok := hexCurrencySymbols[strings.ToUpper(code)]; ok {
		return symbol
	}
	return code
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
