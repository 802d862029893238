package market

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Color returns the display color of symbol: the palette color of the first
// palette key contained in the symbol, otherwise a color derived from a
// 32-bit string hash of the symbol. The result is deterministic.
func Color(symbol string) string {
	upper := strings.ToUpper(symbol)
	for _, p := range palette {
		if strings.Contains(upper, p.key) {
			return p.color
		}
	}
	return hashColor(symbol)
}

// hashColor folds h = c + (h<<5) - h over the UTF-16 code units of s, the
// shift operating on the 32-bit truncation of h, and renders the low three
// bytes as #rrggbb.
func hashColor(s string) string {
	var h int64
	for _, c := range utf16.Encode([]rune(s)) {
		shifted := toInt32(h) << 5
		h = int64(c) + (int64(shifted) - h)
	}

	v := toInt32(h)
	var b strings.Builder
	b.WriteByte('#')
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "%02x", (v>>(uint(i)*8))&0xff)
	}
	return b.String()
}

func toInt32(v int64) int32 {
	return int32(uint32(v))
}
