package coin

// Fixed text field sizes. Values are stored zero-padded.
const (
	MaxNameLen     = 32
	MaxSymbolLen   = 8
	MaxURILen      = 200
	fiatCurrencyLn = 8
)

// padText copies s into dst, leaving the remainder zeroed.
// Callers validate len(s) <= len(dst) first.
func padText(dst []byte, s string) {
	clear(dst)
	copy(dst, s)
}

// trimText returns the bytes before the first zero.
func trimText(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
