package text

// Lead bytes of the two-byte symbol escapes and what each pair draws.
const (
	leadPunct byte = 0xFA
	leadIcon  byte = 0xFD
)

var escapes = map[byte]map[byte]string{
	leadPunct: {
		0x55: "big :",
	},
	leadIcon: {
		0x65: "big 0",
		0x66: "big 1",
		0x67: "big 2",
		0x68: "big 3",
		0x69: "big 4",
		0x6A: "big 5",
		0x6B: "big 6",
		0x6C: "big 7",
		0x6D: "big 8",
		0x6E: "big 9",
		0x6F: "minidisc",
		0x70: "volume icon",
		0x86: "music note",
		0x93: "folder",
	},
}

var symbolNames = func() map[string]struct{} {
	out := make(map[string]struct{})
	for _, pairs := range escapes {
		for _, name := range pairs {
			out[name] = struct{}{}
		}
	}
	return out
}()

// IsEscapeLead reports whether b opens a two-byte symbol escape.
func IsEscapeLead(b byte) bool {
	_, ok := escapes[b]
	return ok
}

// LookupEscape resolves an escape pair to its symbol name.
func LookupEscape(lead, code byte) (string, bool) {
	pairs, ok := escapes[lead]
	if !ok {
		return "", false
	}
	name, ok := pairs[code]
	return name, ok
}

// IsSymbolName reports whether name is one of the known symbol tokens.
func IsSymbolName(name string) bool {
	_, ok := symbolNames[name]
	return ok
}
