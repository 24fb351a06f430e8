package capdb

const esc = 0x1b

// stripPadding removes terminfo delay markers of the form $<...>.
func stripPadding(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == '$' && i+1 < len(b) && b[i+1] == '<' {
			j := i + 2
			for j < len(b) && b[j] != '>' {
				j++
			}
			if j < len(b) {
				i = j
				continue
			}
		}
		out = append(out, b[i])
	}
	return out
}

// split breaks a capability string into its individual control sequences.
// Bytes outside escape sequences each form their own part.
func split(value []byte) [][]byte {
	b := stripPadding(value)
	var parts [][]byte
	for i := 0; i < len(b); {
		n := seqLen(b[i:])
		parts = append(parts, b[i:i+n])
		i += n
	}
	return parts
}

// seqLen returns the length of the control sequence at the start of b.
func seqLen(b []byte) int {
	if b[0] != esc || len(b) == 1 {
		return 1
	}
	if b[1] == '[' {
		i := 2
		for i < len(b) {
			c := b[i]
			switch {
			case c == '%':
				i += paramOpLen(b[i:])
				continue
			case c >= 0x40 && c <= 0x7e:
				return i + 1
			}
			i++
		}
		return len(b)
	}
	i := 1
	for i < len(b) && b[i] >= 0x20 && b[i] <= 0x2f {
		i++
	}
	if i < len(b) {
		return i + 1
	}
	return len(b)
}

// paramOpLen returns the length of the terminfo parameter operation that
// starts with '%' at b[0].
func paramOpLen(b []byte) int {
	if len(b) < 2 {
		return len(b)
	}
	switch b[1] {
	case 'p', 'P', 'g':
		return min(3, len(b))
	case '\'':
		return min(4, len(b))
	case '{':
		for j := 2; j < len(b); j++ {
			if b[j] == '}' {
				return j + 1
			}
		}
		return len(b)
	default:
		return 2
	}
}

// shapeOf returns the prefix, intermediate and final byte of a
// parameterized CSI capability string.
func shapeOf(seq []byte) (shapeKey, bool) {
	if len(seq) < 3 || seq[0] != esc || seq[1] != '[' {
		return shapeKey{}, false
	}
	var key shapeKey
	i := 2
	if c := seq[i]; c >= '<' && c <= '?' {
		key.prefix = c
		i++
	}
	for i < len(seq) {
		c := seq[i]
		switch {
		case c == '%':
			i += paramOpLen(seq[i:])
			continue
		case c >= 0x20 && c <= 0x2f:
			key.intermediate = c
		case c >= 0x40 && c <= 0x7e:
			key.final = c
			return key, true
		}
		i++
	}
	return shapeKey{}, false
}
