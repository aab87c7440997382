package tarfmt

// ParseOctal decodes an octal ASCII numeric field. Leading non-octal bytes
// (spaces, typically) are skipped, then octal digits are consumed until a
// non-octal byte or the end of the field. A NUL terminates the field in
// either phase, so an all-NUL field decodes to zero.
func ParseOctal(field []byte) int64 {
	i := 0
	for i < len(field) && !isOctal(field[i]) {
		if field[i] == 0 {
			return 0
		}
		i++
	}

	var n int64
	for ; i < len(field) && isOctal(field[i]); i++ {
		n = n<<3 | int64(field[i]-'0')
	}
	return n
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}
