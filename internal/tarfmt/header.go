package tarfmt

import "bytes"

// Header is a read-only view over one 512-byte header block. It is only
// valid until the underlying buffer is reused for the next block.
type Header struct {
	b []byte
}

// NewHeader wraps block, which must be exactly BlockSize bytes long.
func NewHeader(block []byte) Header {
	if len(block) != BlockSize {
		panic("tarfmt: header block must be 512 bytes")
	}
	return Header{b: block}
}

// Name returns the NUL-padded name field.
func (h Header) Name() string { return cString(h.b[nameOff : nameOff+nameLen]) }

// Linkname returns the NUL-padded link target field.
func (h Header) Linkname() string { return cString(h.b[linknameOff : linknameOff+linknameLen]) }

func (h Header) Mode() int64 { return ParseOctal(h.b[modeOff : modeOff+modeLen]) }
func (h Header) UID() int64  { return ParseOctal(h.b[uidOff : uidOff+uidLen]) }
func (h Header) GID() int64  { return ParseOctal(h.b[gidOff : gidOff+gidLen]) }
func (h Header) Size() int64 { return ParseOctal(h.b[sizeOff : sizeOff+sizeLen]) }

// Typeflag returns the raw type flag byte.
func (h Header) Typeflag() byte { return h.b[typeflagOff] }

// Type classifies the header's type flag.
func (h Header) Type() EntryType { return Classify(h.Typeflag()) }

// StoredChecksum returns the checksum recorded in the header.
func (h Header) StoredChecksum() int64 {
	return ParseOctal(h.b[chksumOff : chksumOff+chksumLen])
}

// HasMagic reports whether the magic field starts with "ustar".
func (h Header) HasMagic() bool {
	return string(h.b[magicOff:magicOff+len(Magic)]) == Magic
}

// VerifyChecksum reports whether the stored checksum matches the block.
func (h Header) VerifyChecksum() bool {
	return Checksum(h.b) == h.StoredChecksum()
}

// Valid reports whether the block is a well-formed header: ustar magic and
// a matching checksum.
func (h Header) Valid() bool {
	return h.HasMagic() && h.VerifyChecksum()
}

// Checksum computes the unsigned byte sum of a header block with the
// checksum field counted as ASCII spaces.
func Checksum(block []byte) int64 {
	var sum int64
	for i, c := range block {
		if i >= chksumOff && i < chksumOff+chksumLen {
			sum += ' '
			continue
		}
		sum += int64(c)
	}
	return sum
}

// IsZeroBlock reports whether every byte of block is zero.
func IsZeroBlock(block []byte) bool {
	for _, c := range block {
		if c != 0 {
			return false
		}
	}
	return true
}

// cString returns b up to its first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// TrimNUL returns the prefix of b before the first NUL. Long-name payloads
// written by GNU tar carry a trailing NUL.
func TrimNUL(b []byte) string {
	return cString(b)
}
