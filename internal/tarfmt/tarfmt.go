// Package tarfmt describes the on-disk ustar header layout used by backup
// archives, including the GNU long-name/long-link pseudo entries and the
// private split-archive type flags.
package tarfmt

// Block geometry and limits.
const (
	BlockSize = 512

	// PathMaxLen bounds long names, long links and composed destination paths.
	PathMaxLen = 2048

	// ReadBuffSize is the default payload copy chunk. It is also the slack
	// allowed past EOF when tolerating a split part's tail.
	ReadBuffSize = 512 * 1024
)

// Field offsets and widths inside a header block.
const (
	nameOff     = 0
	nameLen     = 100
	modeOff     = 100
	modeLen     = 8
	uidOff      = 108
	uidLen      = 8
	gidOff      = 116
	gidLen      = 8
	sizeOff     = 124
	sizeLen     = 12
	chksumOff   = 148
	chksumLen   = 8
	typeflagOff = 156
	linknameOff = 157
	linknameLen = 100
	magicOff    = 257
	magicLen    = 6
)

// Magic is the ustar magic. Only the first five bytes are compared, so GNU
// ("ustar  \x00") headers are accepted as well.
const Magic = "ustar"

// Type flags.
const (
	TypeReg           byte = '0'
	TypeRegA          byte = '\x00'
	TypeSymlink       byte = '2'
	TypeDir           byte = '5'
	TypeSplitStart    byte = '8'
	TypeSplitContinue byte = '9'
	TypeSplitEnd      byte = 'A'
	TypeGNULongName   byte = 'L'
	TypeGNULongLink   byte = 'K'
)

// EntryType is the classified meaning of a header's type flag.
type EntryType int

const (
	Other EntryType = iota
	RegularFile
	Directory
	Symlink
	SplitStart
	SplitContinuation
	SplitEnd
	GNULongName
	GNULongLink
	EndOfArchive
)

var entryTypeNames = [...]string{
	Other:             "other",
	RegularFile:       "file",
	Directory:         "dir",
	Symlink:           "symlink",
	SplitStart:        "split-start",
	SplitContinuation: "split-continue",
	SplitEnd:          "split-end",
	GNULongName:       "gnu-longname",
	GNULongLink:       "gnu-longlink",
	EndOfArchive:      "eof",
}

func (t EntryType) String() string {
	if t >= 0 && int(t) < len(entryTypeNames) {
		return entryTypeNames[t]
	}
	return "unknown"
}

// IsSplit reports whether t is one of the split-archive payload types.
func (t EntryType) IsSplit() bool {
	return t == SplitStart || t == SplitContinuation || t == SplitEnd
}

// HasPayload reports whether entries of type t carry file data that is
// written to disk (regular files and split payloads).
func (t EntryType) HasPayload() bool {
	return t == RegularFile || t.IsSplit()
}

// Appends reports whether payload of type t is appended to an existing
// destination file instead of truncating it.
func (t EntryType) Appends() bool {
	return t == SplitContinuation || t == SplitEnd
}

// Classify maps a raw type flag to an EntryType.
func Classify(flag byte) EntryType {
	switch flag {
	case TypeReg, TypeRegA:
		return RegularFile
	case TypeDir:
		return Directory
	case TypeSymlink:
		return Symlink
	case TypeSplitStart:
		return SplitStart
	case TypeSplitContinue:
		return SplitContinuation
	case TypeSplitEnd:
		return SplitEnd
	case TypeGNULongName:
		return GNULongName
	case TypeGNULongLink:
		return GNULongLink
	default:
		return Other
	}
}

// BlockCount returns the number of 512-byte blocks needed to hold size bytes.
func BlockCount(size int64) int64 {
	if size <= 0 {
		return 0
	}
	return (size + BlockSize - 1) / BlockSize
}
