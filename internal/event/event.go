// Package event defines the progress events emitted while an archive is
// restored.
package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	PartStarted Type = iota + 1
	PartCompleted
	PartRemoved
	EntryListed
	FileExtracted
	DirCreated
	SymlinkCreated
	EntrySkipped
	EntryFailed
)

var typeNames = [...]string{
	PartStarted:    "PartStarted",
	PartCompleted:  "PartCompleted",
	PartRemoved:    "PartRemoved",
	EntryListed:    "EntryListed",
	FileExtracted:  "FileExtracted",
	DirCreated:     "DirCreated",
	SymlinkCreated: "SymlinkCreated",
	EntrySkipped:   "EntrySkipped",
	EntryFailed:    "EntryFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the extractor.
type Event struct {
	Type      Type
	Timestamp time.Time
	Part      string // archive or split part being read
	Path      string // entry name as stored in the archive
	Size      int64  // payload bytes (entries) or archive size (parts)
	Error     error
}
