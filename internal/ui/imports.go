package ui

import "github.com/bamsammich/tarrestore/internal/event"

// Event is the progress event consumed by presenters.
type Event = event.Event

// Re-export event types for convenience.
const (
	PartStarted    = event.PartStarted
	PartCompleted  = event.PartCompleted
	PartRemoved    = event.PartRemoved
	EntryListed    = event.EntryListed
	FileExtracted  = event.FileExtracted
	DirCreated     = event.DirCreated
	SymlinkCreated = event.SymlinkCreated
	EntrySkipped   = event.EntrySkipped
	EntryFailed    = event.EntryFailed
)
