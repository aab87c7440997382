package ui

import "github.com/bamsammich/tarrestore/internal/stats"

// quietPresenter drains events and prints nothing but failures in the
// summary.
type quietPresenter struct {
	stats *stats.Collector
}

func (p *quietPresenter) Run(events <-chan Event) error {
	for range events {
	}
	return nil
}

// Summary is empty unless some entry failed.
func (p *quietPresenter) Summary() string {
	snap := p.stats.Snapshot()
	if snap.EntriesFailed == 0 {
		return ""
	}
	return CompletionSummary(snap)
}
