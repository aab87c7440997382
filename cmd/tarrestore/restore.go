package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/tarrestore/internal/config"
	"github.com/bamsammich/tarrestore/internal/event"
	"github.com/bamsammich/tarrestore/internal/filter"
	"github.com/bamsammich/tarrestore/internal/platform"
	"github.com/bamsammich/tarrestore/internal/stats"
	"github.com/bamsammich/tarrestore/internal/ui"
	"github.com/bamsammich/tarrestore/internal/untar"
)

// restoreFlags are the options of the unpack subcommands.
type restoreFlags struct {
	owner      uint32
	keepSource bool
	chunkSize  string
	bwLimit    string
	filterFile string
	minSize    string
	maxSize    string
	chain      *filter.Chain
}

func addRestoreFlags(cmd *cobra.Command, o *restoreFlags) {
	o.chain = filter.NewChain()
	f := cmd.Flags()
	f.Uint32Var(&o.owner, "owner", 0, "app uid owning extracted entries (0 keeps archived ids)")
	f.BoolVar(&o.keepSource, "keep-source", false, "keep archives and parts after unpacking")
	f.StringVar(&o.chunkSize, "chunk-size", "", "payload copy chunk (e.g. 512K, 4M)")
	f.StringVar(&o.bwLimit, "bwlimit", "", "write bandwidth limit (e.g. 100M, 1G)")
	f.Var(&filterFlag{chain: o.chain}, "exclude", "skip entries matching PATTERN (repeatable)")
	f.Var(&filterFlag{chain: o.chain, include: true}, "include", "keep entries matching PATTERN (repeatable)")
	f.StringVar(&o.filterFile, "filter", "", "read filter rules from FILE")
	f.StringVar(&o.minSize, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	f.StringVar(&o.maxSize, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")
}

// applyConfig fills options the command line left unset from the [restore]
// config section.
func (o *restoreFlags) applyConfig(cmd *cobra.Command, rc config.RestoreConfig) {
	flags := cmd.Flags()
	if !flags.Changed("owner") && rc.Owner != nil {
		o.owner = *rc.Owner
	}
	if !flags.Changed("keep-source") && rc.KeepSource != nil {
		o.keepSource = *rc.KeepSource
	}
	if !flags.Changed("chunk-size") && rc.ChunkSize != nil {
		o.chunkSize = *rc.ChunkSize
	}
	if !flags.Changed("bwlimit") && rc.BWLimit != nil {
		o.bwLimit = *rc.BWLimit
	}
	if !flags.Changed("filter") && rc.FilterFile != nil {
		o.filterFile = *rc.FilterFile
	}
}

// readerConfig turns the options into an untar.Config. Events, stats and
// the logger are left for the caller.
func (o *restoreFlags) readerConfig() (untar.Config, error) {
	cfg := untar.Config{KeepSource: o.keepSource}

	if o.chunkSize != "" {
		n, err := filter.ParseSize(o.chunkSize)
		if err != nil {
			return cfg, fmt.Errorf("invalid --chunk-size: %w", err)
		}
		// Anything above the maximum is reported by the reader.
		cfg.ChunkSize = int(min(n, untar.MaxChunkSize+1))
	}

	if o.bwLimit != "" {
		n, err := filter.ParseSize(o.bwLimit)
		if err != nil {
			return cfg, fmt.Errorf("invalid --bwlimit: %w", err)
		}
		cfg.Limiter = platform.NewBWLimiter(n)
	}

	if o.filterFile != "" {
		if err := o.chain.LoadFile(o.filterFile); err != nil {
			return cfg, fmt.Errorf("load filter file: %w", err)
		}
	}
	if o.minSize != "" {
		n, err := filter.ParseSize(o.minSize)
		if err != nil {
			return cfg, fmt.Errorf("invalid --min-size: %w", err)
		}
		o.chain.SetMinSize(n)
	}
	if o.maxSize != "" {
		n, err := filter.ParseSize(o.maxSize)
		if err != nil {
			return cfg, fmt.Errorf("invalid --max-size: %w", err)
		}
		o.chain.SetMaxSize(n)
	}
	if !o.chain.Empty() {
		cfg.Filter = o.chain
	}
	return cfg, nil
}

// restoreOp is one unpack operation run against a configured reader.
type restoreOp func(ctx context.Context, r *untar.Reader, owner uint32) error

// runRestore wires config, logging, events and the presenter around op.
func runRestore(cmd *cobra.Command, g *globalFlags, o *restoreFlags, op restoreOp) error {
	s, err := newSession(cmd, g)
	if err != nil {
		return err
	}
	defer s.close()

	o.applyConfig(cmd, s.cfg.Restore)
	rcfg, err := o.readerConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 256)
	rcfg.Events = events
	rcfg.Stats = collector
	rcfg.Logger = slog.Default()
	r := untar.New(rcfg)

	tty := ui.DetectTerminal(os.Stderr)
	presenter := ui.NewPresenter(ui.Config{
		Writer:     cmd.OutOrStdout(),
		ErrWriter:  cmd.ErrOrStderr(),
		Stats:      collector,
		Width:      tty.Width,
		IsTTY:      tty.IsTTY,
		Quiet:      g.quiet,
		NoProgress: g.noProgress,
	})

	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(s.teeEvents(events))
	}()

	slog.Debug("starting restore",
		"owner", o.owner,
		"chunk_size", rcfg.ChunkSize,
		"filtered", rcfg.Filter != nil,
		"keep_source", rcfg.KeepSource,
	)
	opErr := op(ctx, r, o.owner)
	stop()
	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "presenter: %v\n", presenterErr)
	}

	if summary := presenter.Summary(); summary != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), summary)
	}
	return restoreResult(opErr, collector.Snapshot())
}

// restoreResult maps the outcome to an exit code: 1 when some entries made
// it to disk or only single entries failed, 2 when nothing was restored.
func restoreResult(err error, snap stats.Snapshot) error {
	if err != nil {
		slog.Error("restore failed", "error", err)
		if snap.FilesExtracted+snap.DirsCreated+snap.SymlinksCreated > 0 {
			return &exitError{code: 1}
		}
		return &exitError{code: 2}
	}
	if snap.EntriesFailed > 0 {
		slog.Warn("restore finished with failed entries", "failed", snap.EntriesFailed)
		return &exitError{code: 1}
	}
	return nil
}
