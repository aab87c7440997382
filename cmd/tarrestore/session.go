package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/tarrestore/internal/config"
	"github.com/bamsammich/tarrestore/internal/event"
	"github.com/bamsammich/tarrestore/internal/ui"
)

// session is the per-invocation setup shared by all subcommands: the
// loaded config file and the process logger.
type session struct {
	cfg     config.Config
	logFile *os.File
}

func newSession(cmd *cobra.Command, g *globalFlags) (*session, error) {
	s := &session{}

	var loadErr error
	if g.configPath != "" {
		cfg, err := config.LoadFile(g.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		s.cfg = cfg
	} else {
		s.cfg, loadErr = config.Load()
	}
	ui.ApplyTheme(s.cfg.Theme)

	level, err := logLevel(g, s.cfg.Log)
	if err != nil {
		return nil, err
	}
	textHandler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	var handler slog.Handler = textHandler

	logPath := g.logFile
	if !cmd.Flags().Changed("log") && s.cfg.Log.File != nil {
		logPath = *s.cfg.Log.File
	}
	if logPath != "" {
		lf, err := os.Create(logPath)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		s.logFile = lf
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		handler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	slog.SetDefault(slog.New(handler))

	if loadErr != nil {
		slog.Warn("failed to load config", "path", config.Path(), "error", loadErr)
	}
	return s, nil
}

func (s *session) close() {
	if s.logFile != nil {
		s.logFile.Close()
	}
}

// logLevel picks the stderr level: -v and -q win, then the config file,
// then info.
func logLevel(g *globalFlags, lc config.LogConfig) (slog.Level, error) {
	switch {
	case g.verbose:
		return slog.LevelDebug, nil
	case g.quiet:
		return slog.LevelWarn, nil
	case lc.Level != nil:
		var level slog.Level
		if err := level.UnmarshalText([]byte(*lc.Level)); err != nil {
			return 0, fmt.Errorf("config log.level: %w", err)
		}
		return level, nil
	default:
		return slog.LevelInfo, nil
	}
}

// teeEvents writes each event to the structured log before forwarding it.
// Without a log file the channel is returned unchanged.
func (s *session) teeEvents(events <-chan event.Event) <-chan event.Event {
	if s.logFile == nil {
		return events
	}
	teed := make(chan event.Event, cap(events))
	go func() {
		defer close(teed)
		for ev := range events {
			attrs := []slog.Attr{
				slog.String("type", ev.Type.String()),
				slog.String("part", ev.Part),
				slog.String("path", ev.Path),
				slog.Int64("size", ev.Size),
			}
			if ev.Error != nil {
				attrs = append(attrs, slog.String("error", ev.Error.Error()))
			}
			slog.LogAttrs(context.Background(), slog.LevelDebug, "restore.event", attrs...)
			teed <- ev
		}
	}()
	return teed
}
