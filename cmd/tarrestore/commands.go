package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/tarrestore/internal/untar"
)

func newUnpackCmd(g *globalFlags) *cobra.Command {
	o := &restoreFlags{}
	cmd := &cobra.Command{
		Use:   "unpack ARCHIVE DEST",
		Short: "Unpack a ustar archive into DEST",
		Long: `Unpack extracts every entry of ARCHIVE under DEST. Files and directories
get mode 0700 and, with --owner, the remapped app ownership. The archive is
deleted after a successful unpack unless --keep-source is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, g, o, func(ctx context.Context, r *untar.Reader, owner uint32) error {
				return r.Unpack(ctx, args[0], args[1], owner)
			})
		},
	}
	addRestoreFlags(cmd, o)
	return cmd
}

func newUnpackSplitCmd(g *globalFlags) *cobra.Command {
	o := &restoreFlags{}
	cmd := &cobra.Command{
		Use:   "unpack-split MANIFEST DEST",
		Short: "Unpack a split archive described by a manifest",
		Long: `Unpack-split reads MANIFEST, one "part|size" line per part file next to
it, checks every part against its recorded size, then unpacks the parts in
order into DEST. Each part is deleted once it has been unpacked.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, g, o, func(ctx context.Context, r *untar.Reader, owner uint32) error {
				return r.UnpackSplit(ctx, args[0], args[1], owner)
			})
		},
	}
	addRestoreFlags(cmd, o)
	return cmd
}

func newUnpackPartCmd(g *globalFlags) *cobra.Command {
	o := &restoreFlags{}
	cmd := &cobra.Command{
		Use:   "unpack-part PART DEST",
		Short: "Unpack a single split part, keeping the part file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, g, o, func(ctx context.Context, r *untar.Reader, owner uint32) error {
				return r.UnpackPart(ctx, args[0], args[1], owner)
			})
		},
	}
	addRestoreFlags(cmd, o)
	return cmd
}

func newListCmd(g *globalFlags) *cobra.Command {
	var digest bool
	cmd := &cobra.Command{
		Use:   "list ARCHIVE",
		Short: "List the payload entries of an archive",
		Long: `List prints one line per regular file or split payload in ARCHIVE:
the payload offset, its size, the entry type and the name, tab separated.
With --digest a BLAKE3 digest of each payload is added before the name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r := untar.New(untar.Config{Logger: slog.Default()})
			entries, err := r.List(ctx, args[0])
			if err != nil {
				return err
			}
			return printEntries(ctx, cmd.OutOrStdout(), r, args[0], entries, digest)
		},
	}
	cmd.Flags().BoolVar(&digest, "digest", false, "print the BLAKE3 digest of each payload")
	return cmd
}

func printEntries(
	ctx context.Context,
	w io.Writer,
	r *untar.Reader,
	path string,
	entries []untar.Entry,
	digest bool,
) error {
	for _, e := range entries {
		if !digest {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", e.DataOffset, e.Size, e.Type, e.Name)
			continue
		}
		sum, err := r.Digest(ctx, path, e)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", e.DataOffset, e.Size, e.Type, sum, e.Name)
	}
	return nil
}

func newCheckSplitCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check-split ARCHIVE [ROOT]",
		Short: "Report whether an archive is a split part",
		Long: `Check-split reads the first entry of ARCHIVE and prints "split" when it
is a split payload, "not split" otherwise. The exit code is 0 for a split
part and 1 for anything else, including unreadable archives. ROOT is the
intended restore directory and is only logged.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.close()

			var root string
			if len(args) == 2 {
				root = args[1]
			}
			r := untar.New(untar.Config{Logger: slog.Default()})
			if r.IsSplit(cmd.Context(), args[0], root) {
				fmt.Fprintln(cmd.OutOrStdout(), "split")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "not split")
			return &exitError{code: 1}
		},
	}
}
