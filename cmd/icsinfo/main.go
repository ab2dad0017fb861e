// Command icsinfo inspects and converts ICS image files.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-ics/ics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "icsinfo",
		Short:        "Inspect and convert ICS (Image Cytometry Standard) files",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log codec debug output to stderr")

	logger := func(cmd *cobra.Command) *slog.Logger {
		if !verbose {
			return slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	root.AddCommand(
		newInfoCmd(logger),
		newHeaderCmd(logger),
		newConvertCmd(logger),
		newChecksumCmd(logger),
	)
	return root
}

type loggerFunc func(*cobra.Command) *slog.Logger

func newInfoCmd(logger loggerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.ics>",
		Short: "Print the layout and axes of an ICS file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ics.Open(args[0], ics.WithLogger(logger(cmd)))
			if err != nil {
				return err
			}
			defer f.Close()
			return printInfo(cmd.OutOrStdout(), f)
		},
	}
}

func printInfo(w io.Writer, f *ics.File) error {
	md, err := f.Metadata()
	if err != nil {
		return err
	}
	version, _ := f.Version()
	shape, _ := f.Shape()
	format, _ := f.Format()
	method, _ := f.Compression()
	sb, _ := f.SignificantBits()
	n, _ := f.DataLength()

	fmt.Fprintf(w, "File:        %s\n", f.Path())
	fmt.Fprintf(w, "Version:     %s\n", version)
	fmt.Fprintf(w, "Shape:       %v\n", shape)
	fmt.Fprintf(w, "Pixel type:  %s (%d significant bits)\n", format, sb)
	fmt.Fprintf(w, "Byte order:  %s\n", format.Order)
	fmt.Fprintf(w, "Compression: %s\n", method)
	fmt.Fprintf(w, "Data bytes:  %d\n", n)
	fmt.Fprintf(w, "Coordinates: %s\n", md.CoordinateSystem())

	origin, scale, units, err := md.ImelUnits()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Intensity:   origin %g scale %g units %s\n", origin, scale, units)

	fmt.Fprintln(w, "Axes:")
	for i := range shape {
		name, label, err := md.Order(i)
		if err != nil {
			return err
		}
		origin, scale, unit, err := md.Position(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %d %-8s size %-6d origin %g scale %g units %s label %s\n",
			i, name, shape[i], origin, scale, unit, label)
	}

	if h := md.History(); len(h) > 0 {
		fmt.Fprintf(w, "History:     %d entries\n", len(h))
	}
	return nil
}

func newHeaderCmd(logger loggerFunc) *cobra.Command {
	var history bool
	cmd := &cobra.Command{
		Use:   "header <file.ics>",
		Short: "Dump the header keys of an ICS file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ics.Open(args[0], ics.WithLogger(logger(cmd)))
			if err != nil {
				return err
			}
			defer f.Close()

			md, err := f.Metadata()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for k, v := range md.All() {
				fmt.Fprintf(w, "%s\t%s\n", k, v)
			}
			if history {
				for h := range md.HistoryIter("") {
					fmt.Fprintf(w, "history.%s\t%s\n", h.Key, h.Value)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&history, "history", true, "include history lines")
	return cmd
}
