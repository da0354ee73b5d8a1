package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/tabstorm/internal/app"
	"github.com/dshills/tabstorm/internal/doc/codec"
	"github.com/dshills/tabstorm/internal/logging"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	logLevel   string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "tabstorm",
		Short: "Edit and repair documents with tabbed containers",
		Long: `tabstorm creates, checks, scripts and repairs JSON documents holding
tabbed containers. Documents are read and written in the tree format of
the tabstorm codec.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if g.logLevel == "" {
				return nil
			}
			if _, err := logging.ParseLevel(g.logLevel); err != nil {
				return err
			}
			return nil
		},
	}
	root.SetVersionTemplate("tabstorm {{.Version}}\n")
	root.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	flags := root.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "Path to a TOML or YAML configuration file")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newNewCmd(g),
		newCheckCmd(g),
		newRunCmd(g),
		newRepairCmd(g),
	)
	return root
}

// openApp starts an application for cmd, logging to its error stream.
func (g *globalOptions) openApp(ctx context.Context, cmd *cobra.Command, opts app.Options) (*app.Application, error) {
	opts.ConfigPath = g.configPath
	opts.LogLevel = g.logLevel
	opts.LogOutput = cmd.ErrOrStderr()
	return app.New(ctx, opts)
}

// colorize reports whether output to w should carry color escapes.
func (g *globalOptions) colorize(w io.Writer) bool {
	if g.noColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeJSON prints indented JSON to the command output.
func (g *globalOptions) writeJSON(cmd *cobra.Command, data []byte) error {
	out := cmd.OutOrStdout()
	if g.colorize(out) {
		data = codec.Colorize(data)
	}
	_, err := out.Write(data)
	return err
}

// writeDocument saves the document to path, or prints it when path is empty.
func (g *globalOptions) writeDocument(cmd *cobra.Command, a *app.Application, path string) error {
	if path != "" {
		return a.Save(path)
	}
	data, err := a.Encode(true)
	if err != nil {
		return err
	}
	return g.writeJSON(cmd, data)
}

func shutdown(cmd *cobra.Command, a *app.Application) {
	if err := a.Shutdown(context.WithoutCancel(cmd.Context())); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: shutdown: %v\n", err)
	}
}
