package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/tabstorm/internal/app"
	"github.com/dshills/tabstorm/internal/plugin/lua"
	"github.com/dshills/tabstorm/internal/tabs"
)

func newNewCmd(g *globalOptions) *cobra.Command {
	var (
		count  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a document holding one tab container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp(cmd.Context(), cmd, app.Options{})
			if err != nil {
				return err
			}
			defer shutdown(cmd, a)

			var p tabs.CreateParams
			if cmd.Flags().Changed("tabs") {
				p.TabCount = &count
			}
			if _, err := a.Feature().Commands().Create(cmd.Context(), p); err != nil {
				return err
			}
			return g.writeDocument(cmd, a, output)
		},
	}
	cmd.Flags().IntVarP(&count, "tabs", "n", tabs.DefaultTabCount, "Number of tabs")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the document to a file instead of stdout")
	return cmd
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Report container violations before and after reconciliation",
		Long: `check loads a document, reports the violations it had on disk and the
violations left after reconciliation. The file is not modified.

The command fails when violations survive reconciliation, and with
--strict also when the file on disk had any.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp(cmd.Context(), cmd, app.Options{})
			if err != nil {
				return err
			}
			defer shutdown(cmd, a)

			if err := a.OpenFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			ins := a.Inspect()
			report, err := inspectionJSON(args[0], ins)
			if err != nil {
				return err
			}
			if err := g.writeJSON(cmd, report); err != nil {
				return err
			}
			if len(ins.After) > 0 || (strict && !ins.Healthy()) {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the file had any violation")
	return cmd
}

func newRunCmd(g *globalOptions) *cobra.Command {
	var (
		output string
		watch  bool
		allow  []string
	)
	cmd := &cobra.Command{
		Use:   "run <file> <script.lua>",
		Short: "Run a Lua script against a document",
		Long: `run loads a document, executes a Lua script with the tabs module and
writes the result. Script output from print goes to stderr.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caps := make([]lua.Capability, 0, len(allow))
			for _, name := range allow {
				c, err := lua.ParseCapability(name)
				if err != nil {
					return err
				}
				caps = append(caps, c)
			}
			a, err := g.openApp(cmd.Context(), cmd, app.Options{WatchConfig: watch, ScriptCapabilities: caps})
			if err != nil {
				return err
			}
			defer shutdown(cmd, a)

			if err := a.OpenFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := a.RunScript(cmd.Context(), args[1], cmd.ErrOrStderr()); err != nil {
				return err
			}
			return g.writeDocument(cmd, a, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the document to a file instead of stdout")
	cmd.Flags().BoolVar(&watch, "watch-config", false, "Reload tab defaults when the config file changes")
	cmd.Flags().StringSliceVar(&allow, "allow", []string{string(lua.CapabilityTabs)}, "Capabilities granted to the script (tabs, tabs.read, tabs.write, tabs.history, tabs.events)")
	return cmd
}

func newRepairCmd(g *globalOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "repair <file>",
		Short: "Reconcile a document and write the repaired tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp(cmd.Context(), cmd, app.Options{})
			if err != nil {
				return err
			}
			defer shutdown(cmd, a)

			if err := a.OpenFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			if _, err := a.Repair(cmd.Context()); err != nil {
				return err
			}
			ins := a.Inspect()
			fmt.Fprintf(cmd.ErrOrStderr(), "repaired %d violation(s), %d remaining\n",
				len(ins.Before)-len(ins.After), len(ins.After))
			return g.writeDocument(cmd, a, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the document to a file instead of stdout")
	return cmd
}

// inspectionJSON renders a check report.
func inspectionJSON(path string, ins app.Inspection) ([]byte, error) {
	raw := []byte(`{"before":[],"after":[]}`)
	var err error
	if raw, err = sjson.SetBytes(raw, "file", path); err != nil {
		return nil, err
	}
	if raw, err = sjson.SetBytes(raw, "healthy", ins.Healthy()); err != nil {
		return nil, err
	}
	for key, list := range map[string][]tabs.Violation{"before": ins.Before, "after": ins.After} {
		for _, v := range list {
			if raw, err = sjson.SetBytes(raw, key+".-1", violationJSON(v)); err != nil {
				return nil, err
			}
		}
	}
	return pretty.Pretty(raw), nil
}

func violationJSON(v tabs.Violation) map[string]any {
	path := v.Path
	if path == nil {
		path = []int{}
	}
	return map[string]any{
		"container_id": v.ContainerID,
		"path":         path,
		"rule":         string(v.Rule),
		"detail":       v.Detail,
	}
}
