// Command dtb is the desktop table browser. Files named on the command
// line are opened at start; a Delta Sharing profile fills the share tree.
//
//	dtb --config table.yaml people.csv sales.parquet
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"dtb/datatable"
	"dtb/internal/options"
	"dtb/windows"
)

type appOptions struct {
	config  string
	timeout time.Duration
	compact bool
	debug   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &appOptions{}
	cmd := &cobra.Command{
		Use:           "dtb [files...]",
		Short:         "Browse CSV, JSON, Parquet and Delta Sharing tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return o.run(args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.config, "config", "", "table options file applied to every opened table")
	f.DurationVar(&o.timeout, "timeout", windows.DefaultTimeout, "bound on catalog listing and table loads")
	f.BoolVar(&o.compact, "compact", false, "use less padding so more rows fit")
	f.BoolVar(&o.debug, "debug", false, "log table draws and loads")
	return cmd
}

func (o *appOptions) loadConfig() (datatable.Config, error) {
	if o.config == "" {
		return datatable.DefaultConfig(), nil
	}
	tree, err := options.LoadFile(o.config)
	if err != nil {
		return datatable.Config{}, err
	}
	return datatable.NormalizeConfig(tree, false)
}

func (o *appOptions) run(files []string) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	level := slog.LevelWarn
	if o.debug {
		level = slog.LevelDebug
	}
	log := datatable.NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a := app.NewWithID("io.github.dtb")
	m := windows.NewMainWindow(a, cfg, log)
	m.SetTimeout(o.timeout)
	if o.compact {
		a.Settings().SetTheme(&windows.BrowserTheme{Compact: true})
	}
	m.OpenFiles(files...)
	m.ShowAndRun()
	return nil
}
