package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"dtb/adapters/deltasharing"
	"dtb/adapters/filesrc"
	"dtb/datatable"
	"dtb/internal/options"
	"dtb/server"
)

type serveOptions struct {
	config    string
	data      string
	table     string
	addr      string
	path      string
	maxLength int
	refresh   time.Duration
	jsonLogs  bool
	debug     bool
}

func newRootCmd() *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:           "dtserve",
		Short:         "Serve a table over the server-side processing protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.config, "config", "", "table options file (YAML or JSON, either naming convention)")
	f.StringVar(&o.data, "data", "", "data file or Delta Sharing profile")
	f.StringVar(&o.table, "table", "", "shared table as share.schema.table, with a profile")
	f.StringVar(&o.addr, "addr", ":8080", "listen address")
	f.StringVar(&o.path, "path", "/data", "endpoint path")
	f.IntVar(&o.maxLength, "max-length", 1000, "largest page a client may request, 0 for no limit")
	f.DurationVar(&o.refresh, "refresh", 0, "reload the data at this interval, 0 to disable")
	f.BoolVar(&o.jsonLogs, "json-logs", false, "log as JSON")
	f.BoolVar(&o.debug, "debug", false, "log every request")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func (o *serveOptions) logger() *datatable.Logger {
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	if o.jsonLogs {
		return datatable.NewJSONLogger(level)
	}
	return datatable.NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the option file, if any, and merges it over the defaults.
func (o *serveOptions) loadConfig() (datatable.Config, error) {
	if o.config == "" {
		return datatable.DefaultConfig(), nil
	}
	tree, err := options.LoadFile(o.config)
	if err != nil {
		return datatable.Config{}, err
	}
	return datatable.NormalizeConfig(tree, false)
}

// source returns a function producing the current data. Files are read
// again on every call; shared tables fetch their current files.
func (o *serveOptions) source(log *datatable.Logger) (func(ctx context.Context) (datatable.DataSource, error), error) {
	if o.table == "" {
		return func(ctx context.Context) (datatable.DataSource, error) {
			ds, info, err := filesrc.Open(ctx, o.data)
			if errors.Is(err, filesrc.ErrProfile) {
				return nil, fmt.Errorf("%s is a Delta Sharing profile: pass --table", o.data)
			}
			if err != nil {
				return nil, err
			}
			log.Info(info.Summary())
			return ds, nil
		}, nil
	}

	table, err := parseTableName(o.table)
	if err != nil {
		return nil, err
	}
	profile, err := os.ReadFile(o.data)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	client, err := deltasharing.NewClient(string(profile))
	if err != nil {
		return nil, err
	}
	src := deltasharing.NewSource(client, table, nil, deltasharing.WithLogger(log))
	return func(context.Context) (datatable.DataSource, error) { return src, nil }, nil
}

// parseTableName splits "share.schema.table".
func parseTableName(s string) (deltasharing.Table, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return deltasharing.Table{}, fmt.Errorf("invalid table %q: want share.schema.table", s)
	}
	return deltasharing.Table{Share: parts[0], Schema: parts[1], Name: parts[2]}, nil
}

// newMux builds the table handler and the metrics endpoint.
func (o *serveOptions) newMux(ctx context.Context, log *datatable.Logger, load func(context.Context) (datatable.DataSource, error)) (*http.ServeMux, *server.Handler, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	ds, err := load(ctx)
	if err != nil {
		return nil, nil, err
	}
	tbl, err := datatable.Open(ctx, cfg, ds, datatable.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := server.NewMetrics(reg)
	if err != nil {
		return nil, nil, err
	}
	metrics.SetRows(tbl.Store().Len())

	h := server.New(tbl, server.WithLogger(log), server.WithMaxLength(o.maxLength), server.WithMetrics(metrics))
	mux := http.NewServeMux()
	mux.Handle(o.path, h)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux, h, nil
}

func (o *serveOptions) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := o.logger()
	load, err := o.source(log)
	if err != nil {
		return err
	}
	mux, h, err := o.newMux(ctx, log, load)
	if err != nil {
		return err
	}

	if o.refresh > 0 {
		go refreshLoop(ctx, o.refresh, h, load, log)
	}

	srv := &http.Server{Addr: o.addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", o.addr, "path", o.path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func refreshLoop(ctx context.Context, every time.Duration, h *server.Handler, load func(context.Context) (datatable.DataSource, error), log *datatable.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ds, err := load(ctx)
			if err == nil {
				err = h.Reload(ctx, ds)
			}
			if err != nil {
				log.Warn("refresh failed", "error", err)
			}
		}
	}
}
