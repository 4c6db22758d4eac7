// Command dashclone edits an embedded dashboard through a Chrome tab.
//
// Usage:
//
//	dashclone -url https://bi.example.com/d/42 -clone 3 -spacing 40 -find OLD -replace NEW
//	dashclone -remote 9222 -url https://bi.example.com/d/42 -resize 480x260 -line-area
//	dashclone -config dashclone.yaml -move 20,0
//	dashclone -config dashclone.yaml -select
//	dashclone -config dashclone.yaml -mcp      # serve MCP tools on stdio
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/dashclone/dashboard"
	"github.com/hazyhaar/dashclone/internal/browser"
	"github.com/hazyhaar/dashclone/internal/config"
	"github.com/hazyhaar/dashclone/kit"
	"github.com/hazyhaar/dashclone/runlog"
)

const version = "0.1.0"

type options struct {
	configPath string
	url        string
	remote     string
	journal    string
	headful    bool

	openEdit bool
	clone    int
	spacing  int
	find     string
	replace  string
	resize   string
	move     string
	selectC  bool
	lineArea bool
	mcp      bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to dashclone.yaml config file")
	flag.StringVar(&o.url, "url", "", "dashboard page URL (overrides dashboard.url)")
	flag.StringVar(&o.remote, "remote", "", "attach to a running Chrome: DevTools port or URL (overrides browser.remote)")
	flag.StringVar(&o.journal, "journal", "", "run journal SQLite path (overrides journal.db_path)")
	flag.BoolVar(&o.headful, "headful", false, "show the launched browser window")
	flag.BoolVar(&o.openEdit, "open-edit", false, "only switch the dashboard to edit mode")
	flag.IntVar(&o.clone, "clone", 0, "clone the last N components")
	flag.IntVar(&o.spacing, "spacing", 0, "pixels added to each clone's top")
	flag.StringVar(&o.find, "find", "", "title text to replace (matched after upper-casing)")
	flag.StringVar(&o.replace, "replace", "", "replacement title text")
	flag.StringVar(&o.resize, "resize", "", "set component size, WIDTHxHEIGHT in pixels")
	flag.StringVar(&o.move, "move", "", "shift components, TOP,LEFT increments in pixels (both > 0)")
	flag.BoolVar(&o.selectC, "select", false, "list components")
	flag.BoolVar(&o.lineArea, "line-area", false, "restrict -select/-resize/-move to line and area charts")
	flag.BoolVar(&o.mcp, "mcp", false, "serve MCP tools on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, o); err != nil {
		logger.Error("dashclone: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, o options) error {
	op, req, err := o.operation()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if o.configPath != "" {
		if cfg, err = config.LoadFile(o.configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if o.url != "" {
		cfg.Dashboard.URL = o.url
	}
	if o.remote != "" {
		cfg.Browser.Remote = o.remote
	}
	if o.journal != "" {
		cfg.Journal.DBPath = o.journal
	}
	if o.headful {
		cfg.Browser.Headful = true
	}
	if cfg.Dashboard.URL == "" {
		return errors.New("no dashboard URL: set -url or dashboard.url")
	}

	var journal *runlog.Journal
	if cfg.Journal.DBPath != "" {
		journal, err = runlog.Open(cfg.Journal.DBPath, runlog.WithLogger(logger))
		if err != nil {
			return err
		}
		defer journal.Close()
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		Headful:          cfg.Browser.Headful,
		Bin:              cfg.Browser.Bin,
		UserDataDir:      cfg.Browser.UserDataDir,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		NavigateTimeout:  cfg.Browser.NavigateTimeout,
		PollInterval:     cfg.Wait.PollInterval,
		Logger:           logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		return err
	}
	defer mgr.Close()

	tab, err := browser.OpenTab(ctx, mgr, cfg.Dashboard.URL)
	if err != nil {
		return err
	}
	doc := tab.Document()

	ed := dashboard.New(doc,
		dashboard.WithMarkers(cfg.Markers),
		dashboard.WithWaitTimeout(cfg.Wait.Timeout),
		dashboard.WithSettle(cfg.Settle.DashboardSettle(doc.EventsOnly())),
		dashboard.WithLogger(logger),
	)

	if o.mcp {
		srv := mcp.NewServer(&mcp.Implementation{Name: "dashclone", Version: version}, nil)
		ed.RegisterMCP(srv, journal)
		logger.Info("dashclone: serving MCP on stdio", "url", cfg.Dashboard.URL)
		// The operator's tab stays open after the session ends.
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			return fmt.Errorf("mcp: %w", err)
		}
		return nil
	}
	defer tab.Close()

	ep := kit.Chain(kit.Logging(logger), kit.Journaled(journal))(ed.Endpoints()[op])
	res, runErr := ep(kit.WithTransport(kit.WithOperation(ctx, op), "cli"), req)

	// Partial results are printed too: components created before a failure
	// stay on the dashboard.
	if out, err := json.MarshalIndent(res, "", "  "); err == nil && string(out) != "null" {
		fmt.Println(string(out))
	}
	return runErr
}

// operation maps the action flags to one operation and its request.
func (o options) operation() (string, any, error) {
	var ops []string
	var op string
	var req any

	if o.mcp {
		ops = append(ops, "-mcp")
	}
	if o.openEdit {
		ops = append(ops, "-open-edit")
		op = dashboard.OpOpenEdit
	}
	if o.clone != 0 {
		ops = append(ops, "-clone")
		op = dashboard.OpClone
		req = &dashboard.CloneRequest{Count: o.clone, Spacing: o.spacing, Find: o.find, Replace: o.replace}
	}
	if o.resize != "" {
		ops = append(ops, "-resize")
		w, h, err := parsePair(o.resize, "x")
		if err != nil {
			return "", nil, fmt.Errorf("-resize: %w", err)
		}
		op = dashboard.OpResize
		req = &dashboard.ResizeRequest{Width: w, Height: h, LineAreaOnly: o.lineArea}
	}
	if o.move != "" {
		ops = append(ops, "-move")
		top, left, err := parsePair(o.move, ",")
		if err != nil {
			return "", nil, fmt.Errorf("-move: %w", err)
		}
		op = dashboard.OpMove
		req = &dashboard.MoveRequest{Top: top, Left: left, LineAreaOnly: o.lineArea}
	}
	if o.selectC {
		ops = append(ops, "-select")
		op = dashboard.OpSelect
		req = &dashboard.BulkRequest{LineAreaOnly: o.lineArea}
	}

	switch len(ops) {
	case 0:
		return "", nil, errors.New("usage: dashclone [-config file] -url <url> (-open-edit | -clone N | -resize WxH | -move TOP,LEFT | -select | -mcp)")
	case 1:
		return op, req, nil
	default:
		return "", nil, fmt.Errorf("choose one action, got %s", strings.Join(ops, " "))
	}
}

func parsePair(s, sep string) (int, int, error) {
	a, b, ok := strings.Cut(s, sep)
	if !ok {
		return 0, 0, fmt.Errorf("%q: want two integers separated by %q", s, sep)
	}
	x, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("%q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("%q: %w", s, err)
	}
	return x, y, nil
}
