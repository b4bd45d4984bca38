package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/pigeonchat/pigeon/internal/bus"
	"github.com/pigeonchat/pigeon/internal/chat"
	"github.com/pigeonchat/pigeon/internal/config"
	"github.com/pigeonchat/pigeon/internal/history"
	"github.com/pigeonchat/pigeon/internal/logging"
	"github.com/pigeonchat/pigeon/internal/rest"
	"github.com/pigeonchat/pigeon/internal/session"
	"github.com/pigeonchat/pigeon/internal/state"
	intsync "github.com/pigeonchat/pigeon/internal/sync"
	"github.com/pigeonchat/pigeon/internal/tui"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	serverFlag := flag.String("server", "", "backend URL (overrides config)")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := session.EnsureDir(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// A missing config file means defaults; first run has none.
	cfg, err := config.Load(session.ConfigPath())
	if err != nil {
		cfg = &config.Config{}
	}
	serverURL := cfg.Server()
	if *serverFlag != "" {
		serverURL = *serverFlag
	}

	// The TUI owns the terminal; logs go to the session log file only.
	logger, err := logging.NewFileOnly(session.LogPath(sessionName), sessionName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	b := bus.New()
	store := state.New(b)
	client := rest.NewClient(serverURL, cfg.Timeout(), logger)
	machine := session.NewMachine(b)
	mgr := session.NewManager(sessionName, client, machine, b, logger)

	// The local cache is best effort; a broken cache file should not keep
	// the client from starting.
	var archive intsync.Archive
	db, err := history.Open(session.CacheDBPath(sessionName))
	if err != nil {
		logger.Warn("history cache unavailable", zap.Error(err))
	} else {
		if _, err := db.Migrate(); err != nil {
			logger.Warn("history migration failed", zap.Error(err))
			_ = db.Close()
		} else {
			archive = db
			defer func() { _ = db.Close() }()
		}
	}

	ctrl := intsync.NewController(client, mgr, store, archive, b, logger)

	if mgr.Restore(context.Background()) {
		logger.Info("session restored")
		// Show the last cached chat list right away; the first refresh
		// replaces it with fresh data.
		if db, ok := archive.(*history.DB); ok {
			if cached, err := db.ListChats(50); err == nil && len(cached) > 0 {
				list := make([]chat.Chat, 0, len(cached))
				for _, c := range cached {
					list = append(list, c.Entity())
				}
				store.SetChats(list)
			}
		}
	}

	app := tui.NewApp(store, ctrl, mgr, b, sessionName)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
