package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bible-reader/internal/ask"
	"bible-reader/internal/bible"
	"bible-reader/internal/crossref"
	"bible-reader/internal/reader"
	"bible-reader/internal/state"
	"bible-reader/internal/tui"
)

func main() {
	addr := flag.String("addr", "http://localhost:3001", "base URL of the data server")
	translation := flag.String("translation", "", "translation file to open (default: last used, then en_kjv.json)")
	stateDir := flag.String("state-dir", "", "directory for reading state (default: user config dir)")
	stateDB := flag.String("state-db", "", "persist reading state in a SQLite file instead of JSON files")
	flag.Parse()

	store, err := openStore(*stateDir, *stateDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening state store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	id := *translation
	if id == "" {
		if snap, err := state.LoadSnapshot(store); err == nil && snap != nil && snap.Translation != "" {
			id = snap.Translation
		} else {
			id = bible.Catalog[0].ID
		}
	}

	loader := bible.NewLoader(*addr)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	trans, err := loader.Translation(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading Bible data: %v\n", err)
		fmt.Fprintf(os.Stderr, "Tried %s/%s and %s/api/json/%s.\n", *addr, id, *addr, id)
		fmt.Fprintf(os.Stderr, "Check that the data server is running (%s/api/list-files lists what it serves).\n", *addr)
		os.Exit(1)
	}

	// A missing cross-reference file is not fatal: the reader works
	// without the feature and the notice clears itself.
	refs := crossref.Index{}
	dataNotice := ""
	if data, err := loader.Fetch(ctx, "crossRefs.json"); err != nil {
		dataNotice = "Cross-references could not be loaded. Some features may be limited."
	} else if ix, err := crossref.Decode(data); err != nil {
		dataNotice = "The cross-reference file contains invalid JSON."
	} else {
		refs = ix
	}

	session := reader.New(trans, refs, store)
	asker := ask.NewClient(*addr)
	model := tui.New(session, loader, asker, store, dataNotice)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func openStore(dir, db string) (state.Store, error) {
	if db != "" {
		return state.NewSQLite(db)
	}
	if dir == "" {
		var err error
		dir, err = state.DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	return state.NewFile(dir)
}
