package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"shelleylegion/models"
	"shelleylegion/services"
	"shelleylegion/storage"

	"github.com/jedib0t/go-pretty/v6/table"
)

type listCmd struct{}

func (l *listCmd) Run(g *globalCmd) error {
	ctx := context.Background()
	store, closeFn, err := g.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return listDocuments(ctx, store, os.Stdout)
}

func listDocuments(ctx context.Context, store *services.ContentStore, w io.Writer) error {
	docs, err := store.List(ctx)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Backend: " + store.BackendName())
	t.AppendHeader(table.Row{"Document", "Path", "Stored", "Version"})
	for _, d := range docs {
		t.AppendRow(table.Row{d.Name, d.Path, d.Stored, d.VersionToken})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

type seedCmd struct {
	DryRun bool `help:"Report what would be written without writing."`
}

func (s *seedCmd) Run(g *globalCmd) error {
	ctx := context.Background()
	store, closeFn, err := g.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return seedDefaults(ctx, store, s.DryRun, os.Stdout)
}

// seedDefaults stores the default document for every name that has never
// been saved. Existing documents are left alone.
func seedDefaults(ctx context.Context, store *services.ContentStore, dryRun bool, w io.Writer) error {
	docs, err := store.List(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Document", "Action", "Version"})
	for _, d := range docs {
		if d.Stored {
			t.AppendRow(table.Row{d.Name, "kept", d.VersionToken})
			continue
		}
		if dryRun {
			t.AppendRow(table.Row{d.Name, "would seed", ""})
			continue
		}
		content, err := services.DefaultContent(d.Name)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(content)
		if err != nil {
			return err
		}
		saved, err := store.Write(ctx, d.Name, raw, storage.AbsentVersion)
		if err != nil {
			return fmt.Errorf("seed %s: %w", d.Name, err)
		}
		t.AppendRow(table.Row{d.Name, "seeded", saved.VersionToken})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

type importCmd struct {
	Dir    string `arg:"" optional:"" default:"./data" type:"existingdir" help:"Directory holding the content JSON files."`
	DryRun bool   `help:"Validate only; write nothing."`
}

func (i *importCmd) Run(g *globalCmd) error {
	ctx := context.Background()
	store, closeFn, err := g.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return importDir(ctx, store, i.Dir, i.DryRun, os.Stdout)
}

// importDir writes each content file in dir through the store, so every
// file is validated and versioned exactly like an admin edit. A file that
// fails validation stops the import.
func importDir(ctx context.Context, store *services.ContentStore, dir string, dryRun bool, w io.Writer) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"File", "Action", "Version"})
	defer func() {
		t.SetStyle(table.StyleLight)
		t.Render()
	}()

	validator := services.NewContentValidator()
	for _, name := range models.DocumentNames {
		raw, err := os.ReadFile(filepath.Join(dir, name.FileName()))
		if errors.Is(err, fs.ErrNotExist) {
			t.AppendRow(table.Row{name.FileName(), "skipped", ""})
			continue
		}
		if err != nil {
			return err
		}

		if dryRun {
			content, err := services.DecodeContent(name, raw)
			if err == nil {
				err = validator.Validate(name, content)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", name.FileName(), err)
			}
			t.AppendRow(table.Row{name.FileName(), "valid", ""})
			continue
		}

		current, err := store.Load(ctx, name)
		if err != nil {
			return err
		}
		saved, err := store.Write(ctx, name, raw, current.VersionToken)
		if err != nil {
			return fmt.Errorf("%s: %w", name.FileName(), err)
		}
		t.AppendRow(table.Row{name.FileName(), "imported", saved.VersionToken})
	}
	return nil
}
