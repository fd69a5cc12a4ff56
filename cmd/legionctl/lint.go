package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"shelleylegion/models"
	"shelleylegion/services"

	"github.com/jedib0t/go-pretty/v6/table"
)

type lintCmd struct {
	Dir string `arg:"" optional:"" default:"./data" type:"path" help:"Directory holding roster.json, schedule.json, stats.json and team-info.json."`
}

func (l *lintCmd) Run(g *globalCmd) error {
	ok, err := lintDir(l.Dir, os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("content files failed validation")
	}
	return nil
}

// lintDir validates every content file present in dir and prints a result
// table to w. Missing files are reported but do not fail the lint.
func lintDir(dir string, w io.Writer) (bool, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s is not a directory", dir)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"File", "Entries", "Result"})

	validator := services.NewContentValidator()
	allOK := true
	for _, name := range models.DocumentNames {
		path := filepath.Join(dir, name.FileName())
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			t.AppendRow(table.Row{name.FileName(), "-", "missing (default content is served)"})
			continue
		}
		if err != nil {
			return false, err
		}

		content, err := services.DecodeContent(name, raw)
		if err == nil {
			err = validator.Validate(name, content)
		}
		if err == nil {
			t.AppendRow(table.Row{name.FileName(), entryCount(content), "OK"})
			continue
		}

		allOK = false
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				t.AppendRow(table.Row{name.FileName(), entryCount(content), f.Field + " " + f.Message})
			}
		} else {
			t.AppendRow(table.Row{name.FileName(), "-", err.Error()})
		}
		t.AppendSeparator()
	}

	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}, {Number: 2, AutoMerge: true}})
	t.SetStyle(table.StyleLight)
	t.Render()
	return allOK, nil
}

func entryCount(content any) string {
	switch c := content.(type) {
	case *models.Roster:
		return fmt.Sprint(len(c.Players))
	case *models.Schedule:
		return fmt.Sprint(len(c.Events))
	case *models.TeamStats:
		return fmt.Sprint(len(c.TeamStats))
	case *models.TeamInfo:
		return "1"
	}
	return "-"
}
