// Command legionctl manages the Shelley Legion site content from a shell.
package main

import (
	"context"

	"shelleylegion/config"
	"shelleylegion/services"
	"shelleylegion/storage"

	"github.com/alecthomas/kong"
)

type globalCmd struct {
	DataDir string `help:"Override DATA_DIR for the filesystem backend." name:"data-dir" type:"path"`
}

// openStore connects to the backend configured in the environment. The
// returned function releases it.
func (g *globalCmd) openStore(ctx context.Context) (*services.ContentStore, func() error, error) {
	cfg, err := config.LoadStorage()
	if err != nil {
		return nil, nil, err
	}
	if g.DataDir != "" {
		cfg.Storage.DataDir = g.DataDir
	}
	backend, closeFn, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, nil, err
	}
	return services.NewContentStore(backend, cfg.Storage.Timeout), closeFn, nil
}

var CLI struct {
	globalCmd

	HashPassword hashPasswordCmd `cmd:"" help:"Print a bcrypt hash for ADMIN_PASSWORD_HASH."`
	Lint         lintCmd         `cmd:"" help:"Validate content JSON files in a directory."`
	List         listCmd         `cmd:"" help:"List content documents in the configured backend."`
	Seed         seedCmd         `cmd:"" help:"Store default content for documents that were never saved."`
	Import       importCmd       `cmd:"" help:"Write content JSON files from a directory to the configured backend."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("legionctl"),
		kong.Description("Manage Shelley Legion team site content."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&CLI.globalCmd)
	ctx.FatalIfErrorf(err)
}
