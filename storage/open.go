package storage

import (
	"context"
	"fmt"
	"log"

	"shelleylegion/database"

	"google.golang.org/api/option"
)

// Options selects and configures a backend.
type Options struct {
	// Kind is one of filesystem, memory, gcs, github or postgres.
	Kind    string
	DataDir string

	GCSBucket          string
	GCSPrefix          string
	GCSCredentialsFile string

	GitHub   GitHubConfig
	Database database.Config
}

// Open builds the backend named by opts.Kind. The returned close function
// releases any client or connection and is never nil.
func Open(ctx context.Context, opts Options) (Backend, func() error, error) {
	noop := func() error { return nil }

	switch opts.Kind {
	case "", "filesystem":
		b, err := NewFilesystemBackend(opts.DataDir)
		if err != nil {
			return nil, noop, err
		}
		log.Printf("📁 Content stored on filesystem at %s", opts.DataDir)
		return b, noop, nil

	case "memory":
		log.Println("⚠️  Content stored in memory; edits are lost on restart")
		return NewMemoryBackend(), noop, nil

	case "gcs":
		var clientOpts []option.ClientOption
		if opts.GCSCredentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(opts.GCSCredentialsFile))
		}
		b, err := NewGCSBackend(ctx, opts.GCSBucket, opts.GCSPrefix, clientOpts...)
		if err != nil {
			return nil, noop, err
		}
		log.Printf("☁️  Content stored in gs://%s/%s", opts.GCSBucket, opts.GCSPrefix)
		return b, b.Close, nil

	case "github":
		b, err := NewGitHubBackend(opts.GitHub)
		if err != nil {
			return nil, noop, err
		}
		log.Printf("🐙 Content stored in github.com/%s/%s@%s:%s",
			opts.GitHub.Owner, opts.GitHub.Repo, b.branch, b.dir)
		return b, noop, nil

	case "postgres":
		db, err := database.Open(opts.Database)
		if err != nil {
			return nil, noop, err
		}
		return NewPostgresBackend(db), func() error { return database.Close(db) }, nil
	}

	return nil, noop, fmt.Errorf("unknown storage backend %q", opts.Kind)
}
