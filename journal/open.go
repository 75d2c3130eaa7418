package journal

import (
	"context"
	"fmt"

	"github.com/rustyeddy/cfdsim/config"
)

// Open returns the journal described by cfg. Type "none" or "" discards.
func Open(ctx context.Context, cfg config.JournalConfig) (Journal, error) {
	switch cfg.Type {
	case "", "none":
		return Discard{}, nil
	case "csv":
		return NewCSV(cfg.RunsFile, cfg.RowsFile)
	case "sqlite":
		return NewSQLite(cfg.DBPath)
	case "postgres":
		return NewPostgres(ctx, cfg.DSN)
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
}
