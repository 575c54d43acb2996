package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/finwell-app/finwell/internal/common"
	"github.com/finwell-app/finwell/internal/config"
	"github.com/finwell-app/finwell/internal/storage"
)

// initStorage opens the rule store and brings the schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStore, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// requireUser resolves the acting user id from flags or config.
func requireUser() (string, error) {
	userID := viper.GetString("user")
	if userID == "" {
		return "", common.NewUserError("no user id given; pass --user or set user in config", common.ErrMissingUser)
	}
	return userID, nil
}
