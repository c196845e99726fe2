package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/GlebRadaev/artauction/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations applies the embedded schema through a database/sql bridge
// over the pool and reports the resulting version.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) (version int64, err error) {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if cerr := db.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close db: %w", cerr))
		}
	}()

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	version, err = goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	zap.L().Info("schema is up to date", zap.Int64("version", version))
	return version, nil
}
