package database

import (
	"context"
	"fmt"
	"log/slog"

	"postboard/internal/config"
	"postboard/internal/middleware"

	"gorm.io/gorm"
)

// Values accepted by DB_SCHEMA_MODE. An empty mode means hybrid.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan is what ApplySchema does for one config.
type SchemaPlan struct {
	Mode        string
	RunSQL      bool
	AutoMigrate bool
}

// SchemaStatus is the plan plus the migration bookkeeping of one database.
type SchemaStatus struct {
	SchemaPlan
	Env     string
	Dialect string
	Applied []int
	Pending []Migration
}

// PlanSchema resolves DB_SCHEMA_MODE. Hybrid runs the SQL migrations and,
// outside production, AutoMigrate on top. Auto alone is refused in production
// unless DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE is set.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{Mode: cfg.DBSchemaMode}
	if plan.Mode == "" {
		plan.Mode = SchemaModeHybrid
	}

	switch plan.Mode {
	case SchemaModeSQL:
		plan.RunSQL = true
	case SchemaModeHybrid:
		plan.RunSQL = true
		plan.AutoMigrate = !cfg.IsProduction()
	case SchemaModeAuto:
		if cfg.IsProduction() && !cfg.DBAutoMigrateAllowDestroy {
			return plan, fmt.Errorf("DB_SCHEMA_MODE=auto in %s requires DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.AutoMigrate = true
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}
	return plan, nil
}

// ApplySchema brings the posts schema up to date following PlanSchema.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}

	if plan.RunSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if plan.AutoMigrate {
		middleware.Logger.InfoContext(ctx, "auto-migrating models",
			slog.String("mode", plan.Mode),
			slog.String("dialect", db.Dialector.Name()),
		)
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}

// GetSchemaStatus reports the plan for cfg and which registered migrations
// the database has not applied yet.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{SchemaPlan: plan, Env: cfg.Env, Dialect: db.Dialector.Name()}
	if !plan.RunSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	status.Applied = applied

	done := make(map[int]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}
	for _, m := range GetMigrations(status.Dialect) {
		if _, ok := done[m.Version]; !ok {
			status.Pending = append(status.Pending, m)
		}
	}
	return status, nil
}
