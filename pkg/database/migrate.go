package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/pkg/config"
)

//go:embed migrations
var migrationsFS embed.FS

// ErrLearnersModeMismatch reports a learners table created for the other LEARNERS_MODE.
var ErrLearnersModeMismatch = errors.New("learners table does not match LEARNERS_MODE")

// learnersColumn is a column only the matching learners variant has.
var learnersColumn = map[string]string{
	config.LearnersModeIndividual: "admission_no",
	config.LearnersModeAggregate:  "ecde_girls",
}

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

// Migrate applies the core migrations and those of the learners variant
// selected by mode. It is safe to run on every start and refuses a database
// whose learners table belongs to the other variant.
func Migrate(ctx context.Context, db *sqlx.DB, mode string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if mode != config.LearnersModeAggregate {
		mode = config.LearnersModeIndividual
	}

	dialect, dir := "sqlite3", "migrations/sqlite"
	if db.DriverName() == DriverPostgres {
		dialect, dir = "postgres", "migrations/postgres"
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{log.Sugar()})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.DB, dir+"/core", goose.WithAllowMissing()); err != nil {
		return fmt.Errorf("migrate core tables: %w", err)
	}
	if err := checkLearnersTable(ctx, db, mode); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB, dir+"/learners_"+mode, goose.WithAllowMissing()); err != nil {
		return fmt.Errorf("migrate learners tables: %w", err)
	}
	return nil
}

// checkLearnersTable fails when an existing learners table lacks the column of
// the selected variant.
func checkLearnersTable(ctx context.Context, db *sqlx.DB, mode string) error {
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if db.DriverName() == DriverPostgres {
		query = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`
	}
	var tables int
	if err := db.GetContext(ctx, &tables, db.Rebind(query), "learners"); err != nil {
		return fmt.Errorf("inspect learners table: %w", err)
	}
	if tables == 0 {
		return nil
	}

	rows, err := db.QueryxContext(ctx, `SELECT * FROM learners LIMIT 0`)
	if err != nil {
		return fmt.Errorf("inspect learners columns: %w", err)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("inspect learners columns: %w", err)
	}

	want := learnersColumn[mode]
	for _, column := range columns {
		if strings.EqualFold(column, want) {
			return nil
		}
	}
	return fmt.Errorf("%w: mode %q expects column %q, found %s", ErrLearnersModeMismatch, mode, want, strings.Join(columns, ", "))
}

type gooseLogger struct {
	*zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.Infof(strings.TrimSpace(format), v...)
}
