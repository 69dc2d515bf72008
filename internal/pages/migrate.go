package pages

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"htmlgo/app/internal/db"
)

const createPagesTable = `
CREATE TABLE IF NOT EXISTS pages (
	id TEXT PRIMARY KEY,
	html_content TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	password TEXT,
	is_protected INTEGER DEFAULT 0,
	code_type TEXT DEFAULT 'html',
	title TEXT DEFAULT 'Untitled'
)`

const addTitleColumn = `ALTER TABLE pages ADD COLUMN title TEXT DEFAULT 'Untitled'`

// Migrate applies the pages schema. Databases created before the title column
// existed are patched in place; a failed backfill is a warning, not a fatal
// condition, because the table itself remains usable.
func Migrate(ctx context.Context, store *db.Store, logger *logrus.Logger) error {
	if store == nil {
		return eris.New("store is required")
	}

	logFields := logrus.Fields{"component": "pages.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying pages schema")
	}

	if _, err := store.Execute(ctx, "pages.migrate.create", createPagesTable); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("pages schema migration failed")
		}
		return eris.Wrap(err, "creating pages table")
	}

	// The backfill runs outside the store's retry wrapper with a silent
	// statement logger: the column already existing is the normal outcome
	// after the first run, and must not surface through the store's error
	// logging. SQLite reports it as a generic error, so the message is the
	// only discriminator.
	alterSession := store.DB().WithContext(ctx).Session(&gorm.Session{Logger: gormlogger.Discard})
	if err := alterSession.Exec(addTitleColumn).Error; err != nil {
		if !strings.Contains(err.Error(), "duplicate column name") && logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Warn("adding title column failed")
		}
	}

	if logger != nil {
		logger.WithFields(logFields).Info("pages schema migration complete")
	}

	return nil
}
