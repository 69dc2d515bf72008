package pages

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"htmlgo/app/internal/db"
)

const defaultListLimit = 10

// ErrPageExists reports a creation that collided with an existing identifier.
// The truncated id space makes this possible at scale; the caller may retry
// with different input.
var ErrPageExists = eris.New("page id already exists")

// Repository owns page entity shaping and persistence. Every store
// interaction goes through the retry-wrapping Store.
type Repository struct {
	store  *db.Store
	logger *logrus.Logger
	now    func() time.Time
}

// NewRepository constructs a page repository over the retry-wrapping store.
func NewRepository(store *db.Store, logger *logrus.Logger) (*Repository, error) {
	if store == nil {
		return nil, eris.New("store is required")
	}

	return &Repository{store: store, logger: logger, now: time.Now}, nil
}

// Create persists a new page and returns its shareable id and generated
// password. A password is generated even for unprotected pages so they can be
// promoted to protected later without minting a new secret.
func (r *Repository) Create(ctx context.Context, content string, protected bool, codeType CodeType) (*CreateResult, error) {
	if codeType == "" {
		codeType = CodeTypeHTML
	}

	createdAt := r.now().UnixMilli()
	id := deriveID(content, createdAt)

	password, err := generatePassword()
	if err != nil {
		r.logError(logrus.Fields{"id": id}, err, "generating page password")
		return nil, eris.Wrap(err, "generating page password")
	}

	record := &PageRecord{
		ID:          id,
		HTMLContent: content,
		CreatedAt:   createdAt,
		Password:    password,
		IsProtected: boolToInt(protected),
		CodeType:    string(codeType),
		Title:       ExtractTitle(content),
	}

	err = r.store.Write(ctx, "pages.create", func(tx *gorm.DB) error {
		return tx.Create(record).Error
	})
	if err != nil {
		if db.IsConstraint(err) {
			dupErr := eris.Wrapf(ErrPageExists, "creating page: %s", id)
			r.logError(logrus.Fields{"id": id, "code_type": codeType}, dupErr, "creating page with duplicate id")
			return nil, dupErr
		}
		r.logError(logrus.Fields{"id": id, "code_type": codeType}, err, "creating page")
		return nil, eris.Wrapf(err, "creating page: %s", id)
	}

	return &CreateResult{ID: id, Password: password}, nil
}

// GetByID returns the page for the provided id or nil when not found. A blank
// id matches nothing and is reported as absent, not as an error.
func (r *Repository) GetByID(ctx context.Context, id string) (*Page, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, nil
	}

	var record PageRecord
	err := r.store.Read(ctx, "pages.get", func(tx *gorm.DB) error {
		return tx.First(&record, "id = ?", trimmed).Error
	})
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"id": trimmed}, err, "fetching page by id")
		return nil, eris.Wrapf(err, "fetching page by id: %s", trimmed)
	}

	return record.toDomain(), nil
}

// Recent returns the newest pages, most recent first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]RecentPage, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var rows []RecentPage
	err := r.store.Read(ctx, "pages.recent", func(tx *gorm.DB) error {
		return tx.Model(&PageRecord{}).
			Select("id", "created_at").
			Order("created_at DESC").
			Limit(limit).
			Scan(&rows).Error
	})
	if err != nil {
		r.logError(logrus.Fields{"limit": limit}, err, "listing recent pages")
		return nil, eris.Wrap(err, "listing recent pages")
	}

	return rows, nil
}

// ListPaged returns one page of the admin listing. A non-empty search term
// filters rows whose id or title contains it; the total is counted with the
// same filter before pagination.
func (r *Repository) ListPaged(ctx context.Context, page, limit int, search string) (*Listing, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultListLimit
	}
	offset := (page - 1) * limit

	filter := func(tx *gorm.DB) *gorm.DB {
		if search == "" {
			return tx
		}
		pattern := "%" + search + "%"
		return tx.Where("id LIKE ? OR title LIKE ?", pattern, pattern)
	}

	var total int64
	err := r.store.Read(ctx, "pages.list.count", func(tx *gorm.DB) error {
		return filter(tx.Model(&PageRecord{})).Count(&total).Error
	})
	if err != nil {
		r.logError(logrus.Fields{"search": search}, err, "counting pages")
		return nil, eris.Wrap(err, "counting pages")
	}

	var records []PageRecord
	err = r.store.Read(ctx, "pages.list", func(tx *gorm.DB) error {
		return filter(tx.Model(&PageRecord{})).
			Select("id", "created_at", "is_protected", "code_type", "title", "password").
			Order("created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&records).Error
	})
	if err != nil {
		r.logError(logrus.Fields{"page": page, "limit": limit, "search": search}, err, "listing pages")
		return nil, eris.Wrap(err, "listing pages")
	}

	summaries := make([]Summary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, Summary{
			ID:                 record.ID,
			Title:              record.Title,
			Password:           record.Password,
			CreatedAt:          record.CreatedAt,
			CreatedAtFormatted: formatCreatedAt(record.CreatedAt),
			Protected:          record.IsProtected != 0,
			CodeType:           CodeType(record.CodeType),
		})
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &Listing{
		Pages:       summaries,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// DeleteByID removes one page and reports whether a row was deleted. Deleting
// a nonexistent or blank id is not an error; it simply removes nothing.
func (r *Repository) DeleteByID(ctx context.Context, id string) (bool, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return false, nil
	}

	var affected int64
	err := r.store.Write(ctx, "pages.delete", func(tx *gorm.DB) error {
		result := tx.Delete(&PageRecord{}, "id = ?", trimmed)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		r.logError(logrus.Fields{"id": trimmed}, err, "deleting page")
		return false, eris.Wrapf(err, "deleting page: %s", trimmed)
	}

	return affected > 0, nil
}

// BatchDelete removes the given pages in a single statement and returns the
// deleted count. An empty id list is a no-op that never touches the store.
func (r *Repository) BatchDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var affected int64
	err := r.store.Write(ctx, "pages.batch_delete", func(tx *gorm.DB) error {
		result := tx.Where("id IN ?", ids).Delete(&PageRecord{})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		r.logError(logrus.Fields{"count": len(ids)}, err, "batch deleting pages")
		return 0, eris.Wrap(err, "batch deleting pages")
	}

	return affected, nil
}

// Stats aggregates page counts: totals, protection split, a 7-day window, a
// since-local-midnight window, and per-code-type counts ordered by count
// descending.
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	total, err := r.countWhere(ctx, "pages.stats.total", "")
	if err != nil {
		return nil, err
	}

	protectedCount, err := r.countWhere(ctx, "pages.stats.protected", "is_protected = 1")
	if err != nil {
		return nil, err
	}

	now := r.now()
	sevenDaysAgo := now.Add(-7 * 24 * time.Hour).UnixMilli()
	recentCount, err := r.countWhere(ctx, "pages.stats.recent", "created_at > ?", sevenDaysAgo)
	if err != nil {
		return nil, err
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).UnixMilli()
	todayCount, err := r.countWhere(ctx, "pages.stats.today", "created_at > ?", midnight)
	if err != nil {
		return nil, err
	}

	var typeStats []TypeStat
	err = r.store.Query(ctx, "pages.stats.types", &typeStats,
		"SELECT code_type, COUNT(*) AS count FROM pages GROUP BY code_type ORDER BY count DESC")
	if err != nil {
		r.logError(nil, err, "aggregating code type stats")
		return nil, eris.Wrap(err, "aggregating code type stats")
	}

	return &Stats{
		Total:            total,
		ProtectedCount:   protectedCount,
		UnprotectedCount: total - protectedCount,
		RecentCount:      recentCount,
		TodayCount:       todayCount,
		TypeStats:        typeStats,
	}, nil
}

func (r *Repository) countWhere(ctx context.Context, operation, condition string, args ...any) (int64, error) {
	statement := "SELECT COUNT(*) AS count FROM pages"
	if condition != "" {
		statement += " WHERE " + condition
	}

	var row struct{ Count int64 }
	if _, err := r.store.GetOne(ctx, operation, &row, statement, args...); err != nil {
		r.logError(logrus.Fields{"operation": operation}, err, "counting pages for stats")
		return 0, eris.Wrapf(err, "counting pages: %s", operation)
	}

	return row.Count, nil
}

func formatCreatedAt(millis int64) string {
	return time.UnixMilli(millis).Local().Format("2006-01-02 15:04:05")
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func (r *Repository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil || err == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
