package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/quotes"
)

// Keys of the documents kept in the local cache.
const (
	KeyQuotes      = "vm_quotes"
	KeyCatalog     = "vm_catalog"
	KeySyncPending = "vm_sync_pending"
)

type document struct {
	Key       string    `gorm:"column:doc_key;primaryKey"`
	Body      string    `gorm:"column:body;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (document) TableName() string { return "documents" }

// Local keeps whole collections as JSON documents in SQLite. It serves as the
// only store when no database is configured and as the offline cache
// otherwise.
type Local struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewLocal prepares the documents table.
func NewLocal(ctx context.Context, db *gorm.DB) (*Local, error) {
	if err := db.WithContext(ctx).AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("store: migrate local: %w", err)
	}
	return &Local{db: db}, nil
}

// FetchQuotes returns the cached quotes, most recent first.
func (l *Local) FetchQuotes(ctx context.Context) ([]quotes.Quote, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quotes(ctx)
}

// SaveQuote replaces the quote with the same id or prepends q.
func (l *Local) SaveQuote(ctx context.Context, q quotes.Quote) error {
	return l.mutateQuotes(ctx, func(r *quotes.Repository) { r.Upsert(q) })
}

// DeleteQuote removes quote id.
func (l *Local) DeleteQuote(ctx context.Context, id string) error {
	return l.mutateQuotes(ctx, func(r *quotes.Repository) { r.Remove(id) })
}

// UpdateQuoteStatus sets the status of quote id.
func (l *Local) UpdateQuoteStatus(ctx context.Context, id string, status quotes.Status) error {
	return l.mutateQuotes(ctx, func(r *quotes.Repository) { r.SetStatus(id, status) })
}

// ReplaceQuotes overwrites the cached collection.
func (l *Local) ReplaceQuotes(ctx context.Context, list []quotes.Quote) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if list == nil {
		list = []quotes.Quote{}
	}
	return l.write(ctx, KeyQuotes, list)
}

// FetchCatalog returns the cached catalog, empty when none was stored.
func (l *Local) FetchCatalog(ctx context.Context) (catalog.Catalog, error) {
	c, _, err := l.StoredCatalog(ctx)
	return c, err
}

// StoredCatalog returns the cached catalog and whether one was ever written.
func (l *Local) StoredCatalog(ctx context.Context) (catalog.Catalog, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var c catalog.Catalog
	found, err := l.read(ctx, KeyCatalog, &c)
	if err != nil {
		return nil, false, err
	}
	if c == nil {
		c = catalog.Catalog{}
	}
	return c, found, nil
}

// SaveCatalog overwrites the cached catalog.
func (l *Local) SaveCatalog(ctx context.Context, c catalog.Catalog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c == nil {
		c = catalog.Catalog{}
	}
	return l.write(ctx, KeyCatalog, c)
}

// Pending reports whether local changes still have to reach the remote store.
func (l *Local) Pending(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var pending bool
	if _, err := l.read(ctx, KeySyncPending, &pending); err != nil {
		return false, err
	}
	return pending, nil
}

// SetPending records whether a resync is needed.
func (l *Local) SetPending(ctx context.Context, pending bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(ctx, KeySyncPending, pending)
}

func (l *Local) quotes(ctx context.Context) ([]quotes.Quote, error) {
	var list []quotes.Quote
	if _, err := l.read(ctx, KeyQuotes, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []quotes.Quote{}
	}
	return list, nil
}

func (l *Local) mutateQuotes(ctx context.Context, fn func(*quotes.Repository)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	list, err := l.quotes(ctx)
	if err != nil {
		return err
	}
	repo := quotes.NewRepository(list)
	fn(repo)
	return l.write(ctx, KeyQuotes, repo.All())
}

func (l *Local) read(ctx context.Context, key string, target any) (bool, error) {
	var doc document
	err := l.db.WithContext(ctx).Where("doc_key = ?", key).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &PersistenceError{Op: "read " + key, Err: err}
	}
	if err := json.Unmarshal([]byte(doc.Body), target); err != nil {
		return false, &PersistenceError{Op: "decode " + key, Err: err}
	}
	return true, nil
}

func (l *Local) write(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return &PersistenceError{Op: "encode " + key, Err: err}
	}
	doc := document{Key: key, Body: string(body), UpdatedAt: time.Now().UTC()}
	err = l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return &PersistenceError{Op: "write " + key, Err: err}
	}
	return nil
}
