package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Persistence is the storage capability the catalog needs.
type Persistence interface {
	FetchCatalog(ctx context.Context) (Catalog, error)
	SaveCatalog(ctx context.Context, c Catalog) error
}

// Service keeps the catalog store in sync with persistence. Each mutation is
// applied to the store, written as a full collection and then re-read.
type Service struct {
	persistence Persistence
	logger      *slog.Logger

	mu     sync.Mutex
	store  *Store
	loaded bool
}

// NewService constructs a catalog service.
func NewService(persistence Persistence, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		persistence: persistence,
		logger:      logger,
		store:       NewStore(nil),
	}
}

// Load fetches the stored catalog. When nothing has been stored yet the first
// load falls back to the built-in seed.
func (s *Service) Load(ctx context.Context) (Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return nil, err
	}
	return s.store.Catalog(), nil
}

// Catalog returns the last loaded catalog.
func (s *Service) Catalog() Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Catalog()
}

// Selection returns the active main and sub category.
func (s *Service) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Selection()
}

// Save replaces the whole catalog.
func (s *Service) Save(ctx context.Context, c Catalog) (Catalog, error) {
	err := s.mutate(ctx, func(st *Store) error {
		st.Replace(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Catalog(), nil
}

// AddMain appends and selects a main category.
func (s *Service) AddMain(ctx context.Context, name string) (MainCategory, error) {
	var created MainCategory
	err := s.mutate(ctx, func(st *Store) error {
		var err error
		created, err = st.AddMain(name)
		return err
	})
	return created, err
}

// DeleteMain removes a main category and its subtree.
func (s *Service) DeleteMain(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *Store) error {
		st.DeleteMain(id)
		return nil
	})
}

// AddSub appends a subcategory under parentID.
func (s *Service) AddSub(ctx context.Context, parentID, name string) (SubCategory, error) {
	var created SubCategory
	err := s.mutate(ctx, func(st *Store) error {
		var err error
		created, err = st.AddSub(parentID, name)
		return err
	})
	return created, err
}

// DeleteSub removes a subcategory.
func (s *Service) DeleteSub(ctx context.Context, parentID, id string) error {
	return s.mutate(ctx, func(st *Store) error {
		st.DeleteSub(parentID, id)
		return nil
	})
}

// SelectMain changes the active main category. Selection is not persisted.
func (s *Service) SelectMain(id string) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SelectMain(id)
	return s.store.Selection()
}

// SelectSub changes the active subcategory.
func (s *Service) SelectSub(id string) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SelectSub(id)
	return s.store.Selection()
}

// AddArticle appends a placeholder article to subID. It reports false when
// subID does not exist.
func (s *Service) AddArticle(ctx context.Context, subID string) (Article, bool, error) {
	var (
		created Article
		ok      bool
	)
	err := s.mutate(ctx, func(st *Store) error {
		st.SelectSub(subID)
		if st.Selection().SubID != subID {
			return nil
		}
		created, ok = st.AddArticle()
		return nil
	})
	return created, ok, err
}

// UpdateArticle replaces one field of an article in subID.
func (s *Service) UpdateArticle(ctx context.Context, subID, id string, field ArticleField, value string) error {
	return s.mutate(ctx, func(st *Store) error {
		st.SelectSub(subID)
		if st.Selection().SubID != subID {
			return nil
		}
		return st.UpdateArticle(id, field, value)
	})
}

// DeleteArticle removes an article from subID.
func (s *Service) DeleteArticle(ctx context.Context, subID, id string) error {
	return s.mutate(ctx, func(st *Store) error {
		st.SelectSub(subID)
		if st.Selection().SubID != subID {
			return nil
		}
		st.DeleteArticle(id)
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, fn func(*Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := s.reloadLocked(ctx); err != nil {
			return err
		}
	}
	before := s.store.Catalog()
	selection := s.store.Selection()
	if err := fn(s.store); err != nil {
		return err
	}
	if err := s.persistence.SaveCatalog(ctx, s.store.Catalog()); err != nil {
		s.store.Replace(before)
		s.store.selection = selection
		return fmt.Errorf("catalog: save: %w", err)
	}
	return s.reloadLocked(ctx)
}

func (s *Service) reloadLocked(ctx context.Context) error {
	stored, err := s.persistence.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("catalog: fetch: %w", err)
	}
	if len(stored) == 0 && !s.loaded {
		seed, err := Seed()
		if err != nil {
			return err
		}
		s.logger.Info("catalog empty, using seed", slog.Int("main_categories", len(seed)))
		stored = seed
	}
	s.loaded = true
	s.store.Replace(normalize(stored))
	return nil
}
