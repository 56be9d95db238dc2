package quotes

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verandameister/quotedesk/internal/shared"
)

// Persistence is the storage capability the quote service needs.
type Persistence interface {
	FetchQuotes(ctx context.Context) ([]Quote, error)
	SaveQuote(ctx context.Context, q Quote) error
	DeleteQuote(ctx context.Context, id string) error
	UpdateQuoteStatus(ctx context.Context, id string, status Status) error
}

// Service orchestrates quote persistence. Every write is followed by a full
// re-read so later reads observe it.
type Service struct {
	persistence Persistence
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string

	mu         sync.Mutex
	repo       *Repository
	selectedID string
}

// NewService constructs a quote service.
func NewService(persistence Persistence, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		persistence: persistence,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
		repo:        NewRepository(nil),
	}
}

// Load re-reads all quotes from persistence.
func (s *Service) Load(ctx context.Context) ([]Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return nil, err
	}
	return s.repo.All(), nil
}

// List returns fresh quotes, optionally restricted to one status.
func (s *Service) List(ctx context.Context, filter *Status) ([]Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(filter), nil
}

// Get returns one quote.
func (s *Service) Get(ctx context.Context, id string) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return Quote{}, err
	}
	q, ok := s.repo.Get(id)
	if !ok {
		return Quote{}, fmt.Errorf("quote %s: %w", id, shared.ErrNotFound)
	}
	return q, nil
}

// Stats returns portfolio aggregates.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return Stats{}, err
	}
	return s.repo.Stats(), nil
}

// NextNumber derives the number the next new quote will get.
func (s *Service) NextNumber(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return "", err
	}
	return s.repo.NextNumber(), nil
}

// NewDraft starts a builder for a new quote dated today.
func (s *Service) NewDraft(ctx context.Context) (*Builder, error) {
	number, err := s.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	return NewBuilder(nil, number, DateOf(s.now())), nil
}

// EditDraft starts a builder based on the stored quote id.
func (s *Service) EditDraft(ctx context.Context, id string) (*Builder, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewBuilder(&q, "", DateOf(s.now())), nil
}

// Save builds the draft and stores it. A draft that fails validation never
// reaches persistence.
func (s *Service) Save(ctx context.Context, b *Builder) (Quote, error) {
	q, err := b.Build(s.newID())
	if err != nil {
		return Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persistence.SaveQuote(ctx, q); err != nil {
		return Quote{}, fmt.Errorf("quotes: save %s: %w", q.ID, err)
	}
	if err := s.reloadLocked(ctx); err != nil {
		return Quote{}, err
	}
	s.logger.Info("quote saved", slog.String("quote_id", q.ID), slog.String("number", q.QuoteNumber), slog.Float64("amount", q.Amount))
	if stored, ok := s.repo.Get(q.ID); ok {
		return stored, nil
	}
	return q, nil
}

// Delete removes quote id. Unknown ids are ignored. The selection is cleared
// when it pointed at the deleted quote.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return err
	}
	if _, ok := s.repo.Get(id); !ok {
		return nil
	}
	if err := s.persistence.DeleteQuote(ctx, id); err != nil {
		return fmt.Errorf("quotes: delete %s: %w", id, err)
	}
	if s.selectedID == id {
		s.selectedID = ""
	}
	return s.reloadLocked(ctx)
}

// SetStatus sets the status of quote id. Any known status may follow any
// other. Unknown ids are ignored.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return err
	}
	if _, ok := s.repo.Get(id); !ok {
		return nil
	}
	if err := s.persistence.UpdateQuoteStatus(ctx, id, status); err != nil {
		return fmt.Errorf("quotes: status %s: %w", id, err)
	}
	return s.reloadLocked(ctx)
}

// ConvertToInvoice marks quote id as an invoice.
func (s *Service) ConvertToInvoice(ctx context.Context, id string) (Quote, error) {
	b, err := s.EditDraft(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	b.SetInvoice(true)
	return s.Save(ctx, b)
}

// Select marks quote id as the one being viewed.
func (s *Service) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.repo.Get(id); !ok {
		return false
	}
	s.selectedID = id
	return true
}

// Selected returns the quote being viewed, if any.
func (s *Service) Selected() (Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == "" {
		return Quote{}, false
	}
	return s.repo.Get(s.selectedID)
}

func (s *Service) reloadLocked(ctx context.Context) error {
	all, err := s.persistence.FetchQuotes(ctx)
	if err != nil {
		return fmt.Errorf("quotes: fetch: %w", err)
	}
	s.repo.Replace(all)
	if s.selectedID != "" {
		if _, ok := s.repo.Get(s.selectedID); !ok {
			s.selectedID = ""
		}
	}
	return nil
}
