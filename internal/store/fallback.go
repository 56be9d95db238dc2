package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/quotes"
)

// RemoteStore is the remote side of a Fallback.
type RemoteStore interface {
	quotes.Persistence
	catalog.Persistence
	ReplaceQuotes(ctx context.Context, list []quotes.Quote) error
	Ping(ctx context.Context) error
}

// Recorder counts operations served from the local cache after a remote
// failure.
type Recorder interface {
	StoreFallback(op string)
}

// Mode describes which store is authoritative right now.
type Mode string

const (
	ModeLocal    Mode = "local"
	ModeRemote   Mode = "remote"
	ModeDegraded Mode = "degraded"
)

// DefaultRemoteTimeout bounds every remote call.
const DefaultRemoteTimeout = 5 * time.Second

const tracerName = "github.com/verandameister/quotedesk/internal/store"

var (
	_ quotes.Persistence  = (*Fallback)(nil)
	_ catalog.Persistence = (*Fallback)(nil)
	_ RemoteStore         = (*Remote)(nil)
)

// Fallback writes to the local cache first and mirrors to the remote store.
// Remote failures never reach the caller: reads fall back to the cache and
// failed writes mark the cache as pending until Resync succeeds.
type Fallback struct {
	local    *Local
	remote   RemoteStore
	timeout  time.Duration
	logger   *slog.Logger
	recorder Recorder
	tracer   trace.Tracer
}

// Option configures a Fallback.
type Option func(*Fallback)

// WithTimeout sets the per-call remote timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fallback) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fallback) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithRecorder sets the fallback metric sink.
func WithRecorder(r Recorder) Option {
	return func(f *Fallback) { f.recorder = r }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(f *Fallback) {
		if tp != nil {
			f.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewFallback combines local with an optional remote store. A nil remote
// runs on the local cache only.
func NewFallback(local *Local, remote RemoteStore, opts ...Option) *Fallback {
	f := &Fallback{
		local:   local,
		remote:  remote,
		timeout: DefaultRemoteTimeout,
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Mode reports local without a remote, degraded while changes are pending or
// the remote does not answer, remote otherwise.
func (f *Fallback) Mode(ctx context.Context) Mode {
	if f.remote == nil {
		return ModeLocal
	}
	pending, err := f.local.Pending(ctx)
	if err != nil || pending {
		return ModeDegraded
	}
	if err := f.remoteCall(ctx, f.remote.Ping); err != nil {
		return ModeDegraded
	}
	return ModeRemote
}

// FetchQuotes reads the remote collection and refreshes the cache with it.
func (f *Fallback) FetchQuotes(ctx context.Context) ([]quotes.Quote, error) {
	ctx, span := f.start(ctx, "store.fetch_quotes")
	defer span.End()

	if !f.remoteReadable(ctx) {
		return f.localQuotes(ctx, span)
	}
	var list []quotes.Quote
	err := f.remoteCall(ctx, func(ctx context.Context) error {
		var err error
		list, err = f.remote.FetchQuotes(ctx)
		return err
	})
	if err != nil {
		f.degraded(ctx, span, "fetch_quotes", err)
		return f.localQuotes(ctx, span)
	}
	if err := f.local.ReplaceQuotes(ctx, list); err != nil {
		f.logger.WarnContext(ctx, "refresh local quote cache", slog.Any("error", err))
	}
	return list, nil
}

// SaveQuote stores q locally, then remotely.
func (f *Fallback) SaveQuote(ctx context.Context, q quotes.Quote) error {
	ctx, span := f.start(ctx, "store.save_quote", attribute.String("quote.id", q.ID))
	defer span.End()
	return f.write(ctx, span, "save_quote",
		func(ctx context.Context) error { return f.local.SaveQuote(ctx, q) },
		func(ctx context.Context) error { return f.remote.SaveQuote(ctx, q) })
}

// DeleteQuote removes quote id locally, then remotely.
func (f *Fallback) DeleteQuote(ctx context.Context, id string) error {
	ctx, span := f.start(ctx, "store.delete_quote", attribute.String("quote.id", id))
	defer span.End()
	return f.write(ctx, span, "delete_quote",
		func(ctx context.Context) error { return f.local.DeleteQuote(ctx, id) },
		func(ctx context.Context) error { return f.remote.DeleteQuote(ctx, id) })
}

// UpdateQuoteStatus changes the status locally, then remotely.
func (f *Fallback) UpdateQuoteStatus(ctx context.Context, id string, status quotes.Status) error {
	ctx, span := f.start(ctx, "store.update_quote_status", attribute.String("quote.id", id), attribute.String("quote.status", string(status)))
	defer span.End()
	return f.write(ctx, span, "update_quote_status",
		func(ctx context.Context) error { return f.local.UpdateQuoteStatus(ctx, id, status) },
		func(ctx context.Context) error { return f.remote.UpdateQuoteStatus(ctx, id, status) })
}

// FetchCatalog reads the remote catalog and refreshes the cache with it.
func (f *Fallback) FetchCatalog(ctx context.Context) (catalog.Catalog, error) {
	ctx, span := f.start(ctx, "store.fetch_catalog")
	defer span.End()

	if !f.remoteReadable(ctx) {
		return f.localCatalog(ctx, span)
	}
	var tree catalog.Catalog
	err := f.remoteCall(ctx, func(ctx context.Context) error {
		var err error
		tree, err = f.remote.FetchCatalog(ctx)
		return err
	})
	if err != nil {
		f.degraded(ctx, span, "fetch_catalog", err)
		return f.localCatalog(ctx, span)
	}
	if len(tree) == 0 {
		// An empty remote never replaces a catalog the cache already holds.
		cached, stored, err := f.local.StoredCatalog(ctx)
		if err == nil && stored && len(cached) > 0 {
			return cached, nil
		}
		return tree, nil
	}
	if err := f.local.SaveCatalog(ctx, tree); err != nil {
		f.logger.WarnContext(ctx, "refresh local catalog cache", slog.Any("error", err))
	}
	return tree, nil
}

// SaveCatalog replaces the catalog locally, then remotely.
func (f *Fallback) SaveCatalog(ctx context.Context, c catalog.Catalog) error {
	ctx, span := f.start(ctx, "store.save_catalog", attribute.Int("catalog.main_categories", len(c)))
	defer span.End()
	return f.write(ctx, span, "save_catalog",
		func(ctx context.Context) error { return f.local.SaveCatalog(ctx, c) },
		func(ctx context.Context) error { return f.remote.SaveCatalog(ctx, c) })
}

// MarkPending flags the cache as ahead of the remote store, so reads stay
// local until Resync succeeds.
func (f *Fallback) MarkPending(ctx context.Context) error {
	return f.local.SetPending(ctx, true)
}

// Resync pushes the cached collections to the remote store and clears the
// pending flag. Without a remote it does nothing.
func (f *Fallback) Resync(ctx context.Context) error {
	if f.remote == nil {
		return nil
	}
	ctx, span := f.start(ctx, "store.resync")
	defer span.End()

	list, err := f.local.FetchQuotes(ctx)
	if err != nil {
		return f.fail(span, "resync", err)
	}
	tree, stored, err := f.local.StoredCatalog(ctx)
	if err != nil {
		return f.fail(span, "resync", err)
	}
	err = f.remoteCall(ctx, func(ctx context.Context) error {
		if err := f.remote.ReplaceQuotes(ctx, list); err != nil {
			return err
		}
		if stored {
			return f.remote.SaveCatalog(ctx, tree)
		}
		return nil
	})
	if err != nil {
		return f.fail(span, "resync", errors.Join(ErrRemoteUnavailable, err))
	}
	if err := f.local.SetPending(ctx, false); err != nil {
		return f.fail(span, "resync", err)
	}
	f.logger.InfoContext(ctx, "store resynced", slog.Int("quotes", len(list)), slog.Bool("catalog", stored))
	return nil
}

func (f *Fallback) write(ctx context.Context, span trace.Span, op string, local, remote func(context.Context) error) error {
	if err := local(ctx); err != nil {
		return f.fail(span, op, err)
	}
	if f.remote == nil {
		// Nothing mirrored this write; a remote attached later must not
		// overwrite the cache before Resync pushed it.
		if err := f.local.SetPending(ctx, true); err != nil {
			return f.fail(span, op, err)
		}
		return nil
	}
	pending, err := f.local.Pending(ctx)
	if err != nil {
		return f.fail(span, op, err)
	}
	if pending {
		span.SetAttributes(attribute.Bool("store.pending", true))
		return nil
	}
	if err := f.remoteCall(ctx, remote); err != nil {
		f.degraded(ctx, span, op, err)
		if err := f.local.SetPending(ctx, true); err != nil {
			return f.fail(span, op, err)
		}
	}
	return nil
}

func (f *Fallback) remoteReadable(ctx context.Context) bool {
	if f.remote == nil {
		return false
	}
	pending, err := f.local.Pending(ctx)
	return err == nil && !pending
}

func (f *Fallback) remoteCall(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return fn(ctx)
}

func (f *Fallback) localQuotes(ctx context.Context, span trace.Span) ([]quotes.Quote, error) {
	list, err := f.local.FetchQuotes(ctx)
	if err != nil {
		return nil, f.fail(span, "fetch_quotes", err)
	}
	return list, nil
}

func (f *Fallback) localCatalog(ctx context.Context, span trace.Span) (catalog.Catalog, error) {
	tree, err := f.local.FetchCatalog(ctx)
	if err != nil {
		return nil, f.fail(span, "fetch_catalog", err)
	}
	return tree, nil
}

func (f *Fallback) degraded(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.Bool("store.fallback", true))
	f.logger.WarnContext(ctx, "remote store unavailable, using local cache", slog.String("op", op), slog.Any("error", err))
	if f.recorder != nil {
		f.recorder.StoreFallback(op)
	}
}

func (f *Fallback) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func (f *Fallback) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return f.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
