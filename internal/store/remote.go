package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/platform/db"
	"github.com/verandameister/quotedesk/internal/quotes"
)

// Conn is the subset of *pgxpool.Pool the remote store uses.
type Conn interface {
	db.TxBeginner
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// Remote persists quotes and the catalog in PostgreSQL.
type Remote struct {
	conn Conn
	now  func() time.Time
}

// NewRemote constructs a remote store over conn.
func NewRemote(conn Conn) *Remote {
	return &Remote{conn: conn, now: time.Now}
}

// Ping checks connectivity.
func (r *Remote) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

const quoteColumns = `id, customer_name, customer_address, customer_postcode, customer_city,
	customer_email, customer_phone, slogan, quote_number, status, amount::float8,
	date, valid_until, items, is_invoice`

// FetchQuotes returns all quotes, most recently created first.
func (r *Remote) FetchQuotes(ctx context.Context) ([]quotes.Quote, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+quoteColumns+` FROM quotes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("store: query quotes: %w", err)
	}
	defer rows.Close()

	list := []quotes.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate quotes: %w", err)
	}
	return list, nil
}

const upsertQuote = `INSERT INTO quotes (id, customer_name, customer_address, customer_postcode,
	customer_city, customer_email, customer_phone, slogan, quote_number, status, amount,
	date, valid_until, items, is_invoice, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
ON CONFLICT (id) DO UPDATE SET
	customer_name = EXCLUDED.customer_name,
	customer_address = EXCLUDED.customer_address,
	customer_postcode = EXCLUDED.customer_postcode,
	customer_city = EXCLUDED.customer_city,
	customer_email = EXCLUDED.customer_email,
	customer_phone = EXCLUDED.customer_phone,
	slogan = EXCLUDED.slogan,
	quote_number = EXCLUDED.quote_number,
	status = EXCLUDED.status,
	amount = EXCLUDED.amount,
	date = EXCLUDED.date,
	valid_until = EXCLUDED.valid_until,
	items = EXCLUDED.items,
	is_invoice = EXCLUDED.is_invoice,
	updated_at = EXCLUDED.updated_at`

// SaveQuote inserts q or replaces the stored row with the same id. The
// creation time of an existing row is kept.
func (r *Remote) SaveQuote(ctx context.Context, q quotes.Quote) error {
	args, err := quoteArgs(q, r.now().UTC())
	if err != nil {
		return err
	}
	if _, err := r.conn.Exec(ctx, upsertQuote, args...); err != nil {
		return fmt.Errorf("store: upsert quote %s: %w", q.ID, err)
	}
	return nil
}

// DeleteQuote removes quote id.
func (r *Remote) DeleteQuote(ctx context.Context, id string) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("store: delete quote %s: %w", id, err)
	}
	return nil
}

// UpdateQuoteStatus sets the status of quote id.
func (r *Remote) UpdateQuoteStatus(ctx context.Context, id string, status quotes.Status) error {
	_, err := r.conn.Exec(ctx, `UPDATE quotes SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("store: update status %s: %w", id, err)
	}
	return nil
}

// ReplaceQuotes swaps the whole table for list in one transaction. Creation
// times are spaced so the stored order matches list.
func (r *Remote) ReplaceQuotes(ctx context.Context, list []quotes.Quote) error {
	base := r.now().UTC()
	return db.WithTx(ctx, r.conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM quotes`); err != nil {
			return fmt.Errorf("store: clear quotes: %w", err)
		}
		for i, q := range list {
			args, err := quoteArgs(q, base.Add(-time.Duration(i)*time.Millisecond))
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, upsertQuote, args...); err != nil {
				return fmt.Errorf("store: insert quote %s: %w", q.ID, err)
			}
		}
		return nil
	})
}

// FetchCatalog returns the main categories in stored order.
func (r *Remote) FetchCatalog(ctx context.Context) (catalog.Catalog, error) {
	rows, err := r.conn.Query(ctx, `SELECT id, name, sub_categories FROM catalog ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("store: query catalog: %w", err)
	}
	defer rows.Close()

	tree := catalog.Catalog{}
	for rows.Next() {
		var (
			main catalog.MainCategory
			subs []byte
		)
		if err := rows.Scan(&main.ID, &main.Name, &subs); err != nil {
			return nil, fmt.Errorf("store: scan catalog: %w", err)
		}
		if err := json.Unmarshal(subs, &main.SubCategories); err != nil {
			return nil, fmt.Errorf("store: decode subcategories of %s: %w", main.ID, err)
		}
		tree = append(tree, main)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate catalog: %w", err)
	}
	return tree, nil
}

// SaveCatalog replaces the stored catalog in one transaction.
func (r *Remote) SaveCatalog(ctx context.Context, c catalog.Catalog) error {
	return db.WithTx(ctx, r.conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM catalog`); err != nil {
			return fmt.Errorf("store: clear catalog: %w", err)
		}
		for i, main := range c {
			subs := main.SubCategories
			if subs == nil {
				subs = []catalog.SubCategory{}
			}
			body, err := json.Marshal(subs)
			if err != nil {
				return fmt.Errorf("store: encode subcategories of %s: %w", main.ID, err)
			}
			_, err = tx.Exec(ctx, `INSERT INTO catalog (id, position, name, sub_categories, updated_at) VALUES ($1, $2, $3, $4, now())`,
				main.ID, i, main.Name, body)
			if err != nil {
				return fmt.Errorf("store: insert category %s: %w", main.ID, err)
			}
		}
		return nil
	})
}

func quoteArgs(q quotes.Quote, at time.Time) ([]any, error) {
	items := q.Items
	if items == nil {
		items = []quotes.Item{}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("store: encode items of %s: %w", q.ID, err)
	}
	return []any{
		q.ID, q.CustomerName, q.CustomerAddress, q.CustomerPostcode, q.CustomerCity,
		q.CustomerEmail, q.CustomerPhone, q.Slogan, q.QuoteNumber, string(q.Status), q.Amount,
		q.Date.String(), q.ValidUntil.String(), body, q.IsInvoice, at,
	}, nil
}

func scanQuote(rows pgx.Rows) (quotes.Quote, error) {
	var (
		q                quotes.Quote
		status           string
		date, validUntil string
		items            []byte
	)
	err := rows.Scan(&q.ID, &q.CustomerName, &q.CustomerAddress, &q.CustomerPostcode, &q.CustomerCity,
		&q.CustomerEmail, &q.CustomerPhone, &q.Slogan, &q.QuoteNumber, &status, &q.Amount,
		&date, &validUntil, &items, &q.IsInvoice)
	if err != nil {
		return quotes.Quote{}, fmt.Errorf("store: scan quote: %w", err)
	}
	q.Status = quotes.Status(status)
	if q.Date, err = quotes.ParseDate(date); err != nil {
		return quotes.Quote{}, fmt.Errorf("store: quote %s date: %w", q.ID, err)
	}
	if q.ValidUntil, err = quotes.ParseDate(validUntil); err != nil {
		return quotes.Quote{}, fmt.Errorf("store: quote %s valid until: %w", q.ID, err)
	}
	if err := json.Unmarshal(items, &q.Items); err != nil {
		return quotes.Quote{}, fmt.Errorf("store: decode items of %s: %w", q.ID, err)
	}
	return q, nil
}
