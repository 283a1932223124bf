package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/tayloree/bonuscli/internal/bonus"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore keeps offers in the bonus_products table.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens the database at path and runs migrations. Use ":memory:"
// for a throwaway database.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	dsn := path
	if !strings.HasPrefix(path, ":memory:") {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Every pooled connection to ":memory:" would see its own empty database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, logger: orDefault(logger)}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const offerCols = `id, user_id, name, price, original_price, discount, discount_percentage,
	bonus_description, store, week, category, url, created_at`

// ReplaceAllOffers deletes the user's offers and inserts offers in a single
// transaction.
func (s *SQLiteStore) ReplaceAllOffers(ctx context.Context, userID string, offers []bonus.Offer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM bonus_products WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete offers: %w", err)
	}
	deleted, _ := res.RowsAffected()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bonus_products (`+offerCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, o := range offers {
		id, err := newOfferID()
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			id, userID, o.Name, o.Price, o.OriginalPrice, o.Discount, o.DiscountPercent,
			o.BonusDescription, o.Store, o.Week, o.Category, o.URL, now,
		)
		if err != nil {
			return fmt.Errorf("insert offer %q: %w", o.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("replaced offers", "user_id", userID, "deleted", deleted, "inserted", len(offers))
	return nil
}

func scanOffer(scanner interface{ Scan(...any) error }) (*StoredOffer, error) {
	var (
		o                              StoredOffer
		price, originalPrice, discount sql.NullFloat64
		discountPercent                sql.NullInt64
		description, week              sql.NullString
	)
	err := scanner.Scan(
		&o.ID, &o.UserID, &o.Name, &price, &originalPrice, &discount, &discountPercent,
		&description, &o.Store, &week, &o.Category, &o.URL, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Price = nullFloat(price)
	o.OriginalPrice = nullFloat(originalPrice)
	o.Discount = nullFloat(discount)
	if discountPercent.Valid {
		v := int(discountPercent.Int64)
		o.DiscountPercent = &v
	}
	o.BonusDescription = nullString(description)
	o.Week = nullString(week)
	return &o, nil
}

// GetOffers returns the user's offers ordered by name.
func (s *SQLiteStore) GetOffers(ctx context.Context, userID, week string) ([]StoredOffer, error) {
	query := `SELECT ` + offerCols + ` FROM bonus_products WHERE user_id = ?`
	args := []any{userID}
	if week != "" {
		query += ` AND week = ?`
		args = append(args, week)
	}
	query += ` ORDER BY name ASC, rowid ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	var offers []StoredOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
