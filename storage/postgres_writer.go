package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"car-arbitrage/models"
)

var _ DealWriter = (*PostgresWriter)(nil)

// PostgresWriter persists the current deal snapshot to PostgreSQL. Each run
// replaces the previous snapshot; the table always reflects the latest run.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS deals (
			id             SERIAL PRIMARY KEY,
			model_key      VARCHAR(50)   NOT NULL,
			source         VARCHAR(50)   NOT NULL,
			title          TEXT          NOT NULL,
			buy_price      NUMERIC(10,2) NOT NULL,
			sale_price     NUMERIC(10,2) NOT NULL,
			net_profit     NUMERIC(10,2) NOT NULL,
			margin_pct     NUMERIC(6,2)  NOT NULL,
			location       TEXT          NOT NULL DEFAULT '',
			distance_miles NUMERIC(7,2)  NOT NULL,
			year           INT           NOT NULL DEFAULT 0,
			mileage        INT           NOT NULL DEFAULT 0,
			url            TEXT          UNIQUE NOT NULL,
			created_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_deals_model_key  ON deals(model_key);
		CREATE INDEX IF NOT EXISTS idx_deals_net_profit ON deals(net_profit);
		CREATE INDEX IF NOT EXISTS idx_deals_location   ON deals(location);
	`)
	return err
}

// Clear deletes the previous snapshot.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM deals")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts the deal snapshot, clearing the old one first.
func (pw *PostgresWriter) Write(deals []*models.Deal) error {
	if err := pw.Clear(); err != nil {
		return err
	}
	if len(deals) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(deals); i += batchSize {
		end := i + batchSize
		if end > len(deals) {
			end = len(deals)
		}
		if err := pw.insertBatch(deals[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Deal) error {
	const cols = 12
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, d := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for p := 0; p < cols; p++ {
			placeholders[p] = fmt.Sprintf("$%d", base+p+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		l := d.Listing
		valueArgs = append(valueArgs,
			d.ModelKey, l.Source, l.Title, l.Price, d.SalePrice, d.NetProfit,
			d.MarginPct, l.Location, d.DistanceMiles, l.Year, l.Mileage, l.URL)
	}

	query := fmt.Sprintf(`
		INSERT INTO deals (model_key, source, title, buy_price, sale_price, net_profit,
		                   margin_pct, location, distance_miles, year, mileage, url)
		VALUES %s
		ON CONFLICT (url) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves the stored snapshot ordered by net profit, best first.
func (pw *PostgresWriter) FetchAll() ([]models.DealRecord, error) {
	rows, err := pw.db.Query(`
		SELECT model_key, source, title, buy_price, sale_price, net_profit,
		       margin_pct, location, distance_miles, year, mileage, url
		FROM deals
		ORDER BY net_profit DESC, margin_pct DESC, url
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var records []models.DealRecord
	for rows.Next() {
		var r models.DealRecord
		if err := rows.Scan(
			&r.Model, &r.Source, &r.Title, &r.BuyPrice, &r.SalePrice, &r.NetProfit,
			&r.MarginPct, &r.Location, &r.DistanceMiles, &r.Year, &r.Mileage, &r.URL,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
