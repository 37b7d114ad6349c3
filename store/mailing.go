package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/swiftsale/label-annotator/dto"
)

// MailingStore persists buyer contact info and cumulative order history.
//
// Dedup policy (strict variant): rows match on exact equality of
// (full_name, address_line_1, city, state, zip_code). A match accumulates
// spent and num_orders, refreshes order_date/order_id to the latest order,
// and never rewrites identity or address fields; a changed address is a new
// physical destination and inserts a new row.
type MailingStore struct {
	db *sql.DB
}

// OpenMailing opens (and if needed creates) the mailing-list database.
func OpenMailing(ctx context.Context, path string) (*MailingStore, error) {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	schema := `
CREATE TABLE IF NOT EXISTS mailing_list (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name TEXT,
	username TEXT,
	email TEXT,
	address_line_1 TEXT,
	address_line_2 TEXT,
	city TEXT,
	state TEXT,
	zip_code TEXT,
	country TEXT DEFAULT 'US',
	order_date TEXT,
	order_id TEXT,
	num_orders INTEGER DEFAULT 1,
	spent REAL DEFAULT 0.0,
	checked INTEGER DEFAULT 0
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init mailing schema: %w", err)
	}

	return &MailingStore{db: db}, nil
}

// Close closes the database connection.
func (s *MailingStore) Close() error {
	return s.db.Close()
}

const entryColumns = `id, full_name, username, email, address_line_1, address_line_2,
	city, state, zip_code, country, order_date, order_id, num_orders, spent, checked`

// AddOrUpdate upserts one mailing-list entry under the strict address-tuple
// policy. On a match, spent and num_orders accumulate and order_date/order_id
// are refreshed to the latest order; identity, email and address fields are
// never rewritten. The dedup lookup and the write run in one transaction.
func (s *MailingStore) AddOrUpdate(ctx context.Context, entry *dto.MailingListEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM mailing_list
		WHERE full_name = ? AND address_line_1 = ? AND city = ? AND state = ? AND zip_code = ?`,
		entry.FullName, entry.AddressLine1, entry.City, entry.State, entry.ZipCode,
	).Scan(&id)

	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `
			UPDATE mailing_list
			SET spent = spent + ?, num_orders = num_orders + 1, order_date = ?, order_id = ?
			WHERE id = ?`,
			entry.Spent, entry.OrderDate, entry.OrderID, id); err != nil {
			return err
		}
		log.Printf("Accumulated mailing entry for %s (+$%.2f)", entry.FullName, entry.Spent)
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO mailing_list
			(full_name, username, email, address_line_1, address_line_2, city, state, zip_code,
			 country, order_date, order_id, num_orders, spent, checked)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, 0)`,
			entry.FullName, entry.Username, entry.Email, entry.AddressLine1, entry.AddressLine2,
			entry.City, entry.State, entry.ZipCode, entry.Country,
			entry.OrderDate, entry.OrderID, entry.Spent); err != nil {
			return err
		}
	default:
		return err
	}

	return tx.Commit()
}

// Search retrieves entries matching the provided filters, sorted by spend
// descending when sortBySpent is set, otherwise by full name.
func (s *MailingStore) Search(ctx context.Context, filters dto.MailingFilters, sortBySpent bool) ([]dto.MailingListEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM mailing_list WHERE 1=1`
	var params []any

	if filters.Name != "" {
		query += ` AND full_name LIKE ?`
		params = append(params, "%"+filters.Name+"%")
	}
	if filters.Username != "" {
		query += ` AND username LIKE ?`
		params = append(params, "%"+filters.Username+"%")
	}
	if filters.City != "" {
		query += ` AND city LIKE ?`
		params = append(params, "%"+filters.City+"%")
	}
	if filters.State != "" {
		query += ` AND state LIKE ?`
		params = append(params, "%"+filters.State+"%")
	}
	if filters.SpentMin != nil {
		query += ` AND spent >= ?`
		params = append(params, *filters.SpentMin)
	}
	if filters.SpentMax != nil {
		query += ` AND spent <= ?`
		params = append(params, *filters.SpentMax)
	}
	if filters.Date != "" {
		query += ` AND order_date = ?`
		params = append(params, filters.Date)
	}

	if sortBySpent {
		query += ` ORDER BY spent DESC`
	} else {
		query += ` ORDER BY full_name COLLATE NOCASE ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetByID returns a single entry or dto.ErrEntryNotFound.
func (s *MailingStore) GetByID(ctx context.Context, id int64) (*dto.MailingListEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM mailing_list WHERE id = ?`, id)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dto.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SetChecked flags or unflags an entry for label export.
func (s *MailingStore) SetChecked(ctx context.Context, id int64, checked bool) error {
	flag := 0
	if checked {
		flag = 1
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE mailing_list SET checked = ? WHERE id = ?`, flag, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return dto.ErrEntryNotFound
	}
	return nil
}

// CheckedEntries returns all entries flagged for export.
func (s *MailingStore) CheckedEntries(ctx context.Context) ([]dto.MailingListEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM mailing_list WHERE checked = 1 ORDER BY full_name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Clear removes every mailing-list entry.
func (s *MailingStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM mailing_list`)
	return err
}

// BulkImportEmails reads a CSV with at least full_name and email columns and
// attaches emails to matching entries, inserting rows for buyers not yet on
// the list. Rows missing either required value are skipped, not fatal.
func (s *MailingStore) BulkImportEmails(ctx context.Context, r io.Reader) (dto.ImportSummary, error) {
	var summary dto.ImportSummary

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return summary, fmt.Errorf("read csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"full_name", "email"} {
		if _, ok := col[required]; !ok {
			return summary, fmt.Errorf("missing required CSV header: %s", required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("read csv row: %w", err)
		}

		fullName := field(record, "full_name")
		email := field(record, "email")
		if fullName == "" || email == "" {
			summary.Skipped++
			continue
		}

		addressLine1 := field(record, "address_line_1")
		city := field(record, "city")
		state := field(record, "state")
		zip := field(record, "zip_code")

		var id int64
		err = s.db.QueryRowContext(ctx, `
			SELECT id FROM mailing_list
			WHERE full_name = ? AND address_line_1 = ? AND city = ? AND state = ? AND zip_code = ?`,
			fullName, addressLine1, city, state, zip).Scan(&id)
		switch {
		case err == nil:
			if _, err := s.db.ExecContext(ctx,
				`UPDATE mailing_list SET email = ? WHERE id = ?`, email, id); err != nil {
				return summary, err
			}
			summary.Updated++
		case errors.Is(err, sql.ErrNoRows):
			if _, err := s.db.ExecContext(ctx, `
				INSERT INTO mailing_list
				(full_name, username, email, address_line_1, address_line_2, city, state, zip_code,
				 country, order_date, order_id, num_orders, spent, checked)
				VALUES (?, '', ?, ?, '', ?, ?, ?, 'US', ?, ?, 1, 0.0, 0)`,
				fullName, email, addressLine1, city, state, zip,
				field(record, "order_date"), field(record, "order_id")); err != nil {
				return summary, err
			}
			summary.Added++
		default:
			return summary, err
		}
	}

	return summary, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*dto.MailingListEntry, error) {
	var e dto.MailingListEntry
	var checked int
	err := row.Scan(
		&e.ID, &e.FullName, &e.Username, &e.Email, &e.AddressLine1, &e.AddressLine2,
		&e.City, &e.State, &e.ZipCode, &e.Country, &e.OrderDate, &e.OrderID,
		&e.NumOrders, &e.Spent, &checked,
	)
	if err != nil {
		return nil, err
	}
	e.Checked = checked != 0
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]dto.MailingListEntry, error) {
	var entries []dto.MailingListEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}
