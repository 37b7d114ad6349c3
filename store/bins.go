package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "modernc.org/sqlite"

	"github.com/swiftsale/label-annotator/dto"
	"github.com/swiftsale/label-annotator/utils"
)

// BinStore persists the username -> bin number assignments made during a live
// show. Bins are positive integers handed out in first-seen order.
type BinStore struct {
	db *sql.DB
}

// OpenBins opens (and if needed creates) the bidders database.
func OpenBins(ctx context.Context, path string) (*BinStore, error) {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	schema := `
CREATE TABLE IF NOT EXISTS bin_assignments (
	username TEXT PRIMARY KEY,
	bin_number INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bin_assignments_username
ON bin_assignments (username);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bin schema: %w", err)
	}

	return &BinStore{db: db}, nil
}

// Close closes the database connection.
func (s *BinStore) Close() error {
	return s.db.Close()
}

// Assign returns the bin already held by username, or assigns the next
// sequential bin. The read and insert run in one transaction so concurrent
// assignments cannot hand out the same bin twice.
func (s *BinStore) Assign(ctx context.Context, username string) (int, error) {
	uname := utils.NormalizeUsername(username)
	if uname == "" {
		return 0, dto.ErrEmptyUsername
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var bin int
	err = tx.QueryRowContext(ctx,
		`SELECT bin_number FROM bin_assignments WHERE username = ?`, uname).Scan(&bin)
	if err == nil {
		return bin, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(bin_number), 0) FROM bin_assignments`).Scan(&bin); err != nil {
		return 0, err
	}
	bin++

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bin_assignments (username, bin_number) VALUES (?, ?)`, uname, bin); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	log.Printf("Assigned bin %d to username %s", bin, uname)
	return bin, nil
}

// BinMap loads the full assignment table as a normalized username -> bin
// projection. The annotation pipeline reads this once per run and treats it
// as immutable while a document is processed.
func (s *BinStore) BinMap(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, bin_number FROM bin_assignments`)
	if err != nil {
		return nil, fmt.Errorf("load bin assignments: %w", err)
	}
	defer rows.Close()

	binMap := make(map[string]int)
	for rows.Next() {
		var username string
		var bin int
		if err := rows.Scan(&username, &bin); err != nil {
			return nil, err
		}
		binMap[utils.NormalizeUsername(username)] = bin
	}
	return binMap, rows.Err()
}

// List returns all assignments ordered by bin number.
func (s *BinStore) List(ctx context.Context) ([]dto.BinAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, bin_number FROM bin_assignments ORDER BY bin_number ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []dto.BinAssignment
	for rows.Next() {
		var a dto.BinAssignment
		if err := rows.Scan(&a.Username, &a.BinNumber); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Count returns the number of distinct usernames holding a bin.
func (s *BinStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT username) FROM bin_assignments`).Scan(&count)
	return count, err
}

// Clear removes every assignment, typically at the start of a new show.
func (s *BinStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bin_assignments`)
	return err
}
