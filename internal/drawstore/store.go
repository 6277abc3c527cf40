package drawstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"loto6-backend/internal/loto6"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// ErrNotFound is returned by Get when no draw has the given id.
var ErrNotFound = errors.New("drawstore: draw not found")

const drawColumns = `id, date,
	number1, number2, number3, number4, number5, number6, bonus,
	winners1, winners2, winners3, winners4, winners5,
	amount1, amount2, amount3, amount4, amount5,
	carryover, sales`

const upsertDraw = `insert into Draw (` + drawColumns + `)
values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (id) do update set
	date = excluded.date,
	number1 = excluded.number1,
	number2 = excluded.number2,
	number3 = excluded.number3,
	number4 = excluded.number4,
	number5 = excluded.number5,
	number6 = excluded.number6,
	bonus = excluded.bonus,
	winners1 = excluded.winners1,
	winners2 = excluded.winners2,
	winners3 = excluded.winners3,
	winners4 = excluded.winners4,
	winners5 = excluded.winners5,
	amount1 = excluded.amount1,
	amount2 = excluded.amount2,
	amount3 = excluded.amount3,
	amount4 = excluded.amount4,
	amount5 = excluded.amount5,
	carryover = excluded.carryover,
	sales = excluded.sales`

// Store keeps a queryable copy of the draw history in sqlite, the csv
// dataset stays the source of truth.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Open opens (or creates) the sqlite database at path and applies the schema.
func Open(ctx context.Context, path string) (Store, *sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, nil, err
	}
	_, err = database.ExecContext(ctx, Schema)
	if err != nil {
		database.Close()
		return Store{}, nil, fmt.Errorf("apply schema: %w", err)
	}
	return NewStore(database), database, nil
}

// Mirror upserts every record in a single transaction, draws that are
// absent from records are kept.
func (s Store) Mirror(ctx context.Context, records []loto6.DrawRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertDraw)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		args := make([]any, 0, loto6.RecordFields)
		for _, f := range r.Fields() {
			args = append(args, f)
		}
		args[0] = r.DrawID
		for i, n := range r.Numbers {
			args[2+i] = n
		}
		args[8] = r.Bonus

		_, err = stmt.ExecContext(ctx, args...)
		if err != nil {
			return fmt.Errorf("draw %d: %w", r.DrawID, err)
		}
	}
	return tx.Commit()
}

func scanDraw(row interface{ Scan(dest ...any) error }) (loto6.DrawRecord, error) {
	var r loto6.DrawRecord
	var date string
	dest := []any{&r.DrawID, &date}
	for i := range r.Numbers {
		dest = append(dest, &r.Numbers[i])
	}
	dest = append(dest, &r.Bonus)
	for i := range r.Prizes {
		dest = append(dest, &r.Prizes[i])
	}
	dest = append(dest, &r.Sales)

	err := row.Scan(dest...)
	if err != nil {
		return loto6.DrawRecord{}, err
	}

	_, err = fmt.Sscanf(strings.TrimSpace(date), "%d/%d/%d", &r.Date.Year, &r.Date.Month, &r.Date.Day)
	if err != nil {
		return loto6.DrawRecord{}, fmt.Errorf("draw %d: date %q: %w", r.DrawID, date, err)
	}
	return r, nil
}

// Get returns the draw with the given id.
func (s Store) Get(ctx context.Context, id int) (loto6.DrawRecord, error) {
	row := s.db.QueryRowContext(ctx, `select `+drawColumns+` from Draw where id = ?`, id)
	r, err := scanDraw(row)
	if errors.Is(err, sql.ErrNoRows) {
		return loto6.DrawRecord{}, ErrNotFound
	}
	return r, err
}

// Latest returns the draw with the highest id, ok is false when the store is empty.
func (s Store) Latest(ctx context.Context) (record loto6.DrawRecord, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `select `+drawColumns+` from Draw order by id desc limit 1`)
	record, err = scanDraw(row)
	if errors.Is(err, sql.ErrNoRows) {
		return loto6.DrawRecord{}, false, nil
	}
	if err != nil {
		return loto6.DrawRecord{}, false, err
	}
	return record, true, nil
}

// Count returns the number of stored draws.
func (s Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `select count(*) from Draw`).Scan(&count)
	return count, err
}
