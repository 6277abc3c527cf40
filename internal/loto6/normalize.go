package loto6

import (
	"fmt"

	"loto6-backend/lib/scrapers/kyo"
)

// Normalize maps feed rows into the canonical schema, keeping their order.
//
// Rows with fewer than MinRawFields fields are skipped. Any other row that
// cannot be read fails the whole batch with a FailureMalformedRow error and
// no records, a partially normalized history is never returned.
func Normalize(rows []kyo.RawRow) ([]DrawRecord, error) {
	records := make([]DrawRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) < MinRawFields {
			continue
		}
		record, err := parseRecord(row)
		if err != nil {
			return nil, newError(FailureMalformedRow, fmt.Errorf("row %d: %w", i+1, err))
		}
		records = append(records, record)
	}
	return records, nil
}

// MaxDrawID returns the highest draw id among records, or 0 when there are none.
// The feed is chronological but this does not rely on it.
func MaxDrawID(records []DrawRecord) int {
	latest := 0
	for _, r := range records {
		if r.DrawID > latest {
			latest = r.DrawID
		}
	}
	return latest
}
