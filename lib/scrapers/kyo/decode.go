package kyo

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// ErrInvalidEncoding is returned by Decode when the body is not valid Shift-JIS.
var ErrInvalidEncoding = errors.New("kyo: body is not valid shift-jis")

// RawRow is one record of the feed exactly as it was tokenized: draw number,
// date, 7 numbers, 11 prize fields and whatever else the source appends.
type RawRow []string

// Decode turns a raw feed body into rows, the header record is always
// dropped and so is every record whose first field is blank.
// Order is preserved, no field is validated.
func Decode(body []byte) ([]RawRow, error) {
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	// the decoder substitutes invalid sequences instead of failing, U+FFFD
	// cannot be represented in shift-jis so any occurrence means bad input.
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return nil, ErrInvalidEncoding
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []RawRow
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("kyo: parse csv: %w", err)
		}
		if i == 0 {
			continue
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		rows = append(rows, RawRow(record))
	}

	return rows, nil
}
