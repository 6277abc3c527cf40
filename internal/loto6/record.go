package loto6

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Header is the first line of every local dataset, it is never data.
const Header = "No,抽選日,数字１,数字２,数字３,数字４,数字５,数字６,数字Ｂ,１等口数,２等口数,３等口数,４等口数,５等口数,１等金額,２等金額,３等金額,４等金額,５等金額,キャリーオーバー,販売実績"

// HeaderMarker is how a header line is told apart from data when scanning a dataset.
const HeaderMarker = "No"

// SalesPlaceholder fills the sales column, the feed does not publish sales
// but the historical dataset has always carried the column.
const SalesPlaceholder = "0"

const (
	// MinRawFields is the least number of fields a feed row needs to be usable.
	MinRawFields = 20
	// PrizeFields are the 5 win counts, the 5 amounts and the carryover.
	PrizeFields = 11
	// RecordFields is the number of columns of a dataset line.
	RecordFields = 21
)

type DrawDate struct {
	Year  int
	Month int
	Day   int
}

func (d DrawDate) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

func parseDrawDate(value string) (DrawDate, error) {
	parts := strings.Split(strings.TrimSpace(value), "/")
	if len(parts) != 3 {
		return DrawDate{}, fmt.Errorf("date %q: expected year/month/day", value)
	}

	var out [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return DrawDate{}, fmt.Errorf("date %q: %w", value, err)
		}
		out[i] = n
	}
	return DrawDate{Year: out[0], Month: out[1], Day: out[2]}, nil
}

// DrawRecord is one draw in the canonical local schema.
type DrawRecord struct {
	DrawID  int
	Date    DrawDate
	Numbers [6]int
	Bonus   int
	// Prizes are copied verbatim from the feed: win counts for tiers 1-5,
	// amounts for tiers 1-5, then the carryover.
	Prizes [PrizeFields]string
	Sales  string
}

// Fields renders the record as the columns of a dataset line.
func (r DrawRecord) Fields() []string {
	fields := make([]string, 0, RecordFields)
	fields = append(fields, strconv.Itoa(r.DrawID), r.Date.String())
	for _, n := range r.Numbers {
		fields = append(fields, fmt.Sprintf("%02d", n))
	}
	fields = append(fields, fmt.Sprintf("%02d", r.Bonus))
	fields = append(fields, r.Prizes[:]...)

	sales := r.Sales
	if sales == "" {
		sales = SalesPlaceholder
	}
	return append(fields, sales)
}

// Line renders the record as a dataset line without the line ending. Prize
// fields holding a comma (the feed quotes amounts like "1,000") are quoted,
// every other field is written bare.
func (r DrawRecord) Line() string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	// writing to a strings.Builder cannot fail
	w.Write(r.Fields())
	w.Flush()
	return strings.TrimSuffix(sb.String(), "\n")
}

// parseNumbers reads the 6 primary numbers followed by the bonus number.
func parseNumbers(fields []string) ([6]int, int, error) {
	var values [7]int
	for i := range values {
		n, err := strconv.Atoi(strings.TrimSpace(fields[i]))
		if err != nil {
			return [6]int{}, 0, fmt.Errorf("number %d: %w", i+1, err)
		}
		values[i] = n
	}

	var numbers [6]int
	copy(numbers[:], values[:6])
	return numbers, values[6], nil
}

func parseDrawID(value string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("draw id %q: %w", value, err)
	}
	return id, nil
}

// parseRecord reads the shared layout of feed rows and dataset lines:
// id, date, 6 numbers, bonus, 11 prize fields.
func parseRecord(fields []string) (DrawRecord, error) {
	if len(fields) < MinRawFields {
		return DrawRecord{}, fmt.Errorf("expected at least %d fields, got %d", MinRawFields, len(fields))
	}

	id, err := parseDrawID(fields[0])
	if err != nil {
		return DrawRecord{}, err
	}
	date, err := parseDrawDate(fields[1])
	if err != nil {
		return DrawRecord{}, fmt.Errorf("draw %d: %w", id, err)
	}
	numbers, bonus, err := parseNumbers(fields[2:9])
	if err != nil {
		return DrawRecord{}, fmt.Errorf("draw %d: %w", id, err)
	}

	record := DrawRecord{
		DrawID:  id,
		Date:    date,
		Numbers: numbers,
		Bonus:   bonus,
		Sales:   SalesPlaceholder,
	}
	for i := 0; i < PrizeFields; i++ {
		record.Prizes[i] = strings.TrimSpace(fields[9+i])
	}
	return record, nil
}
