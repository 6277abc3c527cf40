package loto6

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const utf8BOM = "\ufeff"

// LatestDrawID returns the draw id of the last data line of the dataset at
// path. A missing dataset or one without data lines yields 0.
//
// A last data line that does not start with an integer is reported as a
// FailureLocalState error, it must never be mistaken for "no history".
func LatestDrawID(path string) (int, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, newError(FailureLocalState, err)
	}

	lines := strings.Split(string(contents), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(strings.TrimPrefix(lines[i], utf8BOM))
		if line == "" || strings.HasPrefix(line, HeaderMarker) {
			continue
		}

		first, _, _ := strings.Cut(line, ",")
		id, err := parseDrawID(first)
		if err != nil {
			return 0, newError(FailureLocalState, fmt.Errorf("%s line %d: %w", path, i+1, err))
		}
		return id, nil
	}
	return 0, nil
}

// WriteDataset replaces the dataset at path with the header followed by
// records. The new contents are written to a temporary file next to path
// and renamed over it, readers either see the old or the new dataset.
//
// It returns the number of records written.
func WriteDataset(path string, records []DrawRecord) (int, error) {
	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteByte('\n')
	for _, r := range records {
		buf.WriteString(r.Line())
		buf.WriteByte('\n')
	}

	err := writeFileAtomic(path, buf.Bytes())
	if err != nil {
		return 0, newError(FailureWrite, err)
	}
	return len(records), nil
}

func writeFileAtomic(path string, contents []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	_, err = tmp.Write(contents)
	if err != nil {
		return cleanup(err)
	}
	err = tmp.Sync()
	if err != nil {
		return cleanup(err)
	}
	err = tmp.Chmod(0644)
	if err != nil {
		return cleanup(err)
	}
	err = tmp.Close()
	if err != nil {
		return cleanup(err)
	}

	err = os.Rename(tmpName, path)
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// ReadDataset parses a local dataset back into records. Blank lines, header
// lines and lines with fewer than MinRawFields columns are skipped.
func ReadDataset(path string) ([]DrawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records []DrawRecord
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		first := strings.TrimSpace(strings.TrimPrefix(fields[0], utf8BOM))
		if first == "" || strings.HasPrefix(first, HeaderMarker) {
			continue
		}
		if len(fields) < MinRawFields {
			continue
		}

		record, err := parseRecord(fields)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		if len(fields) > MinRawFields {
			record.Sales = strings.TrimSpace(fields[MinRawFields])
		}
		records = append(records, record)
	}
	return records, nil
}
