package loto6

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

const sourceHeader = "開催回,日付,第1数字,第2数字,第3数字,第4数字,第5数字,第6数字,ボーナス数字,1等口数,2等口数,3等口数,4等口数,5等口数,1等賞金,2等賞金,3等賞金,4等賞金,5等賞金,キャリーオーバー"

// feedRow is a source row with unpadded date and numbers.
func feedRow(id int, date string) string {
	return fmt.Sprintf("%d,%s,1,5,12,23,34,43,7,0,3,180,8765,140000,0,12345600,678900,9100,1000,0", id, date)
}

// datasetLine is what feedRow becomes in the local dataset.
func datasetLine(id int, date string) string {
	return fmt.Sprintf("%d,%s,01,05,12,23,34,43,07,0,3,180,8765,140000,0,12345600,678900,9100,1000,0,0", id, date)
}

func feedBody(t testing.TB, rows ...string) []byte {
	text := sourceHeader + "\r\n" + strings.Join(rows, "\r\n") + "\r\n"
	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatal(err)
	}
	return encoded
}

func writeTestFile(t testing.TB, path string, lines ...string) {
	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
}

func readTestFile(t testing.TB, path string) string {
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(contents)
}

var errUnreachable = errors.New("dial tcp: connection refused")

type feedResponse struct {
	body []byte
	err  error
}

// scriptedFeed answers Fetch with its responses in order, the last one repeats.
type scriptedFeed struct {
	mutex     sync.Mutex
	responses []feedResponse
	calls     int
	onFetch   func()
}

func (f *scriptedFeed) Fetch(ctx context.Context) ([]byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	if f.onFetch != nil {
		f.onFetch()
	}
	res := f.responses[idx]
	return res.body, res.err
}

func (f *scriptedFeed) Calls() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.calls
}

type memorySignal struct {
	keys   []string
	values map[string]string
}

func newMemorySignal() *memorySignal {
	return &memorySignal{values: map[string]string{}}
}

func (s *memorySignal) Set(key, value string) error {
	s.keys = append(s.keys, key)
	s.values[key] = value
	return nil
}

type recordingMirror struct {
	records []DrawRecord
	err     error
}

func (m *recordingMirror) Mirror(_ context.Context, records []DrawRecord) error {
	m.records = records
	return m.err
}
