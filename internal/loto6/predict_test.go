package loto6

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"loto6-backend/internal/components/chrono"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func drawOn(id int, numbers ...int) DrawRecord {
	r := DrawRecord{
		DrawID: id,
		Date:   DrawDate{Year: 2000, Month: 10, Day: id},
		Bonus:  43,
		Sales:  SalesPlaceholder,
	}
	copy(r.Numbers[:], numbers)
	return r
}

// threeDraws is listed out of order, Predict must not depend on it.
func threeDraws() []DrawRecord {
	return []DrawRecord{
		drawOn(2, 1, 2, 3, 7, 8, 9),
		drawOn(3, 1, 10, 11, 12, 13, 14),
		drawOn(1, 1, 2, 3, 4, 5, 6),
	}
}

func TestPredictEmptyHistory(t *testing.T) {
	p := Predict(nil)

	require.Equal(t, []int{1, 2, 3, 4, 22, 23}, p.Recommended)
	require.Len(t, p.Scores, MaxNumber)
	require.Equal(t, 0, p.TotalDraws)
	require.Equal(t, 0, p.RecentDraws)

	for _, s := range p.Scores {
		require.Equal(t, 0.5, s.Frequency)
		require.Equal(t, 0.5, s.Trend)
		require.Equal(t, 0.5, s.Interval)
		require.Equal(t, 0.0, s.Carryover)
		require.False(t, s.CarriedOver)
	}

	// the selection holds 4 low numbers, so only high numbers get the full
	// balance bonus and rank first
	require.Equal(t, 22, p.Scores[0].Number)
	low, _ := p.Score(1)
	high, _ := p.Score(43)
	require.Equal(t, 0.75, low.Balance)
	require.Equal(t, 1.0, high.Balance)
	require.InDelta(t, 0.425, low.Total, 1e-9)
	require.InDelta(t, 0.45, high.Total, 1e-9)
}

func TestPredictScores(t *testing.T) {
	p := Predict(threeDraws())

	require.Equal(t, 3, p.TotalDraws)
	require.Equal(t, 3, p.RecentDraws)
	require.Equal(t, 3, p.Latest.DrawID)
	require.Equal(t, []int{1, 2, 3, 4, 22, 23}, p.Recommended)
	require.Equal(t, 1, p.Scores[0].Number)

	table := []struct {
		number       int
		frequency    float64
		interval     float64
		carryover    float64
		appearances  int
		sinceLast    int
		carriedOver  bool
		expectReason string
	}{
		{
			number:       1,
			frequency:    1,
			interval:     0,
			carryover:    1,
			appearances:  3,
			sinceLast:    0,
			carriedOver:  true,
			expectReason: "直近50回で勢いがあり、全期間でも安定して出現",
		},
		{number: 2, frequency: 2.0 / 3, interval: 1.0 / 3, appearances: 2, sinceLast: 1},
		{number: 5, frequency: 1.0 / 3, interval: 2.0 / 3, appearances: 1, sinceLast: 2},
		{number: 10, frequency: 1.0 / 3, interval: 0, appearances: 1, sinceLast: 0, carriedOver: true},
		{
			number:       43,
			frequency:    0,
			interval:     1,
			appearances:  0,
			sinceLast:    3,
			expectReason: "出目間隔とバランスの両面で期待できる数字",
		},
	}

	for _, test := range table {
		s, ok := p.Score(test.number)
		require.True(t, ok)
		require.InDelta(t, test.frequency, s.Frequency, 1e-9, "number %d", test.number)
		// every draw is recent, so trend follows frequency
		require.InDelta(t, test.frequency, s.Trend, 1e-9, "number %d", test.number)
		require.InDelta(t, test.interval, s.Interval, 1e-9, "number %d", test.number)
		require.InDelta(t, test.carryover, s.Carryover, 1e-9, "number %d", test.number)
		require.Equal(t, test.appearances, s.TotalAppearances, "number %d", test.number)
		require.Equal(t, test.appearances, s.RecentAppearances, "number %d", test.number)
		require.Equal(t, test.sinceLast, s.DrawsSinceLast, "number %d", test.number)
		require.Equal(t, test.carriedOver, s.CarriedOver, "number %d", test.number)
		if test.expectReason != "" {
			require.Equal(t, test.expectReason, s.Reason(), "number %d", test.number)
		}
	}

	for i := 1; i < len(p.Scores); i++ {
		require.GreaterOrEqual(t, p.Scores[i-1].Total, p.Scores[i].Total)
	}
}

func TestPredictRecentWindow(t *testing.T) {
	var records []DrawRecord
	for id := 1; id <= RecentDraws+10; id++ {
		if id <= 10 {
			records = append(records, drawOn(id, 38, 39, 40, 41, 42, 43))
		} else {
			records = append(records, drawOn(id, 1, 2, 3, 4, 5, 6))
		}
	}

	p := Predict(records)
	require.Equal(t, RecentDraws+10, p.TotalDraws)
	require.Equal(t, RecentDraws, p.RecentDraws)

	old, _ := p.Score(43)
	require.Equal(t, 10, old.TotalAppearances)
	require.Equal(t, 0, old.RecentAppearances)
	require.Equal(t, 0.0, old.Trend)
	require.Equal(t, RecentDraws, old.DrawsSinceLast)

	recent, _ := p.Score(1)
	require.Equal(t, RecentDraws, recent.RecentAppearances)
	require.Equal(t, 1.0, recent.Trend)
}

func TestSelectBalanced(t *testing.T) {
	scores := make([]NumberScore, MaxNumber)
	for i := range scores {
		scores[i].Number = i + 1
		if scores[i].Number%2 == 0 && scores[i].Number <= 12 {
			scores[i].Total = 1
		}
	}

	// 10 and 12 are even and low with 4 of each already taken
	require.Equal(t, []int{2, 4, 6, 8, 23, 25}, selectBalanced(scores))
}

func TestReason(t *testing.T) {
	table := []struct {
		name     string
		score    NumberScore
		expected string
	}{
		{
			name:     "frequency alone",
			score:    NumberScore{Frequency: 0.9, Trend: 0.2, Interval: 0.1, Balance: 0.5},
			expected: "全期間での出現率が高く、安定した数字",
		},
		{
			name:     "carryover alone",
			score:    NumberScore{Frequency: 0.5, Trend: 0.5, Interval: 0.5, Balance: 0.5, Carryover: 1},
			expected: "前回も出現しており、引き継がれやすい傾向の数字",
		},
		{
			name:     "interval close to trend",
			score:    NumberScore{Frequency: 0.1, Trend: 0.7, Interval: 0.8, Balance: 0.5},
			expected: "直近の勢いがあり、出目間隔的にも好タイミング",
		},
		{
			name:     "balance close to carryover",
			score:    NumberScore{Frequency: 0.1, Trend: 0.1, Interval: 0.1, Balance: 1, Carryover: 0.9},
			expected: "前回からの引き継ぎ傾向とバランスを兼備",
		},
		{
			name:     "ties keep component order",
			score:    NumberScore{Frequency: 0.5, Trend: 0.5, Interval: 0.5, Balance: 0.5},
			expected: "直近50回で勢いがあり、全期間でも安定して出現",
		},
		{
			name:     "gap at the threshold",
			score:    NumberScore{Trend: 0.65, Interval: 0.5, Balance: 0.5},
			expected: "直近50回で特に勢いがある注目数字",
		},
	}

	for _, test := range table {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, test.score.Reason())
		})
	}
}

func TestNewPredictionDocument(t *testing.T) {
	p := Predict(threeDraws())
	clock := chrono.NewFakeImpl(time.Date(2024, 2, 19, 10, 0, 0, 0, time.UTC))

	doc := NewPredictionDocument(p, clock)
	require.Equal(t, "2024-02-19T19:00:00+09:00", doc.LastUpdated)
	require.Equal(t, 3, doc.TotalDrawings)
	require.Equal(t, 3, doc.RecentDraws)
	if diff := cmp.Diff(LatestDrawingDocument{
		Round:   3,
		Date:    "2000-10-03",
		Numbers: []int{1, 10, 11, 12, 13, 14},
		Bonus:   43,
	}, doc.LatestDrawing); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, []int{1, 2, 3, 4, 22, 23}, doc.Recommendation.Numbers)
	require.Len(t, doc.Recommendation.Scores, PickCount)
	one := doc.Recommendation.Scores["1"]
	require.Equal(t, 0.775, one.Total)
	require.Equal(t, 0.75, one.Balance)
	require.Equal(t, "直近50回で勢いがあり、全期間でも安定して出現", one.Reason)

	require.Len(t, doc.AllScores, MaxNumber)
	require.Equal(t, 1, doc.AllScores[0].Number)
	require.True(t, doc.AllScores[0].IsCarriedOver)
	two := doc.Recommendation.Scores["2"]
	require.Equal(t, 0.667, two.Frequency)
}

func TestWritePrediction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prediction.json")
	writeTestFile(t, path, "stale")

	clock := chrono.NewFakeImpl(time.Date(2024, 2, 19, 19, 0, 0, 0, chrono.JST))
	doc := NewPredictionDocument(Predict(threeDraws()), clock)
	require.NoError(t, WritePrediction(path, doc))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(contents, &raw))
	for _, key := range []string{"lastUpdated", "totalDrawings", "recentDraws", "latestDrawing", "recommendation", "allScores"} {
		require.Contains(t, raw, key)
	}
	first := raw["allScores"].([]any)[0].(map[string]any)
	require.Contains(t, first, "drawsSinceLastAppearance")
	require.Contains(t, first, "isCarriedOver")

	var read PredictionDocument
	require.NoError(t, json.Unmarshal(contents, &read))
	if diff := cmp.Diff(doc, read); diff != "" {
		t.Fatal(diff)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWritePredictionMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "prediction.json")
	err := WritePrediction(path, PredictionDocument{})
	require.Error(t, err)
}
