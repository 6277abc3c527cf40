package loto6

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"loto6-backend/internal/components/chrono"
)

const (
	// MaxNumber is the highest number that can be drawn.
	MaxNumber = 43
	// RecentDraws is the window the trend score looks at.
	RecentDraws = 50
	// PickCount is the size of a recommendation.
	PickCount = 6

	WeightFrequency = 0.20
	WeightTrend     = 0.30
	WeightInterval  = 0.20
	WeightBalance   = 0.10
	WeightCarryover = 0.20
)

// NumberScore is how one number scored against the draw history, every
// component score is in [0, 1].
type NumberScore struct {
	Number int

	Frequency float64
	Trend     float64
	Interval  float64
	Balance   float64
	Carryover float64
	Total     float64

	TotalAppearances  int
	RecentAppearances int
	// DrawsSinceLast is 0 when the number was in the latest draw and the
	// number of draws when it never appeared.
	DrawsSinceLast int
	// CarriedOver is set for the numbers of the latest draw.
	CarriedOver bool
}

func (s *NumberScore) total() {
	s.Total = s.Frequency*WeightFrequency +
		s.Trend*WeightTrend +
		s.Interval*WeightInterval +
		s.Balance*WeightBalance +
		s.Carryover*WeightCarryover
}

type Prediction struct {
	// Recommended holds PickCount numbers in ascending order.
	Recommended []int
	// Scores holds every number from the highest total to the lowest,
	// equal totals keep ascending number order.
	Scores      []NumberScore
	Latest      DrawRecord
	TotalDraws  int
	RecentDraws int
}

// Score returns the score of number n.
func (p Prediction) Score(n int) (NumberScore, bool) {
	for _, s := range p.Scores {
		if s.Number == n {
			return s, true
		}
	}
	return NumberScore{}, false
}

func contains(numbers [6]int, n int) bool {
	for _, v := range numbers {
		if v == n {
			return true
		}
	}
	return false
}

// normalize maps values onto [0, 1] by min-max, all equal values map to 0.5.
func normalize(values []int) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if hi > lo {
			out[i] = float64(v-lo) / float64(hi-lo)
		} else {
			out[i] = 0.5
		}
	}
	return out
}

// Predict scores every number against the draw history and recommends
// PickCount of them, keeping the even/odd and low/high split at most 4:2.
func Predict(records []DrawRecord) Prediction {
	newest := append([]DrawRecord(nil), records...)
	sort.SliceStable(newest, func(i, j int) bool {
		return newest[i].DrawID > newest[j].DrawID
	})

	scores := make([]NumberScore, MaxNumber)
	totals := make([]int, MaxNumber)
	recents := make([]int, MaxNumber)
	intervals := make([]int, MaxNumber)
	for i := range scores {
		scores[i].Number = i + 1
		intervals[i] = len(newest)
	}

	for idx, r := range newest {
		for _, n := range r.Numbers {
			if n < 1 || n > MaxNumber {
				continue
			}
			totals[n-1]++
			if idx < RecentDraws {
				recents[n-1]++
			}
			intervals[n-1] = min(intervals[n-1], idx)
		}
	}

	carryRates := carryoverRates(newest)
	averageRate := 0.0
	for _, r := range carryRates {
		averageRate += r
	}
	averageRate /= MaxNumber

	var latest DrawRecord
	if len(newest) > 0 {
		latest = newest[0]
	}

	frequency := normalize(totals)
	trend := normalize(recents)
	interval := normalize(intervals)
	for i := range scores {
		s := &scores[i]
		s.TotalAppearances = totals[i]
		s.RecentAppearances = recents[i]
		s.DrawsSinceLast = intervals[i]
		s.Frequency = frequency[i]
		s.Trend = trend[i]
		s.Interval = interval[i]
		s.Balance = 0.5
		s.CarriedOver = len(newest) > 0 && contains(latest.Numbers, s.Number)
		if s.CarriedOver && averageRate > 0 {
			s.Carryover = math.Min(1, 0.7*carryRates[i]/averageRate)
		}
		s.total()
	}

	selected := selectBalanced(scores)
	rebalance(scores, selected)
	for i := range scores {
		scores[i].total()
	}

	sort.Ints(selected)
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Total > scores[j].Total
	})

	return Prediction{
		Recommended: selected,
		Scores:      scores,
		Latest:      latest,
		TotalDraws:  len(records),
		RecentDraws: min(RecentDraws, len(records)),
	}
}

// carryoverRates returns, per number, how often it appeared again in the
// draw right after one it appeared in. newest must be sorted newest first.
func carryoverRates(newest []DrawRecord) []float64 {
	carried := make([]int, MaxNumber)
	appeared := make([]int, MaxNumber)
	for i := 0; i+1 < len(newest); i++ {
		prev := newest[i+1]
		for _, n := range prev.Numbers {
			if n < 1 || n > MaxNumber {
				continue
			}
			appeared[n-1]++
			if contains(newest[i].Numbers, n) {
				carried[n-1]++
			}
		}
	}

	rates := make([]float64, MaxNumber)
	for i := range rates {
		if appeared[i] > 0 {
			rates[i] = float64(carried[i]) / float64(appeared[i])
		}
	}
	return rates
}

func isLow(n int) bool {
	return n <= LowNumberMax
}

// selectBalanced picks the best numbers by total without letting any of
// even, odd, low or high exceed 4, then fills up from the best remaining.
func selectBalanced(scores []NumberScore) []int {
	candidates := make([]int, len(scores))
	for i, s := range scores {
		candidates[i] = s.Number
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i]-1].Total > scores[candidates[j]-1].Total
	})

	var selected []int
	picked := map[int]bool{}
	even, odd, low, high := 0, 0, 0, 0
	for _, n := range candidates {
		if len(selected) >= PickCount {
			break
		}
		if n%2 == 0 && even >= 4 || n%2 == 1 && odd >= 4 {
			continue
		}
		if isLow(n) && low >= 4 || !isLow(n) && high >= 4 {
			continue
		}

		selected = append(selected, n)
		picked[n] = true
		if n%2 == 0 {
			even++
		} else {
			odd++
		}
		if isLow(n) {
			low++
		} else {
			high++
		}
	}

	for _, n := range candidates {
		if len(selected) >= PickCount {
			break
		}
		if !picked[n] {
			selected = append(selected, n)
			picked[n] = true
		}
	}
	return selected
}

// rebalance favors the parity and range the selection holds 3 or fewer of.
func rebalance(scores []NumberScore, selected []int) {
	even, low := 0, 0
	for _, n := range selected {
		if n%2 == 0 {
			even++
		}
		if isLow(n) {
			low++
		}
	}
	odd, high := len(selected)-even, len(selected)-low

	for i := range scores {
		n := scores[i].Number
		bonus := 0.0
		if n%2 == 0 && even <= 3 || n%2 == 1 && odd <= 3 {
			bonus += 0.25
		}
		if isLow(n) && low <= 3 || !isLow(n) && high <= 3 {
			bonus += 0.25
		}
		scores[i].Balance = math.Min(1, 0.5+bonus)
	}
}

type scoreComponent struct {
	key   string
	value float64
}

var singleReasons = map[string]string{
	"frequency": "全期間での出現率が高く、安定した数字",
	"trend":     "直近50回で特に勢いがある注目数字",
	"interval":  "しばらく出ていないため、そろそろ出る可能性",
	"balance":   "バランスが非常に良く、総合力が高い数字",
	"carryover": "前回も出現しており、引き継がれやすい傾向の数字",
}

// pairReasons is keyed by the two strongest components in a fixed order.
var pairReasons = map[[2]string]string{
	{"frequency", "trend"}:     "直近50回で勢いがあり、全期間でも安定して出現",
	{"interval", "trend"}:      "直近の勢いがあり、出目間隔的にも好タイミング",
	{"frequency", "interval"}:  "安定した出現率で、出目間隔的にも期待大",
	{"balance", "frequency"}:   "全期間で安定しており、バランスにも優れた数字",
	{"balance", "trend"}:       "直近の勢いとバランスを兼ね備えた数字",
	{"balance", "interval"}:    "出目間隔とバランスの両面で期待できる数字",
	{"carryover", "trend"}:     "前回からの引き継ぎ傾向が強く、直近でも勢いあり",
	{"carryover", "frequency"}: "前回から引き継がれやすく、全期間でも安定した数字",
	{"carryover", "interval"}:  "前回からの引き継ぎと出目間隔の両面で期待大",
	{"balance", "carryover"}:   "前回からの引き継ぎ傾向とバランスを兼備",
}

// Reason describes in one sentence what the number scored best on. When the
// two strongest components are within 0.15 of each other both are named.
func (s NumberScore) Reason() string {
	components := []scoreComponent{
		{"frequency", s.Frequency},
		{"trend", s.Trend},
		{"interval", s.Interval},
		{"balance", s.Balance},
		{"carryover", s.Carryover},
	}
	sort.SliceStable(components, func(i, j int) bool {
		return components[i].value > components[j].value
	})

	top, second := components[0], components[1]
	if top.value-second.value < 0.15 {
		pair := [2]string{top.key, second.key}
		if pair[0] > pair[1] {
			pair[0], pair[1] = pair[1], pair[0]
		}
		if reason, ok := pairReasons[pair]; ok {
			return reason
		}
	}
	return singleReasons[top.key]
}

func round3(v float64) float64 {
	return math.RoundToEven(v*1000) / 1000
}

// PredictionDocument is the prediction.json read by the web client.
type PredictionDocument struct {
	LastUpdated    string                 `json:"lastUpdated"`
	TotalDrawings  int                    `json:"totalDrawings"`
	RecentDraws    int                    `json:"recentDraws"`
	LatestDrawing  LatestDrawingDocument  `json:"latestDrawing"`
	Recommendation RecommendationDocument `json:"recommendation"`
	AllScores      []ScoreDocument        `json:"allScores"`
}

type LatestDrawingDocument struct {
	Round   int    `json:"round"`
	Date    string `json:"date"`
	Numbers []int  `json:"numbers"`
	Bonus   int    `json:"bonus"`
}

type RecommendationDocument struct {
	Numbers []int `json:"numbers"`
	// Scores is keyed by the recommended number.
	Scores map[string]RecommendedScoreDocument `json:"scores"`
}

type RecommendedScoreDocument struct {
	Total     float64 `json:"total"`
	Frequency float64 `json:"frequency"`
	Trend     float64 `json:"trend"`
	Interval  float64 `json:"interval"`
	Balance   float64 `json:"balance"`
	Carryover float64 `json:"carryover"`
	Reason    string  `json:"reason"`
}

type ScoreDocument struct {
	Number                   int     `json:"number"`
	TotalScore               float64 `json:"totalScore"`
	FrequencyScore           float64 `json:"frequencyScore"`
	TrendScore               float64 `json:"trendScore"`
	IntervalScore            float64 `json:"intervalScore"`
	BalanceScore             float64 `json:"balanceScore"`
	CarryoverScore           float64 `json:"carryoverScore"`
	TotalAppearances         int     `json:"totalAppearances"`
	RecentAppearances        int     `json:"recentAppearances"`
	DrawsSinceLastAppearance int     `json:"drawsSinceLastAppearance"`
	IsCarriedOver            bool    `json:"isCarriedOver"`
}

// NewPredictionDocument renders p with scores rounded to 3 decimals, the
// timestamp is taken from clock in its location.
func NewPredictionDocument(p Prediction, clock chrono.API) PredictionDocument {
	now := clock.Now().In(clock.Location())
	latest := p.Latest

	doc := PredictionDocument{
		LastUpdated:   now.Format("2006-01-02T15:04:05-07:00"),
		TotalDrawings: p.TotalDraws,
		RecentDraws:   p.RecentDraws,
		LatestDrawing: LatestDrawingDocument{
			Round:   latest.DrawID,
			Date:    fmt.Sprintf("%04d-%02d-%02d", latest.Date.Year, latest.Date.Month, latest.Date.Day),
			Numbers: latest.Numbers[:],
			Bonus:   latest.Bonus,
		},
		Recommendation: RecommendationDocument{
			Numbers: p.Recommended,
			Scores:  map[string]RecommendedScoreDocument{},
		},
		AllScores: make([]ScoreDocument, 0, len(p.Scores)),
	}

	for _, n := range p.Recommended {
		s, _ := p.Score(n)
		doc.Recommendation.Scores[strconv.Itoa(n)] = RecommendedScoreDocument{
			Total:     round3(s.Total),
			Frequency: round3(s.Frequency),
			Trend:     round3(s.Trend),
			Interval:  round3(s.Interval),
			Balance:   round3(s.Balance),
			Carryover: round3(s.Carryover),
			Reason:    s.Reason(),
		}
	}
	for _, s := range p.Scores {
		doc.AllScores = append(doc.AllScores, ScoreDocument{
			Number:                   s.Number,
			TotalScore:               round3(s.Total),
			FrequencyScore:           round3(s.Frequency),
			TrendScore:               round3(s.Trend),
			IntervalScore:            round3(s.Interval),
			BalanceScore:             round3(s.Balance),
			CarryoverScore:           round3(s.Carryover),
			TotalAppearances:         s.TotalAppearances,
			RecentAppearances:        s.RecentAppearances,
			DrawsSinceLastAppearance: s.DrawsSinceLast,
			IsCarriedOver:            s.CarriedOver,
		})
	}
	return doc
}

// WritePrediction replaces the file at path with doc as indented json.
func WritePrediction(path string, doc PredictionDocument) error {
	contents, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, append(contents, '\n'))
}
