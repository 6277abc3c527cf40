package commands

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"loto6-backend/internal/components/telemetry"
	"loto6-backend/internal/loto6"
	"loto6-backend/lib/scrapers/kyo"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func TestReadConfigDefaults(t *testing.T) {
	cfg, err := readConfig(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	if diff := cmp.Diff(defaultConfig(), cfg); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, 30*time.Minute, cfg.RetryInterval())
	require.Equal(t, kyo.DefaultTimeout, cfg.Timeout())
}

func TestReadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	err := os.WriteFile(path, []byte(`{
		// only the keys that change
		max_attempts: 5,
		dataset: "data/LOTO6_ALL.csv",
	}`), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{database: "loto6.db"}`), 0644)
	require.NoError(t, err)

	cfg, err := readConfig(path)
	require.NoError(t, err)

	expected := defaultConfig()
	expected.MaxAttempts = 5
	expected.Dataset = "data/LOTO6_ALL.csv"
	expected.Database = "loto6.db"
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, "other.csv", cfg.datasetArg([]string{"other.csv"}))
	require.Equal(t, "data/LOTO6_ALL.csv", cfg.datasetArg(nil))
}

func TestRenderStatistics(t *testing.T) {
	records := []loto6.DrawRecord{
		{DrawID: 1, Numbers: [6]int{1, 2, 3, 4, 5, 6}},
		{DrawID: 2, Numbers: [6]int{2, 8, 10, 13, 27, 30}},
	}

	var out bytes.Buffer
	renderStatistics(&out, loto6.Analyze(records))

	// go-pretty upper-cases headers and footers
	rendered := strings.ToLower(out.String())
	require.Contains(t, rendered, "2 draws")
	require.Contains(t, rendered, "even / odd")
	require.Contains(t, rendered, "low (1-21) / high")
	require.Contains(t, rendered, "consecutive pairs")
	require.Contains(t, rendered, "sum of numbers")
	require.Contains(t, rendered, "min 21 / max 90")
	require.Contains(t, rendered, "0 pairs *")
}

func TestRenderPrediction(t *testing.T) {
	records := []loto6.DrawRecord{
		{DrawID: 1, Numbers: [6]int{1, 2, 3, 4, 5, 6}},
		{DrawID: 2, Numbers: [6]int{2, 8, 10, 13, 27, 30}},
	}

	var out bytes.Buffer
	renderPrediction(&out, loto6.Predict(records))

	rendered := strings.ToLower(out.String())
	require.Contains(t, rendered, "recommendation after draw 2")
	require.Contains(t, rendered, "reason")
}

func feedServer(t *testing.T, rows ...string) *httptest.Server {
	text := "開催回,日付,第1数字,第2数字,第3数字,第4数字,第5数字,第6数字,ボーナス数字,1等口数,2等口数,3等口数,4等口数,5等口数,1等賞金,2等賞金,3等賞金,4等賞金,5等賞金,キャリーオーバー\r\n" +
		strings.Join(rows, "\r\n") + "\r\n"
	body, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=Shift_JIS")
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunUpdateWithUnopenableDatabase(t *testing.T) {
	server := feedServer(
		t,
		"1,2000/10/5,1,5,12,23,34,43,7,0,3,180,8765,140000,0,12345600,678900,9100,1000,0",
		"2,2000/10/12,1,9,16,20,21,43,5,0,1,135,4853,83700,0,100000000,525700,10500,1000,0",
	)

	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.SourceUrl = server.URL
	cfg.MaxAttempts = 1
	cfg.RetryIntervalSeconds = 1
	cfg.Dataset = filepath.Join(dir, "LOTO6_ALL.csv")
	// a directory cannot be opened as a sqlite database
	cfg.Database = t.TempDir()

	outputs := filepath.Join(dir, "outputs")
	tel := telemetry.NewRecorder()
	code := runUpdate(context.Background(), cfg, loto6.FileSignal{Path: outputs, Tel: tel}, tel)
	require.Equal(t, 0, code)

	contents, err := os.ReadFile(outputs)
	require.NoError(t, err)
	require.Equal(t, "updated=true\nlatest_draw=2\n", string(contents))

	id, err := loto6.LatestDrawID(cfg.Dataset)
	require.NoError(t, err)
	require.Equal(t, 2, id)

	var ids []string
	for _, r := range tel.Reports("warning") {
		ids = append(ids, r.Id)
	}
	require.Contains(t, ids, report_update_open_mirror)
}

func TestRunUpdateFeedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.SourceUrl = server.URL
	cfg.MaxAttempts = 1
	cfg.Dataset = filepath.Join(dir, "LOTO6_ALL.csv")

	outputs := filepath.Join(dir, "outputs")
	tel := telemetry.NewRecorder()
	code := runUpdate(context.Background(), cfg, loto6.FileSignal{Path: outputs, Tel: tel}, tel)
	require.Equal(t, 1, code)

	contents, err := os.ReadFile(outputs)
	require.NoError(t, err)
	require.Equal(t, "updated=false\n", string(contents))
}

func TestEmitFailure(t *testing.T) {
	outputs := filepath.Join(t.TempDir(), "outputs")
	tel := telemetry.NewRecorder()

	code := emitFailure(loto6.FileSignal{Path: outputs, Tel: tel}, "failed to read config", errors.New("bad json5"))
	require.Equal(t, 1, code)

	contents, err := os.ReadFile(outputs)
	require.NoError(t, err)
	require.Equal(t, "updated=false\n", string(contents))
}
