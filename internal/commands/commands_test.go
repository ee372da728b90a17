package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"TickerScope/internal/model"
)

// run executes the root command with a fresh flag state and a config that
// points the recorder at a temporary database.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	analyzeSave, analyzeJSON, analyzeMock = false, false, false
	cfgFile, logLevel, verbose = "", "", false
	historyLimit = 20

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "database:\n  sqlite_path: \"" + dbPath + "\"\nlogging:\n  level: error\n"
	if err := os.WriteFile(cfg, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyze_MockReport(t *testing.T) {
	db := filepath.Join(t.TempDir(), "a.db")
	out, err := run(t, db, "analyze", "msft", "--mock")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{"--- Technical Data for MSFT ---", "Latest Indicators:", "RSI_14", "SMA_50", "SMA_200"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRoot_DefaultsToConfiguredTicker(t *testing.T) {
	db := filepath.Join(t.TempDir(), "a.db")
	out, err := run(t, db, "--mock")
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	if !strings.Contains(out, "--- Technical Data for AAPL ---") {
		t.Errorf("expected AAPL report, got:\n%s", out)
	}
}

func TestAnalyze_JSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "a.db")
	out, err := run(t, db, "analyze", "AAPL", "--mock", "--json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var s model.Summary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if s.Symbol != "AAPL" || s.Bars != 252 {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestSaveThenHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "a.db")
	if _, err := run(t, db, "analyze", "NVDA", "--mock", "--save"); err != nil {
		t.Fatalf("analyze --save: %v", err)
	}

	out, err := run(t, db, "history", "nvda")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "NVDA") {
		t.Errorf("expected NVDA in history:\n%s", out)
	}

	out, err = run(t, db, "history", "TSLA")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No saved analyses.") {
		t.Errorf("expected empty history for TSLA:\n%s", out)
	}
}

func TestSave_RequiresDatabase(t *testing.T) {
	t.Setenv("SQLITE_PATH", "")
	out, err := run(t, "", "analyze", "AAPL", "--mock", "--save")
	if err == nil {
		t.Fatalf("expected --save without a database to fail, got output:\n%s", out)
	}
}

func TestSave_CreatesDatabaseDirectory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "data", "tickerscope.db")
	if _, err := run(t, db, "analyze", "AAPL", "--mock", "--save"); err != nil {
		t.Fatalf("analyze --save: %v", err)
	}
	out, err := run(t, db, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "AAPL") {
		t.Errorf("expected the saved analysis in history:\n%s", out)
	}
}

func TestHistoryDelete_UnknownID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "a.db")
	if _, err := run(t, db, "history", "delete", "missing"); err == nil {
		t.Error("expected an error for an unknown id")
	}
}
