package market

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CSVSource loads bar history from per-symbol CSV files.
//
// Files are named <symbol>_<timeframe>_bars.csv (lower case) and looked up in
// Dir, then Dir/<timeframe>. The header must include datetime, open, high,
// low, close and volume columns in any order. Rows without a parseable close
// are dropped before replay.
type CSVSource struct {
	Dir       string
	Timeframe string // bar width label, e.g. "5m"
}

func NewCSVSource(dir, timeframe string) *CSVSource {
	return &CSVSource{
		Dir:       dir,
		Timeframe: strings.ToLower(strings.TrimSpace(timeframe)),
	}
}

var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func (s *CSVSource) resolvePath(symbol string) (string, error) {
	filename := fmt.Sprintf("%s_%s_bars.csv", strings.ToLower(symbol), s.Timeframe)
	candidates := []string{
		filepath.Join(s.Dir, filename),
		filepath.Join(s.Dir, s.Timeframe, filename),
		filepath.Join(s.Dir, strings.ToUpper(s.Timeframe), filename),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("bar data for %q not found (checked %s)", symbol, strings.Join(candidates, ", "))
}

// LoadSymbol reads one symbol's bars, sorted by time.
func (s *CSVSource) LoadSymbol(symbol string) ([]Bar, error) {
	path, err := s.resolvePath(symbol)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"datetime", "open", "high", "low", "close", "volume"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, required)
		}
	}

	symbol = strings.ToUpper(symbol)
	bars := make([]Bar, 0, len(rows)-1)
	for _, row := range rows[1:] {
		ts, err := parseTime(field(row, col["datetime"]))
		if err != nil {
			continue
		}
		closePx, err := strconv.ParseFloat(field(row, col["close"]), 64)
		if err != nil {
			// Bars with a missing close are excluded before replay.
			continue
		}
		bars = append(bars, Bar{
			Symbol: symbol,
			Time:   ts,
			Open:   parseFloat(field(row, col["open"])),
			High:   parseFloat(field(row, col["high"])),
			Low:    parseFloat(field(row, col["low"])),
			Close:  closePx,
			Volume: parseFloat(field(row, col["volume"])),
		})
	}

	SortBars(bars)
	return bars, nil
}

// LoadSymbols merges all available symbols into one time-ordered stream.
// Symbols without data are skipped; ErrNoData is returned when nothing loads.
func (s *CSVSource) LoadSymbols(ctx context.Context, symbols []string) ([]Bar, error) {
	var merged []Bar
	loaded := 0
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bars, err := s.LoadSymbol(symbol)
		if err != nil {
			continue
		}
		merged = append(merged, bars...)
		loaded++
	}
	if loaded == 0 || len(merged) == 0 {
		return nil, fmt.Errorf("load symbols %v: %w", symbols, ErrNoData)
	}
	SortBars(merged)
	return merged, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}
