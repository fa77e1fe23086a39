package climate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Thresholds are the tunable alert rules. Boundaries are inclusive.
type Thresholds struct {
	FrostC        float64  `json:"frost_c"`
	HeatwaveC     float64  `json:"heatwave_c"`
	StormKeywords []string `json:"storm_keywords"`
}

// Validate reports thresholds that would flag the same day as both frost and heat.
func (t Thresholds) Validate() error {
	if t.FrostC >= t.HeatwaveC {
		return fmt.Errorf("frost threshold %g must be below heatwave threshold %g", t.FrostC, t.HeatwaveC)
	}
	return nil
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		FrostC:        2,
		HeatwaveC:     35,
		StormKeywords: []string{"storm", "thunderstorm", "hurricane", "tornado", "heavy rain"},
	}
}

// LoadThresholds overlays rules from a CSV or XLSX file onto base.
// Both formats carry two columns, a rule name and a value; storm keywords
// may repeat and replace the base list when present.
func LoadThresholds(path string, base Thresholds) (Thresholds, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return base, fmt.Errorf("unsupported rules file %q", path)
	}
	if err != nil {
		return base, err
	}
	return applyRows(rows, base)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer x.Close()
	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return x.GetRows(sheets[0])
}

func norm(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\uFEFF") // BOM
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

func applyRows(rows [][]string, base Thresholds) (Thresholds, error) {
	if len(rows) == 0 {
		return base, errors.New("rules file is empty")
	}
	hmap := map[string]int{}
	for i, h := range rows[0] {
		hmap[norm(h)] = i
	}
	findAny := func(keys ...string) int {
		for _, k := range keys {
			if idx, ok := hmap[norm(k)]; ok {
				return idx
			}
		}
		return -1
	}
	cRule := findAny("Rule", "name", "key")
	cVal := findAny("Value", "threshold", "keyword")
	if cRule == -1 || cVal == -1 {
		return base, fmt.Errorf("rules file missing required columns. Found headers: %v\nNeed: Rule, Value", rows[0])
	}

	out := base
	var keywords []string
	for n, rec := range rows[1:] {
		get := func(idx int) string {
			if idx < 0 || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		rule, val := norm(get(cRule)), get(cVal)
		if rule == "" || val == "" {
			continue
		}
		switch rule {
		case "frost", "frostc", "frostthresholdc", "frosttemp":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return base, fmt.Errorf("row %d: frost threshold %q: %w", n+2, val, err)
			}
			out.FrostC = v
		case "heatwave", "heatwavec", "heatwavethresholdc", "heatwavetemp":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return base, fmt.Errorf("row %d: heatwave threshold %q: %w", n+2, val, err)
			}
			out.HeatwaveC = v
		case "storm", "stormkeyword", "keyword":
			keywords = append(keywords, val)
		}
	}
	if len(keywords) > 0 {
		out.StormKeywords = keywords
	}
	if err := out.Validate(); err != nil {
		return base, err
	}
	return out, nil
}
