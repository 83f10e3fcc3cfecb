package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column names of the source export. The range column appears under two
// names across revisions of the dataset, so both are accepted.
var csvAliases = map[string]string{
	"brand":                 "brand",
	"model":                 "model",
	"estimated_us_value":    "price",
	"price":                 "price",
	"range":                 "range",
	"km_of_range":           "range",
	"0-100":                 "accel",
	"top_speed":             "top_speed",
	"battery":               "battery",
	"efficiency":            "efficiency",
	"number_of_seats":       "seats",
	"seats":                 "seats",
	"towing_capacity_in_kg": "towing",
	"towing_capacity_kg":    "towing",
}

// LoadCSV reads the car dataset from a delimited file and returns the
// normalized table.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses CSV content with a header row into a table.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Map column index -> canonical field name.
	cols := make(map[int]string, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := csvAliases[key]; ok {
			cols[i] = canonical
		}
	}
	if !hasColumns(cols, "brand", "model") {
		return nil, fmt.Errorf("dataset is missing brand/model columns")
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		var rec Record
		for i, field := range cols {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			switch field {
			case "brand":
				rec.Brand = cell
			case "model":
				rec.Model = cell
			case "price":
				rec.PriceUSD = parseFloat(cell)
			case "range":
				rec.RangeKM = parseFloat(cell)
			case "accel":
				rec.Accel0To100 = parseFloat(cell)
			case "top_speed":
				rec.TopSpeedKMH = parseFloat(cell)
			case "battery":
				rec.BatteryKWH = parseFloat(cell)
			case "efficiency":
				rec.EfficiencyWhKM = parseFloat(cell)
			case "seats":
				rec.Seats = int(parseFloat(cell))
			case "towing":
				rec.TowingKG = parseFloat(cell)
			}
		}
		records = append(records, rec)
	}

	return NewTable(records), nil
}

func hasColumns(cols map[int]string, required ...string) bool {
	present := make(map[string]bool, len(cols))
	for _, name := range cols {
		present[name] = true
	}
	for _, name := range required {
		if !present[name] {
			return false
		}
	}
	return true
}

// parseFloat treats unparseable or missing cells as zero, which the
// record model reads as "unknown".
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
