package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"slapred/bonusscraper/internal/bonus"
	"slapred/bonusscraper/internal/downline"
	"slapred/bonusscraper/logger"
)

// CSVSink appends rows to flat CSV files, writing a header row only
// when a file is newly created or empty. Files are opened per append
// and never held across site boundaries.
type CSVSink struct {
	bonusPath    string
	downlinePath string
	log          *logger.Logger
}

// NewCSVSink creates a CSV sink for the given output paths.
func NewCSVSink(bonusPath, downlinePath string) *CSVSink {
	return &CSVSink{
		bonusPath:    bonusPath,
		downlinePath: downlinePath,
		log:          logger.ForSink("csv"),
	}
}

// WriteBonuses appends bonus rows to the bonus CSV.
func (s *CSVSink) WriteBonuses(rows []bonus.Bonus) error {
	records := make([][]string, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].CSVRecord())
	}
	if err := s.appendRecords(s.bonusPath, bonus.CSVHeader(), records); err != nil {
		return err
	}
	s.log.Debug().Str("file", s.bonusPath).Int("rows", len(rows)).Msg("Bonus rows appended")
	return nil
}

// AppendDownlines appends downline rows to the downline CSV.
func (s *CSVSink) AppendDownlines(rows []downline.Downline) error {
	records := make([][]string, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].CSVRecord())
	}
	if err := s.appendRecords(s.downlinePath, downline.CSVHeader(), records); err != nil {
		return err
	}
	s.log.Debug().Str("file", s.downlinePath).Int("rows", len(rows)).Msg("Downline rows appended")
	return nil
}

// SeedDownlineKeys reads the existing downline CSV once and returns the
// uniqueness keys of every row already written. A missing or empty file
// yields an empty set.
func (s *CSVSink) SeedDownlineKeys() (map[string]struct{}, error) {
	keys := make(map[string]struct{})

	f, err := os.Open(s.downlinePath)
	if err != nil {
		if os.IsNotExist(err) {
			return keys, nil
		}
		return keys, fmt.Errorf("failed to open downline CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return keys, fmt.Errorf("failed to read downline CSV: %w", err)
	}
	if len(records) < 2 {
		return keys, nil
	}

	// Map columns by header so the key survives column reordering.
	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, field := range downline.CSVHeader() {
		if _, ok := col[field]; !ok {
			s.log.Warn().Str("file", s.downlinePath).Str("missing", field).Msg("Downline CSV header incomplete, starting empty")
			return keys, nil
		}
	}

	for _, rec := range records[1:] {
		if len(rec) < len(records[0]) {
			s.log.Debug().Str("file", s.downlinePath).Msg("Skipping short row in downline CSV")
			continue
		}
		amount, err := strconv.ParseFloat(rec[col["amount"]], 64)
		if err != nil {
			amount = 0
		}
		keys[downline.MakeKey(
			rec[col["url"]],
			rec[col["id"]],
			rec[col["name"]],
			rec[col["count"]],
			amount,
			rec[col["register_date_time"]],
		)] = struct{}{}
	}
	return keys, nil
}

// appendRecords appends records to path, writing header first iff the
// file is new or empty.
func (s *CSVSink) appendRecords(path string, header []string, records [][]string) error {
	if len(records) == 0 {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	needHeader := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needHeader = false
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if needHeader {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	writer.Flush()
	return writer.Error()
}
