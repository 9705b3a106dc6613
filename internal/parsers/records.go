// Package parsers reads record CSV files into the engine's Record
// model.
//
// The parser is deliberately forgiving: every matchable field except
// the record id is optional, unknown columns are ignored, and a
// malformed line is skipped with a logged warning instead of failing
// the whole file. Real-world exports are messy and a single bad row
// must not block a reconciliation run.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"transaction-matching-engine/internal/models"
	"transaction-matching-engine/pkg/errors"
	"transaction-matching-engine/pkg/logger"
)

// RecordParserConfig controls column mapping and CSV dialect.
type RecordParserConfig struct {
	IDColumn          string            `json:"id_column"`
	AmountColumn      string            `json:"amount_column"`
	DateColumn        string            `json:"date_column"`
	DescriptionColumn string            `json:"description_column"`
	ExternalIDColumn  string            `json:"external_id_column"`
	MetadataColumn    string            `json:"metadata_column"`
	HasHeader         bool              `json:"has_header"`
	Delimiter         rune              `json:"delimiter"`
	ColumnAliases     map[string]string `json:"column_aliases"`
}

// DefaultRecordParserConfig returns the default column mapping
func DefaultRecordParserConfig() *RecordParserConfig {
	return &RecordParserConfig{
		IDColumn:          "id",
		AmountColumn:      "amount",
		DateColumn:        "date",
		DescriptionColumn: "description",
		ExternalIDColumn:  "external_id",
		MetadataColumn:    "metadata",
		HasHeader:         true,
		Delimiter:         ',',
		ColumnAliases: map[string]string{
			"record_id":        "id",
			"trx_id":           "id",
			"transaction_id":   "id",
			"amt":              "amount",
			"value":            "amount",
			"transaction_date": "date",
			"posting_date":     "date",
			"desc":             "description",
			"narrative":        "description",
			"memo":             "description",
			"reference":        "external_id",
			"ref":              "external_id",
			"ext_id":           "external_id",
		},
	}
}

// ParseStats summarizes a parsing run
type ParseStats struct {
	TotalLines   int `json:"total_lines"`
	ParsedCount  int `json:"parsed_count"`
	SkippedCount int `json:"skipped_count"`
}

// RecordParser parses record CSV files
type RecordParser struct {
	config *RecordParserConfig
	log    logger.Logger
}

// NewRecordParser creates a parser with the given configuration
func NewRecordParser(config *RecordParserConfig, log logger.Logger) *RecordParser {
	if config == nil {
		config = DefaultRecordParserConfig()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RecordParser{
		config: config,
		log:    log.WithComponent("record-parser"),
	}
}

// ParseFile reads records from a CSV file
func (p *RecordParser) ParseFile(path string) ([]*models.Record, *ParseStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidFormat,
			fmt.Sprintf("cannot open record file %s", path))
	}
	defer f.Close()

	return p.Parse(f, path)
}

// Parse reads records from a CSV stream. Malformed lines are skipped
// and counted in the returned stats.
func (p *RecordParser) Parse(r io.Reader, name string) ([]*models.Record, *ParseStats, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	stats := &ParseStats{}
	var records []*models.Record
	var columns map[string]int

	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			stats.TotalLines++
			stats.SkippedCount++
			p.log.WithError(err).WithFields(logger.Fields{"file": name, "line": line}).
				Warn("skipping unreadable CSV line")
			continue
		}

		if columns == nil {
			if p.config.HasHeader {
				columns, err = p.mapColumns(row, name)
				if err != nil {
					return nil, nil, err
				}
				continue
			}
			columns = p.positionalColumns()
		}

		stats.TotalLines++
		record, err := p.parseRow(row, columns)
		if err != nil {
			stats.SkippedCount++
			p.log.WithError(err).WithFields(logger.Fields{"file": name, "line": line}).
				Warn("skipping malformed record")
			continue
		}

		records = append(records, record)
		stats.ParsedCount++
	}

	return records, stats, nil
}

// mapColumns resolves header names (through aliases) to indexes. Only
// the id column is mandatory.
func (p *RecordParser) mapColumns(header []string, file string) (map[string]int, error) {
	columns := make(map[string]int)

	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if alias, ok := p.config.ColumnAliases[name]; ok {
			name = alias
		}

		switch name {
		case p.config.IDColumn:
			columns["id"] = i
		case p.config.AmountColumn:
			columns["amount"] = i
		case p.config.DateColumn:
			columns["date"] = i
		case p.config.DescriptionColumn:
			columns["description"] = i
		case p.config.ExternalIDColumn:
			columns["external_id"] = i
		case p.config.MetadataColumn:
			columns["metadata"] = i
		}
	}

	if _, ok := columns["id"]; !ok {
		return nil, errors.ParseError(errors.CodeMissingColumn, file, 1, p.config.IDColumn, nil)
	}
	return columns, nil
}

// positionalColumns assumes the default column order for headerless
// files.
func (p *RecordParser) positionalColumns() map[string]int {
	return map[string]int{
		"id":          0,
		"amount":      1,
		"date":        2,
		"description": 3,
		"external_id": 4,
		"metadata":    5,
	}
}

func (p *RecordParser) parseRow(row []string, columns map[string]int) (*models.Record, error) {
	field := func(name string) (string, bool) {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return "", false
		}
		value := strings.TrimSpace(row[idx])
		return value, value != ""
	}

	id, ok := field("id")
	if !ok {
		return nil, fmt.Errorf("record id is empty")
	}

	record := models.NewRecord(id)

	if raw, ok := field("amount"); ok {
		cleaned := strings.ReplaceAll(strings.ReplaceAll(raw, "$", ""), ",", "")
		amount, err := decimal.NewFromString(cleaned)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", raw, err)
		}
		record.WithAmount(amount)
	}

	if raw, ok := field("date"); ok {
		date, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", raw, err)
		}
		record.WithDate(date)
	}

	if raw, ok := field("description"); ok {
		record.WithDescription(raw)
	}

	if raw, ok := field("external_id"); ok {
		record.WithExternalID(raw)
	}

	if raw, ok := field("metadata"); ok {
		record.WithMetadata(models.ParseMetadataJSON([]byte(raw)))
	}

	return record, nil
}

// dateFormats are the accepted date layouts, tried in order.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
