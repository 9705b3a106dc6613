package parsers

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"transaction-matching-engine/internal/models"
	"transaction-matching-engine/pkg/errors"
)

func parseString(t *testing.T, config *RecordParserConfig, input string) ([]*models.Record, *ParseStats) {
	t.Helper()
	parser := NewRecordParser(config, nil)
	records, stats, err := parser.Parse(strings.NewReader(input), "test.csv")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return records, stats
}

func TestParseFullRecords(t *testing.T) {
	input := `id,amount,date,description,external_id
bank-001,1250.00,2026-03-15,wire transfer acme,INV-42
bank-002,99.90,2026-03-16,card payment,
`
	records, stats := parseString(t, nil, input)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if stats.TotalLines != 2 || stats.ParsedCount != 2 || stats.SkippedCount != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	first := records[0]
	if first.ID != "bank-001" {
		t.Errorf("unexpected id: %s", first.ID)
	}
	if first.Amount == nil || !first.Amount.Equal(decimal.NewFromFloat(1250.00)) {
		t.Errorf("unexpected amount: %v", first.Amount)
	}
	if first.Date == nil || first.Date.Format("2006-01-02") != "2026-03-15" {
		t.Errorf("unexpected date: %v", first.Date)
	}
	if first.Description == nil || *first.Description != "wire transfer acme" {
		t.Errorf("unexpected description: %v", first.Description)
	}
	if first.ExternalID == nil || *first.ExternalID != "INV-42" {
		t.Errorf("unexpected external id: %v", first.ExternalID)
	}

	// Empty cells stay nil rather than becoming empty strings.
	second := records[1]
	if second.ExternalID != nil {
		t.Errorf("expected nil external id, got %q", *second.ExternalID)
	}
}

func TestParseHeaderAliases(t *testing.T) {
	input := `trx_id,amt,posting_date,memo,reference
t-1,42.00,2026-01-05,utility bill,REF-9
`
	records, _ := parseString(t, nil, input)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.ID != "t-1" {
		t.Errorf("trx_id alias not mapped: %s", r.ID)
	}
	if r.Amount == nil || !r.Amount.Equal(decimal.NewFromFloat(42.00)) {
		t.Errorf("amt alias not mapped: %v", r.Amount)
	}
	if r.Description == nil || *r.Description != "utility bill" {
		t.Errorf("memo alias not mapped: %v", r.Description)
	}
	if r.ExternalID == nil || *r.ExternalID != "REF-9" {
		t.Errorf("reference alias not mapped: %v", r.ExternalID)
	}
}

func TestParseMissingIDColumn(t *testing.T) {
	input := `amount,date
10.00,2026-03-15
`
	parser := NewRecordParser(nil, nil)
	_, _, err := parser.Parse(strings.NewReader(input), "test.csv")
	if err == nil {
		t.Fatal("expected error for missing id column")
	}
	if !errors.IsCategory(err, errors.CategoryParse) {
		t.Errorf("expected parse category, got %v", err)
	}
}

func TestParseSkipsMalformedRows(t *testing.T) {
	input := `id,amount,date
r-1,10.00,2026-03-15
r-2,not-a-number,2026-03-15
r-3,20.00,not-a-date
,30.00,2026-03-15
r-5,40.00,2026-03-16
`
	records, stats := parseString(t, nil, input)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "r-1" || records[1].ID != "r-5" {
		t.Errorf("unexpected surviving records: %s, %s", records[0].ID, records[1].ID)
	}
	if stats.TotalLines != 5 || stats.ParsedCount != 2 || stats.SkippedCount != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestParseCurrencySymbolsAndThousands(t *testing.T) {
	input := `id,amount
r-1,"$1,250.00"
`
	records, _ := parseString(t, nil, input)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !records[0].Amount.Equal(decimal.NewFromFloat(1250.00)) {
		t.Errorf("unexpected amount: %v", records[0].Amount)
	}
}

func TestParseDateFormats(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"2026-03-15", "2026-03-15"},
		{"2026-03-15T10:30:00Z", "2026-03-15"},
		{"2026-03-15 10:30:00", "2026-03-15"},
		{"03/15/2026", "2026-03-15"},
		{"2026/03/15", "2026-03-15"},
	}

	for _, tc := range cases {
		got, err := parseDate(tc.raw)
		if err != nil {
			t.Errorf("parseDate(%q) failed: %v", tc.raw, err)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("parseDate(%q) = %s, want %s", tc.raw, got.Format("2006-01-02"), tc.want)
		}
	}

	if _, err := parseDate("15th of March"); err == nil {
		t.Error("expected error for unsupported date format")
	}
}

func TestParseHeaderless(t *testing.T) {
	config := DefaultRecordParserConfig()
	config.HasHeader = false

	input := `r-1,10.00,2026-03-15,coffee,EXT-1
`
	records, _ := parseString(t, config, input)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.ID != "r-1" || r.Description == nil || *r.Description != "coffee" {
		t.Errorf("positional mapping failed: %s", r)
	}
}

func TestParseCustomDelimiter(t *testing.T) {
	config := DefaultRecordParserConfig()
	config.Delimiter = ';'

	input := "id;amount\nr-1;10.00\n"
	records, _ := parseString(t, config, input)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestParseMetadataColumn(t *testing.T) {
	input := `id,metadata
r-1,"{""currency"": ""USD"", ""batch"": 7}"
`
	records, _ := parseString(t, nil, input)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	meta := records[0].Metadata
	if len(meta) != 2 {
		t.Fatalf("expected 2 metadata entries, got %d", len(meta))
	}
	if meta["currency"].String() != "USD" {
		t.Errorf("unexpected currency metadata: %v", meta["currency"])
	}
}

func TestParseFileMissing(t *testing.T) {
	parser := NewRecordParser(nil, nil)
	_, _, err := parser.ParseFile("/nonexistent/records.csv")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
