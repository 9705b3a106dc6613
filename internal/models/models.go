// Package models defines the record and feature types shared by the
// matching engine.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MetadataKind identifies the scalar kind held by a MetadataValue.
type MetadataKind int

const (
	// MetadataString holds a free-text value.
	MetadataString MetadataKind = iota
	// MetadataNumber holds a numeric value.
	MetadataNumber
	// MetadataBool holds a boolean value.
	MetadataBool
)

// String returns the string representation of MetadataKind
func (k MetadataKind) String() string {
	switch k {
	case MetadataString:
		return "string"
	case MetadataNumber:
		return "number"
	case MetadataBool:
		return "bool"
	default:
		return "unknown"
	}
}

// MetadataValue is a closed scalar sum type for record metadata.
// Records arrive with loosely typed JSON metadata; only string, number
// and boolean values are representable here. Arrays and objects are
// rejected at the parsing boundary rather than carried into scoring.
type MetadataValue struct {
	Kind MetadataKind
	Str  string
	Num  float64
	Bool bool
}

// StringValue creates a string metadata value
func StringValue(s string) MetadataValue {
	return MetadataValue{Kind: MetadataString, Str: s}
}

// NumberValue creates a numeric metadata value
func NumberValue(f float64) MetadataValue {
	return MetadataValue{Kind: MetadataNumber, Num: f}
}

// BoolValue creates a boolean metadata value
func BoolValue(b bool) MetadataValue {
	return MetadataValue{Kind: MetadataBool, Bool: b}
}

// String returns a display representation of the value
func (v MetadataValue) String() string {
	switch v.Kind {
	case MetadataString:
		return v.Str
	case MetadataNumber:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v.Num), "0"), ".")
	case MetadataBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return ""
	}
}

// ParseMetadata converts a raw JSON object into scalar metadata values.
// Non-scalar values (arrays, nested objects) and nulls are skipped.
// A nil or empty input yields an empty map, never an error.
func ParseMetadata(raw map[string]json.RawMessage) map[string]MetadataValue {
	out := make(map[string]MetadataValue, len(raw))

	for key, msg := range raw {
		var asBool bool
		if err := json.Unmarshal(msg, &asBool); err == nil {
			out[key] = BoolValue(asBool)
			continue
		}

		var asNum float64
		if err := json.Unmarshal(msg, &asNum); err == nil {
			out[key] = NumberValue(asNum)
			continue
		}

		var asStr string
		if err := json.Unmarshal(msg, &asStr); err == nil {
			out[key] = StringValue(asStr)
			continue
		}
		// Array, object or null: not a scalar, skip it.
	}

	return out
}

// ParseMetadataJSON parses a JSON document into scalar metadata values.
// Malformed documents yield an empty map; metadata is best-effort input
// and must never fail a match.
func ParseMetadataJSON(data []byte) map[string]MetadataValue {
	if len(data) == 0 {
		return map[string]MetadataValue{}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string]MetadataValue{}
	}

	return ParseMetadata(raw)
}

// Record is an immutable transaction record supplied by the ingestion
// layer. All matchable fields are optional; the engine degrades
// gracefully when they are absent.
type Record struct {
	ID          string                   `json:"id"`
	Amount      *decimal.Decimal         `json:"amount,omitempty"`
	Date        *time.Time               `json:"date,omitempty"`
	Description *string                  `json:"description,omitempty"`
	ExternalID  *string                  `json:"external_id,omitempty"`
	Metadata    map[string]MetadataValue `json:"-"`
}

// NewRecord creates a Record with only an identifier set
func NewRecord(id string) *Record {
	return &Record{ID: id}
}

// WithAmount sets the record amount
func (r *Record) WithAmount(amount decimal.Decimal) *Record {
	r.Amount = &amount
	return r
}

// WithDate sets the transaction date
func (r *Record) WithDate(date time.Time) *Record {
	r.Date = &date
	return r
}

// WithDescription sets the free-text description
func (r *Record) WithDescription(desc string) *Record {
	r.Description = &desc
	return r
}

// WithExternalID sets the external reference identifier
func (r *Record) WithExternalID(extID string) *Record {
	r.ExternalID = &extID
	return r
}

// WithMetadata sets the metadata map
func (r *Record) WithMetadata(meta map[string]MetadataValue) *Record {
	r.Metadata = meta
	return r
}

// String returns a string representation of the Record
func (r *Record) String() string {
	parts := []string{fmt.Sprintf("ID: %s", r.ID)}
	if r.Amount != nil {
		parts = append(parts, fmt.Sprintf("Amount: %s", r.Amount.String()))
	}
	if r.Date != nil {
		parts = append(parts, fmt.Sprintf("Date: %s", r.Date.Format("2006-01-02")))
	}
	if r.Description != nil {
		parts = append(parts, fmt.Sprintf("Description: %s", *r.Description))
	}
	if r.ExternalID != nil {
		parts = append(parts, fmt.Sprintf("ExternalID: %s", *r.ExternalID))
	}
	return fmt.Sprintf("Record{%s}", strings.Join(parts, ", "))
}

// FeatureVector is the normalized projection of a Record used for one
// match evaluation. It is deterministic for a given Record and is never
// persisted on its own.
type FeatureVector struct {
	RecordID    string
	Amount      *decimal.Decimal
	Date        *time.Time
	Description string
	ExternalID  string
	HasDesc     bool
	HasExtID    bool
	Metadata    map[string]MetadataValue
}

// HasAmount reports whether the amount feature is present
func (f *FeatureVector) HasAmount() bool {
	return f.Amount != nil
}

// HasDate reports whether the date feature is present
func (f *FeatureVector) HasDate() bool {
	return f.Date != nil
}

// HasDescription reports whether the description feature is present
func (f *FeatureVector) HasDescription() bool {
	return f.HasDesc
}

// HasExternalID reports whether the external id feature is present
func (f *FeatureVector) HasExternalID() bool {
	return f.HasExtID
}
