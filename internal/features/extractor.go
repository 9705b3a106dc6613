// Package features converts raw records into the normalized feature
// vectors consumed by the similarity strategies.
package features

import (
	"strings"

	"transaction-matching-engine/internal/models"
)

// Extract builds a FeatureVector from a Record. It is a pure function:
// absent fields yield absent features, malformed metadata is dropped,
// and the same record always produces the same vector. It never fails.
func Extract(record *models.Record) *models.FeatureVector {
	if record == nil {
		return &models.FeatureVector{}
	}

	fv := &models.FeatureVector{
		RecordID: record.ID,
		Amount:   record.Amount,
		Date:     record.Date,
	}

	// Empty strings carry no matchable signal and are treated the same
	// as absent fields.
	if record.Description != nil {
		fv.Description = strings.TrimSpace(*record.Description)
		fv.HasDesc = fv.Description != ""
	}

	if record.ExternalID != nil {
		fv.ExternalID = strings.TrimSpace(*record.ExternalID)
		fv.HasExtID = fv.ExternalID != ""
	}

	if len(record.Metadata) > 0 {
		meta := make(map[string]models.MetadataValue, len(record.Metadata))
		for k, v := range record.Metadata {
			meta[k] = v
		}
		fv.Metadata = meta
	}

	return fv
}
