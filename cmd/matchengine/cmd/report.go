package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"transaction-matching-engine/internal/engine"
)

// reportSummary aggregates the outcome of one matching run.
type reportSummary struct {
	TotalPairs    int            `json:"total_pairs"`
	Matches       int            `json:"matches"`
	NonMatches    int            `json:"non_matches"`
	Anomalies     int            `json:"anomalies"`
	TierBreakdown map[string]int `json:"tier_breakdown"`
}

// report is the full serializable output of a matching run.
type report struct {
	Summary reportSummary         `json:"summary"`
	Results []*engine.MatchResult `json:"results"`
}

func buildReport(results []*engine.MatchResult) *report {
	summary := reportSummary{
		TotalPairs:    len(results),
		TierBreakdown: make(map[string]int),
	}

	for _, r := range results {
		if r.IsMatch {
			summary.Matches++
		} else {
			summary.NonMatches++
		}
		if r.AnomalyScore != nil {
			summary.Anomalies++
		}
		summary.TierBreakdown[string(r.Tier)]++
	}

	return &report{Summary: summary, Results: results}
}

func writeReport(results []*engine.MatchResult, format, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	rep := buildReport(results)

	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rep)
	default:
		return writeConsoleReport(out, rep)
	}
}

func writeConsoleReport(w io.Writer, rep *report) error {
	fmt.Fprintln(w, "Matching Report")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Pairs evaluated:  %d\n", rep.Summary.TotalPairs)
	fmt.Fprintf(w, "Matches:          %d\n", rep.Summary.Matches)
	fmt.Fprintf(w, "Non-matches:      %d\n", rep.Summary.NonMatches)
	fmt.Fprintf(w, "Anomalies:        %d\n", rep.Summary.Anomalies)

	tiers := make([]string, 0, len(rep.Summary.TierBreakdown))
	for tier := range rep.Summary.TierBreakdown {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)
	for _, tier := range tiers {
		fmt.Fprintf(w, "  %-20s %d\n", tier, rep.Summary.TierBreakdown[tier])
	}

	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, r := range rep.Results {
		marker := " "
		if r.IsMatch {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s <-> %s  confidence=%.3f tier=%s\n",
			marker, r.RecordA, r.RecordB, r.Confidence, r.Tier)

		if r.AnomalyScore != nil {
			fmt.Fprintf(w, "    anomaly score: %.2f\n", *r.AnomalyScore)
		}
		for _, reason := range r.Reasons {
			fmt.Fprintf(w, "    - %s\n", reason)
		}
		for _, hint := range r.Recommendations {
			fmt.Fprintf(w, "    ! %s\n", hint)
		}
	}

	return nil
}
