package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"transaction-matching-engine/internal/engine"
	"transaction-matching-engine/internal/models"
	"transaction-matching-engine/internal/parsers"
	"transaction-matching-engine/pkg/logger"
)

// Flags for the match command
var (
	leftFile     string
	rightFile    string
	threshold    float64
	profile      string
	outputFormat string
	outputFile   string
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score row-aligned record pairs from two CSV files",
	Long: `Match loads records from two CSV files and scores each row-aligned
pair through the matching engine, reporting confidence, tier, strategy
scores, anomaly flags and remediation hints.

Record CSV columns: id, amount, date, description, external_id and an
optional metadata column holding a JSON object of scalar values. Only
the id column is required; every other field may be empty.

Examples:
  # Basic pairwise matching
  matchengine match --left system.csv --right bank.csv

  # A stricter weight profile with JSON output
  matchengine match --left a.csv --right b.csv --profile strict \
    --output-format json --output-file report.json`,

	PreRunE: validateMatchFlags,
	RunE:    runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&leftFile, "left", "l", "", "path to the first record CSV file (required)")
	matchCmd.Flags().StringVarP(&rightFile, "right", "r", "", "path to the second record CSV file (required)")
	matchCmd.Flags().Float64VarP(&threshold, "threshold", "t", 0.8, "confidence threshold for declaring a match (0.0-1.0)")
	matchCmd.Flags().StringVarP(&profile, "profile", "p", "default", "weight profile: default, strict, relaxed")
	matchCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json")
	matchCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	matchCmd.MarkFlagRequired("left")
	matchCmd.MarkFlagRequired("right")

	viper.BindPFlag("left", matchCmd.Flags().Lookup("left"))
	viper.BindPFlag("right", matchCmd.Flags().Lookup("right"))
	viper.BindPFlag("threshold", matchCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("profile", matchCmd.Flags().Lookup("profile"))
	viper.BindPFlag("output-format", matchCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", matchCmd.Flags().Lookup("output-file"))
}

func validateMatchFlags(cmd *cobra.Command, args []string) error {
	leftFile = viper.GetString("left")
	rightFile = viper.GetString("right")
	threshold = viper.GetFloat64("threshold")
	profile = viper.GetString("profile")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")

	if leftFile == "" || rightFile == "" {
		return fmt.Errorf("both --left and --right record files are required")
	}

	if threshold < 0.0 || threshold > 1.0 {
		return fmt.Errorf("threshold must be between 0.0 and 1.0, got %f", threshold)
	}

	switch profile {
	case "default", "strict", "relaxed":
	default:
		return fmt.Errorf("unknown profile %q: must be default, strict or relaxed", profile)
	}

	switch outputFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown output format %q: must be console or json", outputFormat)
	}

	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	log, err := buildLogger()
	if err != nil {
		return err
	}

	parser := parsers.NewRecordParser(nil, log)

	left, leftStats, err := parser.ParseFile(leftFile)
	if err != nil {
		return err
	}
	right, rightStats, err := parser.ParseFile(rightFile)
	if err != nil {
		return err
	}

	log.WithFields(logger.Fields{
		"left_records":  leftStats.ParsedCount,
		"left_skipped":  leftStats.SkippedCount,
		"right_records": rightStats.ParsedCount,
		"right_skipped": rightStats.SkippedCount,
	}).Info("records loaded")

	eng, err := engine.New(configForProfile(profile), log)
	if err != nil {
		return err
	}
	defer eng.Close()

	results := matchPairs(eng, left, right)

	return writeReport(results, outputFormat, outputFile)
}

// matchPairs scores row-aligned pairs; the shorter file bounds the run.
func matchPairs(eng *engine.Engine, left, right []*models.Record) []*engine.MatchResult {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}

	results := make([]*engine.MatchResult, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, eng.MatchRecordsWithThreshold(left[i], right[i], threshold))
	}
	return results
}

func configForProfile(profile string) *engine.Config {
	var config *engine.Config
	switch profile {
	case "strict":
		config = engine.StrictConfig()
	case "relaxed":
		config = engine.RelaxedConfig()
	default:
		config = engine.DefaultConfig()
	}
	config.MatchThreshold = threshold
	return config
}

func buildLogger() (logger.Logger, error) {
	config := logger.DefaultConfig()
	if viper.GetBool("verbose") {
		config = logger.DebugConfig()
	}
	config.Output = os.Stderr
	return logger.NewLogger(config)
}
