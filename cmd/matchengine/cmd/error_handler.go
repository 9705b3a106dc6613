package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"transaction-matching-engine/pkg/errors"
)

// HandleError prints a user-friendly rendition of a command failure and
// returns the process exit code.
func HandleError(err error) int {
	if err == nil {
		return 0
	}

	var engineErr *errors.EngineError
	if stderrors.As(err, &engineErr) {
		return handleEngineError(engineErr)
	}

	if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory") {
		fmt.Fprintln(os.Stderr, "Error: file not found")
		fmt.Fprintln(os.Stderr, "Suggestion: check that the file path is correct and the file exists")
		return 2
	}
	if os.IsPermission(err) {
		fmt.Fprintln(os.Stderr, "Error: permission denied")
		fmt.Fprintln(os.Stderr, "Suggestion: check file permissions and ensure you have read access")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func handleEngineError(err *errors.EngineError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintln(os.Stderr, "\nContext:")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	if help := categoryHelp(err.Category); help != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", help)
	}

	if viper.GetBool("verbose") && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return 2
}

func categoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryParse:
		return `Parse error help:
- Verify the CSV file structure and column headers
- Amounts must be decimal numbers; currency symbols are stripped
- Dates must use YYYY-MM-DD, RFC3339 or MM/DD/YYYY
- Malformed rows are skipped, but the id column must exist`

	case errors.CategoryConfiguration:
		return `Configuration error help:
- Check your command-line flags and arguments
- Verify configuration file syntax if using --config
- Use 'matchengine match --help' to see all available options`

	case errors.CategoryValidation:
		return `Validation error help:
- Thresholds must be between 0.0 and 1.0
- Strategy weights cannot be negative`

	default:
		return ""
	}
}
