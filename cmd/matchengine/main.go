package main

import (
	"os"

	"transaction-matching-engine/cmd/matchengine/cmd"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.HandleError(err))
	}
}
