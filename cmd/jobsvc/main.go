package main

import (
	"os"

	"github.com/ignatzorin/freelance-jobs/internal/cli"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
)

func main() {
	if err := cli.BuildCLI().Execute(); err != nil {
		logger.Log.WithError(err).Error("jobsvc: завершение с ошибкой")
		os.Exit(1)
	}
}
