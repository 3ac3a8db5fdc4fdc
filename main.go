package main

import (
	"fmt"
	"os"

	"inmova/bank-import/cmd/classify"
	"inmova/bank-import/cmd/common"
	"inmova/bank-import/cmd/detect"
	"inmova/bank-import/cmd/ingest"
	"inmova/bank-import/cmd/root"
	"inmova/bank-import/cmd/serve"
	"inmova/bank-import/internal/config"
)

func init() {
	// Environment first so BANKIMPORT_* values from .env reach viper
	if envFile, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot load %s: %v\n", envFile, err)
	}

	root.Init()

	root.Cmd.AddCommand(detect.Cmd)
	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, common.DescribeError(err))
		os.Exit(1)
	}
}
