package main

import (
	"context"
	"fmt"
	"os"

	"github.com/influxdata/stopwatch/cmd/stopwatch/launcher"
	"github.com/influxdata/stopwatch/kit/signals"
	"github.com/spf13/viper"
)

func main() {
	// exit with SIGINT and SIGTERM
	ctx := signals.WithStandardSignals(context.Background())

	cmd, err := launcher.NewCommand(ctx, viper.New())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
