package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/HerbHall/podscope/internal/config"
	"github.com/HerbHall/podscope/internal/downward"
)

// Exit codes for dump mode.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// runDump performs a single collection pass and writes it to stdout. It is
// meant for `kubectl exec <pod> -- podscope -dump`, so it never logs.
func runDump(configPath, output string, stdout, stderr io.Writer) int {
	return dumpWith(afero.NewOsFs(), downward.OSEnv{}, configPath, output, stdout, stderr)
}

func dumpWith(fsys afero.Fs, env downward.Env, configPath, output string, stdout, stderr io.Writer) int {
	format, err := downward.ParseFormat(output)
	if err != nil {
		fmt.Fprintf(stderr, "podscope: %v\n", err)
		return exitUsage
	}

	cfg, err := config.LoadFs(fsys, configPath)
	if err != nil {
		fmt.Fprintf(stderr, "podscope: %v\n", err)
		return exitError
	}
	settings, err := cfg.Settings()
	if err != nil {
		fmt.Fprintf(stderr, "podscope: %v\n", err)
		return exitError
	}

	c := downward.NewCollector(
		downward.WithEnv(env),
		downward.WithFs(fsys),
		downward.WithLabelsPath(settings.Labels.Path),
	)
	if err := c.Collect().Report().Encode(stdout, format); err != nil {
		fmt.Fprintf(stderr, "podscope: %v\n", err)
		return exitError
	}
	return exitOK
}
