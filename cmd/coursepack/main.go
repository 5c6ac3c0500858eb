package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	coursepack "github.com/goliatone/go-coursepack"
	"github.com/goliatone/go-coursepack/cmd/coursepack/internal/bootstrap"
	"github.com/goliatone/go-coursepack/internal/commands"
	buildcmd "github.com/goliatone/go-coursepack/internal/commands/build"
	"github.com/goliatone/go-coursepack/internal/runtimeconfig"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runBuild(os.Args[1:]); err != nil {
		log.Fatalf("coursepack: %v", err)
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("coursepack", flag.ExitOnError)
	source := fs.String("source", ".", "Path to the course source tree (must contain a content folder)")
	buildDir := fs.String("build-dir", "build", "Staging directory for working copies")
	distDir := fs.String("dist-dir", "dist", "Distribution directory for final artifacts")
	strict := fs.Bool("strict", false, "Verify all repositories share the same release tag before building")
	epub := fs.Bool("epub", false, "Produce an e-book bundle instead of an HTML tree")
	mavenseed := fs.Bool("mavenseed", false, "Additionally produce learning-platform export bundles")
	workers := fs.Int("workers", 0, "Build graph parallelism (0 selects the CPU count)")
	logLevel := fs.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	logFormat := fs.String("log-format", "console", "Log format: console or json")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		Source:    *source,
		BuildDir:  *buildDir,
		DistDir:   *distDir,
		Strict:    *strict,
		Epub:      *epub,
		Mavenseed: *mavenseed,
		Workers:   *workers,
		LogLevel:  *logLevel,
		LogFormat: *logFormat,
	})
	if err != nil {
		return err
	}

	handler := buildcmd.NewBuildCourseHandler(
		func(ctx context.Context, cfg runtimeconfig.Config) (*coursepack.Report, error) {
			return module.Service.Build(ctx)
		},
		commands.CommandLogger(module.Provider, "build"),
	)

	var report *coursepack.Report
	cmd := buildcmd.BuildCourseCommand{
		Source:    module.Config.SourceDir,
		BuildDir:  module.Config.BuildDir,
		DistDir:   module.Config.DistDir,
		Strict:    module.Config.Flags.Strict,
		Epub:      module.Config.Flags.Epub,
		Mavenseed: module.Config.Flags.Mavenseed,
		Workers:   module.Config.Workers,
		ResultCallback: func(env buildcmd.ResultEnvelope) {
			report = env.Report
		},
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		return err
	}
	if report != nil {
		fmt.Printf("build %s: %d executed, %d fresh, %d failed in %s\n",
			report.BuildID, report.Executed, report.Skipped, report.Failed, report.Duration)
	}
	return nil
}
