package buildcmd

import (
	"context"

	coursepack "github.com/goliatone/go-coursepack"
	"github.com/goliatone/go-coursepack/internal/commands"
	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/internal/runtimeconfig"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// BuildFunc executes a course build for one configuration. The default is
// coursepack.Build; tests substitute a fake.
type BuildFunc func(ctx context.Context, cfg runtimeconfig.Config) (*coursepack.Report, error)

// BuildCourseHandler orchestrates course builds using the shared command
// handler foundation.
type BuildCourseHandler struct {
	inner *commands.Handler[BuildCourseCommand]
}

// NewBuildCourseHandler constructs a handler wired to the provided build
// function. A nil build falls back to the package-level entry point.
func NewBuildCourseHandler(build BuildFunc, logger interfaces.Logger, opts ...commands.HandlerOption[BuildCourseCommand]) *BuildCourseHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}
	if build == nil {
		build = func(ctx context.Context, cfg runtimeconfig.Config) (*coursepack.Report, error) {
			return coursepack.Build(ctx, cfg)
		}
	}

	exec := func(ctx context.Context, msg BuildCourseCommand) error {
		report, err := build(ctx, msg.Config())
		if report != nil && msg.ResultCallback != nil {
			msg.ResultCallback(ResultEnvelope{
				Report: report,
				Metadata: map[string]any{
					"operation": "build_course",
					"source":    msg.Source,
				},
			})
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildCourseCommand]{
		commands.WithLogger[BuildCourseCommand](baseLogger),
		commands.WithOperation[BuildCourseCommand]("build.course"),
		commands.WithMessageFields(func(msg BuildCourseCommand) map[string]any {
			fields := map[string]any{
				"source": msg.Source,
			}
			if msg.Strict {
				fields["strict"] = true
			}
			if msg.Epub {
				fields["epub"] = true
			}
			if msg.Mavenseed {
				fields["mavenseed"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildCourseCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildCourseHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildCourseCommand].
func (h *BuildCourseHandler) Execute(ctx context.Context, msg BuildCourseCommand) error {
	return h.inner.Execute(ctx, msg)
}
