package buildcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	coursepack "github.com/goliatone/go-coursepack"
	"github.com/goliatone/go-coursepack/internal/runtimeconfig"
)

const buildCourseMessageType = "coursepack.build.course"

// ResultCallback receives the build report produced by a course build. The
// callback is optional and is invoked synchronously from the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a course build execution.
type ResultEnvelope struct {
	Report   *coursepack.Report
	Metadata map[string]any
}

// BuildCourseCommand runs a full course build for the given source tree.
type BuildCourseCommand struct {
	Source         string         `json:"source"`
	BuildDir       string         `json:"build_dir,omitempty"`
	DistDir        string         `json:"dist_dir,omitempty"`
	Strict         bool           `json:"strict,omitempty"`
	Epub           bool           `json:"epub,omitempty"`
	Mavenseed      bool           `json:"mavenseed,omitempty"`
	Workers        int            `json:"workers,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildCourseCommand) Type() string { return buildCourseMessageType }

// Validate ensures the source tree is provided before handlers execute.
func (m BuildCourseCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.Source) == "" {
		errs["source"] = validation.NewError("coursepack.build.course.source_required", "source is required")
	}
	if m.Workers < 0 {
		errs["workers"] = validation.NewError("coursepack.build.course.workers_invalid", "workers must be zero or positive")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Config maps the message onto a build configuration, starting from defaults
// so unset fields keep their baseline values.
func (m BuildCourseCommand) Config() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.SourceDir = strings.TrimSpace(m.Source)
	if dir := strings.TrimSpace(m.BuildDir); dir != "" {
		cfg.BuildDir = dir
	}
	if dir := strings.TrimSpace(m.DistDir); dir != "" {
		cfg.DistDir = dir
	}
	cfg.Flags = runtimeconfig.Flags{
		Strict:    m.Strict,
		Epub:      m.Epub,
		Mavenseed: m.Mavenseed,
	}
	cfg.Workers = m.Workers
	return cfg
}
