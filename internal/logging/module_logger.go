package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

const (
	rootModule       = "coursepack"
	introspectModule = "coursepack.introspect"
	pipelineModule   = "coursepack.pipeline"
	graphModule      = "coursepack.graph"
	packagerModule   = "coursepack.packager"
	validatorModule  = "coursepack.validator"
)

const (
	fieldDocumentPath = "document_path"
	fieldNodeTarget   = "node_target"
	fieldStage        = "stage"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// IntrospectLogger returns the logger namespace reserved for content discovery.
func IntrospectLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, introspectModule)
}

// PipelineLogger returns the logger namespace reserved for document transformation.
func PipelineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pipelineModule)
}

// GraphLogger returns the logger namespace reserved for build graph execution.
func GraphLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, graphModule)
}

// PackagerLogger returns the logger namespace reserved for artifact packagers.
func PackagerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, packagerModule)
}

// ValidatorLogger returns the logger namespace reserved for strict-mode validation.
func ValidatorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, validatorModule)
}

// WithDocumentContext enriches the provided logger with common transformation
// fields such as the document path and active stage. Empty values are ignored.
func WithDocumentContext(logger interfaces.Logger, path, stage string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if trimmed := strings.TrimSpace(stage); trimmed != "" {
		fields[fieldStage] = trimmed
	}
	return WithFields(logger, fields)
}

// WithNodeContext enriches the provided logger with the build node target path.
func WithNodeContext(logger interfaces.Logger, target string) interfaces.Logger {
	if trimmed := strings.TrimSpace(target); trimmed != "" {
		return WithFields(logger, map[string]any{fieldNodeTarget: trimmed})
	}
	return logger
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
