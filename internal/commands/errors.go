package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-coursepack/internal/introspect"
	"github.com/goliatone/go-coursepack/internal/packager"
	"github.com/goliatone/go-coursepack/internal/pipeline"
	"github.com/goliatone/go-coursepack/internal/validator"
)

const (
	messageInvalidCode  = "COURSE_MESSAGE_INVALID"
	buildCanceledCode   = "COURSE_BUILD_CANCELED"
	buildTimeoutCode    = "COURSE_BUILD_TIMEOUT"
	buildContextCode    = "COURSE_BUILD_CONTEXT_ERROR"
	sourceInvalidCode   = "COURSE_SOURCE_INVALID"
	documentInvalidCode = "COURSE_DOCUMENT_INVALID"
	releaseMismatchCode = "COURSE_RELEASE_MISMATCH"
	buildFailedCode     = "COURSE_BUILD_FAILED"
)

// sourceErrors are the fatal source-tree preconditions: the course layout or
// a descriptor is wrong, not the build machinery.
var sourceErrors = []error{
	introspect.ErrContentDirMissing,
	packager.ErrProjectNameMissing,
	packager.ErrEpubMetadataMissing,
	packager.ErrEpubCoverMissing,
	packager.ErrEpubTitleMissing,
}

// documentErrors are authoring mistakes inside a lesson that the
// transformation pipeline rejects.
var documentErrors = []error{
	pipeline.ErrIncludeCycle,
	pipeline.ErrIncludeDepth,
	pipeline.ErrIncludeNotFound,
	pipeline.ErrIncludeAmbiguous,
	pipeline.ErrAnchorNotFound,
	pipeline.ErrAnchorMalformed,
}

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "course command message rejected").
		WithTextCode(messageInvalidCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch err {
	case context.Canceled:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "course build cancelled").
			WithTextCode(buildCanceledCode)
	case context.DeadlineExceeded:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "course build deadline exceeded").
			WithTextCode(buildTimeoutCode)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "course build context error").
			WithTextCode(buildContextCode)
	}
}

// wrapExecuteError classifies a failed execution: source-tree and authoring
// problems surface as validation failures with their own text codes so
// callers can tell a broken course from a broken build.
func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	for _, sentinel := range sourceErrors {
		if errors.Is(err, sentinel) {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "course source tree rejected").
				WithTextCode(sourceInvalidCode)
		}
	}
	for _, sentinel := range documentErrors {
		if errors.Is(err, sentinel) {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "course document rejected").
				WithTextCode(documentInvalidCode)
		}
	}
	if errors.Is(err, validator.ErrTagMismatch) {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "course release tags disagree").
			WithTextCode(releaseMismatchCode)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "course build failed").
		WithTextCode(buildFailedCode)
}
