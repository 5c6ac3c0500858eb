package pipeline

import "errors"

var (
	ErrIncludeCycle     = errors.New("pipeline: include directives form a cycle")
	ErrIncludeDepth     = errors.New("pipeline: include nesting exceeds the configured depth")
	ErrIncludeNotFound  = errors.New("pipeline: included file not found")
	ErrIncludeAmbiguous = errors.New("pipeline: included file name matches multiple files")
	ErrAnchorNotFound   = errors.New("pipeline: include anchor not found")
	ErrAnchorMalformed  = errors.New("pipeline: include anchor is malformed")
)
