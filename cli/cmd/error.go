package cmd

import "github.com/ardnew/docxform/lang"

// Predefined errors (sentinel values).
var (
	ErrWriteConfig         = lang.NewError("write configuration file")
	ErrFileExists          = lang.NewError("file exists (use --force to overwrite)")
	ErrMissingExpression   = lang.NewError("no expression given")
	ErrAmbiguousExpression = lang.NewError("expression given both as JSON and with --expr")
)
