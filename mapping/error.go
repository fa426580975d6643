package mapping

import (
	"log/slog"
	"strings"

	"github.com/ardnew/docxform/lang"
)

// Predefined errors (sentinel values).
var (
	ErrInvalidSpecification = lang.NewError("invalid mapping specification")
	ErrMissingRoot          = lang.NewError("mapping specification has no root template")
	ErrMultipleRoots        = lang.NewError("mapping specification has more than one root template")
	ErrInvalidHeader        = lang.NewError("invalid mapping header")
	ErrBindInHeader         = lang.NewError("@bind is not allowed in header")
	ErrUnknownDirective     = lang.NewError("unknown template directive")
	ErrInvalidDirective     = lang.NewError("invalid template directive")
	ErrInvalidTemplate      = lang.NewError("invalid template")
	ErrUnknownBinding       = lang.NewError("binding names properties unknown to the target type")
	ErrMissingInputs        = lang.NewError("placeholder values are missing")
	ErrNoResult             = lang.NewError("transformation produced no result")
	ErrReadSpecification    = lang.NewError("failed to read mapping specification")
)

// BindingError reports every @bind key that names no property of the
// template's target type.
type BindingError struct {
	// Type is the target type of the template.
	Type string
	// Path locates the template in the specification.
	Path string
	// Keys are the unknown keys, sorted.
	Keys []string
	// Suggestions maps each unknown key to the closest property names.
	Suggestions map[string][]string
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	return ErrUnknownBinding.Error() + ": " + e.Type + ": [" + strings.Join(e.Keys, ", ") + "]"
}

// Unwrap returns [ErrUnknownBinding].
func (e *BindingError) Unwrap() error { return ErrUnknownBinding }

// LogValue implements slog.LogValuer.
func (e *BindingError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrUnknownBinding.Error()),
		slog.String("type", e.Type),
		slog.String("path", e.Path),
		slog.Any("keys", e.Keys),
	}

	if len(e.Suggestions) > 0 {
		attrs = append(attrs, slog.Any("suggestions", e.Suggestions))
	}

	return slog.GroupValue(attrs...)
}

// MissingInputsError reports every declared parameter for which no
// placeholder value was supplied.
type MissingInputsError struct {
	// Names are the missing parameters in declaration order.
	Names []string
}

// Error implements the error interface.
func (e *MissingInputsError) Error() string {
	return ErrMissingInputs.Error() + ": " + strings.Join(e.Names, ", ")
}

// Unwrap returns [ErrMissingInputs].
func (e *MissingInputsError) Unwrap() error { return ErrMissingInputs }

// LogValue implements slog.LogValuer.
func (e *MissingInputsError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrMissingInputs.Error()),
		slog.Any("names", e.Names),
	)
}
