package document

import "github.com/ardnew/docxform/lang"

// Predefined errors (sentinel values).
var (
	ErrParse                 = lang.NewError("failed to parse document")
	ErrNoRootElement         = lang.NewError("document has no root element")
	ErrUnsupported           = lang.NewError("unsupported document type")
	ErrInvalidXPath          = lang.NewError("invalid XPath expression")
	ErrForeignNode           = lang.NewError("node does not belong to document")
	ErrInvalidPrefix         = lang.NewError("no valid prefix (null or empty)")
	ErrInvalidNamespace      = lang.NewError("no valid namespace")
	ErrContainer             = lang.NewError("invalid AMLX container")
	ErrNoRootDocument        = lang.NewError("no root document defined in AMLX container")
	ErrMultipleRootDocuments = lang.NewError("multiple root documents defined in AMLX container")
	ErrPartNotFound          = lang.NewError("AMLX part not found")
)
