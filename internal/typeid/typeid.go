package typeid

import (
	"errors"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefixes of the ids this service hands out.
const (
	PrefixUser     = "user"
	PrefixDocument = "doc"
	PrefixViewer   = "viewer"
)

// ErrInvalidID is wrapped by every Validate failure.
var ErrInvalidID = errors.New("invalid id")

func New(prefix string) string {
	return typeid.MustGenerate(prefix).String()
}

func NewUserID() string     { return New(PrefixUser) }
func NewDocumentID() string { return New(PrefixDocument) }
func NewViewerID() string   { return New(PrefixViewer) }

// Validate checks that id is a well-formed typeid carrying wantPrefix.
func Validate(id, wantPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	if got := parsed.Prefix(); got != wantPrefix {
		return fmt.Errorf("%w %q: prefix %q, want %q", ErrInvalidID, id, got, wantPrefix)
	}
	return nil
}

// IsDocumentID reports whether id could name a stored document.
func IsDocumentID(id string) bool {
	return Validate(id, PrefixDocument) == nil
}
