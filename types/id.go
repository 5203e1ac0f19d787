package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDKind identifies which entity family an identifier belongs to.
type IDKind string

const (
	KindAgent        IDKind = "agent"
	KindConversation IDKind = "conversation"
	KindNode         IDKind = "node"
	KindMessage      IDKind = "message"
)

// idPrefixes maps entity kinds to their single-letter wire prefix.
var idPrefixes = map[IDKind]string{
	KindAgent:        "a",
	KindConversation: "c",
	KindNode:         "n",
	KindMessage:      "m",
}

// prefixKinds is the inverse of idPrefixes.
var prefixKinds = map[string]IDKind{
	"a": KindAgent,
	"c": KindConversation,
	"n": KindNode,
	"m": KindMessage,
}

// NewID generates a globally unique identifier of the form
// {prefix}-{uuid}, e.g. "n-6c1f6f2e-6a5f-4b07-95d7-0c2b8a3f9e1d".
func NewID(kind IDKind) string {
	return fmt.Sprintf("%s-%s", idPrefixes[kind], uuid.NewString())
}

// ParseID validates a prefixed identifier and returns its kind and the
// raw unique value. It fails with INVALID_IDENTIFIER when the prefix is
// unrecognized or the remainder is not a well-formed UUID.
func ParseID(id string) (IDKind, string, error) {
	prefix, raw, ok := strings.Cut(id, "-")
	if !ok {
		return "", "", NewError(ErrInvalidIdentifier, fmt.Sprintf("identifier %q has no prefix", id))
	}

	kind, known := prefixKinds[prefix]
	if !known {
		return "", "", NewError(ErrInvalidIdentifier, fmt.Sprintf("unknown identifier prefix %q", prefix))
	}

	if _, err := uuid.Parse(raw); err != nil {
		return "", "", NewError(ErrInvalidIdentifier, fmt.Sprintf("identifier %q is not well-formed", id)).WithCause(err)
	}

	return kind, raw, nil
}

// ValidateID checks that an identifier parses and belongs to the expected
// kind. Cross-kind misuse (a message id where a node id is expected) is
// rejected at the boundary with INVALID_IDENTIFIER.
func ValidateID(id string, want IDKind) error {
	kind, _, err := ParseID(id)
	if err != nil {
		return err
	}
	if kind != want {
		return NewError(ErrInvalidIdentifier,
			fmt.Sprintf("identifier %q is a %s id, expected %s", id, kind, want))
	}
	return nil
}
