package scene

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies compile failures.
type Kind int

const (
	// ParseError is malformed input: bad XML or an unterminated document.
	ParseError Kind = iota + 1
	// StructuralError is a well-formed document with an invalid shape.
	StructuralError
	// AttributeValueError is an attribute value that does not parse.
	AttributeValueError
	// AssetResolutionError is a reference to a missing or unusable asset.
	AssetResolutionError
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case StructuralError:
		return "structural error"
	case AttributeValueError:
		return "attribute value error"
	case AssetResolutionError:
		return "asset resolution error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a compile failure attributed to a node.
type Error struct {
	Kind Kind
	Op   string // what was being done
	Node string // node description, empty when not tied to a node
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Node != "" {
		msg += " (" + e.Node + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err carries a scene error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

func newError(kind Kind, op, node string, err error) *Error {
	return &Error{Kind: kind, Op: op, Node: node, Err: err}
}

func structuralf(node, format string, args ...any) *Error {
	return newError(StructuralError, fmt.Sprintf(format, args...), node, nil)
}

func assetf(node, format string, args ...any) *Error {
	return newError(AssetResolutionError, fmt.Sprintf(format, args...), node, nil)
}
