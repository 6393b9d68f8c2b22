package expr

import (
	"errors"
	"fmt"
)

// Kind classifies evaluation failures.
type Kind int

const (
	SyntaxError Kind = iota + 1
	UnknownIdentifierError
	ArityError
	DomainError
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrSyntax            = errors.New("syntax error")
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrArity             = errors.New("wrong number of arguments")
	ErrDomain            = errors.New("domain error")
)

// String returns the wire name of the kind, as reported by the API.
func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax"
	case UnknownIdentifierError:
		return "unknown_identifier"
	case ArityError:
		return "arity"
	case DomainError:
		return "domain"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case SyntaxError:
		return ErrSyntax
	case UnknownIdentifierError:
		return ErrUnknownIdentifier
	case ArityError:
		return ErrArity
	case DomainError:
		return ErrDomain
	default:
		return nil
	}
}

// Error is returned for every rejected expression. Pos is the 1-based
// column of the offending token, or 0 when no single token is to blame.
type Error struct {
	Kind Kind
	Pos  int
	Msg  string
}

func (e *Error) Error() string {
	prefix := "expression error"
	if s := e.Kind.sentinel(); s != nil {
		prefix = s.Error()
	}
	if e.Pos > 0 {
		return fmt.Sprintf("%s at column %d: %s", prefix, e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// KindOf reports the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func errorf(kind Kind, pos int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
