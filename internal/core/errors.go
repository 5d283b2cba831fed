package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Error message prefixes discriminate failure classes that share an
// errbuilder code. The CLI maps each class to its own exit code, so the
// prefixes are part of the surfaced contract.
const (
	msgPrefixConflict  = "conflicting requirements"
	msgPrefixRegistry  = "registry error"
	msgPrefixIntegrity = "integrity error"
	msgPrefixAudit     = "audit failed"
)

// NewParseError reports malformed version, constraint, manifest, or
// lockfile input. Always recoverable by fixing the input.
func NewParseError(msg string, cause error) error {
	b := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
	if cause != nil {
		b = b.WithCause(cause)
	}
	return b
}

// NewConflictError reports an unsatisfiable constraint intersection,
// naming the package and both dependents.
func NewConflictError(pkg string, a string, aConstraint string, b string, bConstraint string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("%s for %s: %s requires %s, %s requires %s",
			msgPrefixConflict, pkg, a, aConstraint, b, bConstraint))
}

// NewNotFoundError reports an absent package or the absence of any
// version satisfying a constraint.
func NewNotFoundError(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(msg)
}

// NewRegistryError wraps a transport failure from the registry client.
// The engine never retries these.
func NewRegistryError(msg string, cause error) error {
	b := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("%s: %s", msgPrefixRegistry, msg))
	if cause != nil {
		b = b.WithCause(cause)
	}
	return b
}

// NewIntegrityError reports a checksum mismatch at install or verify
// time. Never auto-repaired.
func NewIntegrityError(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("%s: %s", msgPrefixIntegrity, msg))
}

// NewAuditFailedError signals that critical or high advisories exist.
func NewAuditFailedError(critical int, high int) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("%s: %d critical, %d high advisories", msgPrefixAudit, critical, high))
}

func IsParseError(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeInvalidArgument
}

func IsConflictError(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeFailedPrecondition &&
		strings.HasPrefix(ErrorMessage(err), msgPrefixConflict)
}

func IsNotFoundError(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeNotFound
}

func IsRegistryError(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeInternal &&
		strings.HasPrefix(ErrorMessage(err), msgPrefixRegistry)
}

func IsIntegrityError(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeFailedPrecondition &&
		strings.HasPrefix(ErrorMessage(err), msgPrefixIntegrity)
}

func IsAuditFailed(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeFailedPrecondition &&
		strings.HasPrefix(ErrorMessage(err), msgPrefixAudit)
}

// ErrorMessage extracts the builder message when err is an errbuilder
// error, falling back to Error().
func ErrorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
