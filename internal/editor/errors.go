package editor

import (
	"errors"
	"fmt"

	"github.com/professor-lee/FalseClose/internal/tree"
)

// EditErrorCode categorizes Mutation API failures.
type EditErrorCode string

const (
	// ErrCodeInvalidInput indicates a malformed request, e.g. a missing type tag.
	ErrCodeInvalidInput EditErrorCode = "INVALID_INPUT"

	// ErrCodeNotFound indicates a page or node the caller required does not exist.
	ErrCodeNotFound EditErrorCode = "NOT_FOUND"

	// ErrCodeCycleRejected indicates a move that would make a node its own ancestor.
	ErrCodeCycleRejected EditErrorCode = "CYCLE_REJECTED"
)

// Sentinels matched by errors.Is against any *EditError with the same code.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrCycleRejected = errors.New("cycle rejected")
)

// EditError is returned by the Mutation API. All codes are local and
// recoverable; the project is left unchanged when one is returned.
type EditError struct {
	// Code identifies the error category.
	Code EditErrorCode

	// Message is a human-readable description.
	Message string

	// PageID and NodeID locate the failure when known.
	PageID string
	NodeID string
}

// Error implements the error interface.
func (e *EditError) Error() string {
	switch {
	case e.PageID != "" && e.NodeID != "":
		return fmt.Sprintf("%s: %s (page=%s, node=%s)", e.Code, e.Message, e.PageID, e.NodeID)
	case e.PageID != "":
		return fmt.Sprintf("%s: %s (page=%s)", e.Code, e.Message, e.PageID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) and friends match on the code.
func (e *EditError) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Code == ErrCodeInvalidInput
	case ErrNotFound:
		return e.Code == ErrCodeNotFound
	case ErrCycleRejected:
		return e.Code == ErrCodeCycleRejected
	}
	return false
}

// IsInvalidInput returns true if the error is an INVALID_INPUT EditError.
// Uses errors.As to handle wrapped errors.
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrCodeInvalidInput)
}

// IsNotFound returns true if the error is a NOT_FOUND EditError.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsCycleRejected returns true if the error is a CYCLE_REJECTED EditError.
func IsCycleRejected(err error) bool {
	return hasCode(err, ErrCodeCycleRejected)
}

func hasCode(err error, code EditErrorCode) bool {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

func invalidInput(pageID, nodeID, format string, args ...any) *EditError {
	return &EditError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf(format, args...), PageID: pageID, NodeID: nodeID}
}

func notFound(pageID, nodeID, format string, args ...any) *EditError {
	return &EditError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...), PageID: pageID, NodeID: nodeID}
}

// fromStoreError maps a Node Store error onto an EditError.
func fromStoreError(pageID, nodeID string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tree.ErrPageNotFound),
		errors.Is(err, tree.ErrNodeNotFound),
		errors.Is(err, tree.ErrParentNotFound):
		return &EditError{Code: ErrCodeNotFound, Message: err.Error(), PageID: pageID, NodeID: nodeID}
	case errors.Is(err, tree.ErrCycle):
		return &EditError{Code: ErrCodeCycleRejected, Message: err.Error(), PageID: pageID, NodeID: nodeID}
	case errors.Is(err, tree.ErrDuplicateID):
		return &EditError{Code: ErrCodeInvalidInput, Message: err.Error(), PageID: pageID, NodeID: nodeID}
	}
	return err
}
