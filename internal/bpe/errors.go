package bpe

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCorpus reports a merge requested on a vocabulary with no words.
	ErrEmptyCorpus = errors.New("corpus contains no words")
	// ErrNoMergeableState reports that no adjacent pairs remain to merge.
	ErrNoMergeableState = errors.New("no mergeable pairs remain")
	// ErrSpecialTokenCollision reports a learned symbol equal to a reserved token.
	ErrSpecialTokenCollision = errors.New("learned symbol collides with special token")

	errMissingSpecials = errors.New("token table must start with the reserved special tokens")
	errDuplicateToken  = errors.New("duplicate token")
)

// NoMergeableStateError is returned by the merge engine when iteration
// Iteration (0-based) of Requested finds an empty pair table.
type NoMergeableStateError struct {
	Iteration int
	Requested int
	Empty     bool // the vocabulary had no words at all
}

func (e *NoMergeableStateError) Error() string {
	if e.Empty {
		return fmt.Sprintf("merge %d of %d: %v: %v", e.Iteration+1, e.Requested, ErrNoMergeableState, ErrEmptyCorpus)
	}
	return fmt.Sprintf("merge %d of %d: %v", e.Iteration+1, e.Requested, ErrNoMergeableState)
}

// Is matches ErrNoMergeableState, and ErrEmptyCorpus when the vocabulary was empty.
func (e *NoMergeableStateError) Is(target error) bool {
	switch target {
	case ErrNoMergeableState:
		return true
	case ErrEmptyCorpus:
		return e.Empty
	default:
		return false
	}
}

// SpecialTokenCollisionError names the learned symbol that equals a special token.
type SpecialTokenCollisionError struct {
	Symbol string
}

func (e *SpecialTokenCollisionError) Error() string {
	return fmt.Sprintf("%v: %q", ErrSpecialTokenCollision, e.Symbol)
}

func (e *SpecialTokenCollisionError) Unwrap() error { return ErrSpecialTokenCollision }
