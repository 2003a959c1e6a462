// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package database

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Reorder rejection codes. They double as metric label values.
const (
	ReorderCountMismatch = "count_mismatch"
	ReorderDuplicateID   = "duplicate_id"
	ReorderUnknownID     = "unknown_id"
)

// ReorderValidationError describes why a full reorder was rejected.
// Rejections never mutate positions; callers map this to a 400 response.
type ReorderValidationError struct {
	Code     string      // one of the Reorder* constants
	Expected int         // videos currently in the experiment
	Provided int         // ids in the request
	IDs      []uuid.UUID // offending ids, for duplicate_id and unknown_id
}

// Error implements the error interface.
func (e *ReorderValidationError) Error() string {
	switch e.Code {
	case ReorderCountMismatch:
		return fmt.Sprintf("reorder rejected: expected %d video ids, got %d", e.Expected, e.Provided)
	case ReorderDuplicateID:
		return fmt.Sprintf("reorder rejected: duplicate video ids: %v", e.IDs)
	case ReorderUnknownID:
		return fmt.Sprintf("reorder rejected: unknown video ids: %v", e.IDs)
	default:
		return "reorder rejected: " + e.Code
	}
}
