// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package database

import (
	"database/sql"

	"github.com/swipelab/swipelab/internal/logging"
)

// closeRows closes a result set, logging rather than returning the error
// since callers are already propagating the primary query error.
func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close rows")
	}
}

// rollbackOnError rolls back tx when the surrounding function is exiting
// with a non-nil error. Use via defer after BeginTx.
func rollbackOnError(tx *sql.Tx, err *error) {
	if *err == nil {
		return
	}
	if rbErr := tx.Rollback(); rbErr != nil {
		logging.Error().
			Err(rbErr).
			AnErr("original_error", *err).
			Msg("Transaction rollback failed")
	}
}
