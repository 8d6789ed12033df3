// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package database

import (
	"io"

	"github.com/tablewise/menucast/internal/logging"
)

// closeQuietly closes an io.Closer and ignores the error.
// Use only where the error genuinely does not matter (cleanup paths
// after a prior failure).
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// closeWithLog closes an io.Closer and logs any error at debug level.
// Used for rows and statements where a close failure is surprising but
// not actionable.
func closeWithLog(closer io.Closer, what string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Debug().Err(err).Str("resource", what).Msg("Failed to close resource")
	}
}
