// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tablewise/menucast/internal/validation"
)

// maxRequestBody bounds admin request bodies. The largest legitimate
// payload is a bulk sold-out update with a few hundred ids.
const maxRequestBody = 1 << 20 // 1 MiB

// decodeRequest decodes a JSON request body into dst and validates it.
// On failure it writes the error response and returns false; handlers
// should return immediately.
func decodeRequest(rw *ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		rw.BadRequest("invalid request body: " + err.Error())
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}

	return true
}

// idParam extracts a positive int64 URL parameter from the Chi route
// context. On failure it writes a 400 response and returns false.
func idParam(rw *ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		rw.BadRequest("invalid " + name + " parameter")
		return 0, false
	}
	return id, true
}
