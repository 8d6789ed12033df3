// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package validation

import (
	"strings"
	"testing"
)

type soldOutRequest struct {
	SoldOut *bool `validate:"required"`
}

type bulkRequest struct {
	ItemIDs []int64 `validate:"required,min=1,max=500,dive,gt=0"`
	SoldOut *bool   `validate:"required"`
}

type categoryRequest struct {
	Name         string `validate:"required,max=120"`
	Description  string `validate:"max=500"`
	DisplayOrder int    `validate:"min=0"`
}

func boolPtr(b bool) *bool { return &b }

func TestValidateStructPasses(t *testing.T) {
	if err := ValidateStruct(&categoryRequest{Name: "Favorites"}); err != nil {
		t.Fatalf("expected validation to pass: %v", err)
	}
	if err := ValidateStruct(&bulkRequest{ItemIDs: []int64{1, 2}, SoldOut: boolPtr(true)}); err != nil {
		t.Fatalf("expected validation to pass: %v", err)
	}
}

func TestValidateStructRequiredPointer(t *testing.T) {
	err := ValidateStruct(&soldOutRequest{})
	if err == nil {
		t.Fatal("expected error for missing sold_out")
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("unexpected code %q", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "required") {
		t.Errorf("unexpected message %q", apiErr.Message)
	}

	// Explicit false satisfies required on a pointer field.
	if err := ValidateStruct(&soldOutRequest{SoldOut: boolPtr(false)}); err != nil {
		t.Fatalf("expected explicit false to pass: %v", err)
	}
}

func TestValidateStructBulkBounds(t *testing.T) {
	if err := ValidateStruct(&bulkRequest{ItemIDs: nil, SoldOut: boolPtr(true)}); err == nil {
		t.Error("expected error for empty id list")
	}
	if err := ValidateStruct(&bulkRequest{ItemIDs: []int64{0}, SoldOut: boolPtr(true)}); err == nil {
		t.Error("expected error for non-positive id")
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	err := ValidateStruct(&categoryRequest{Name: "", DisplayOrder: -1})
	if err == nil {
		t.Fatal("expected errors")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors()))
	}
	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("expected per-field details for multiple errors")
	}
}

func TestTranslateMaxString(t *testing.T) {
	long := strings.Repeat("x", 121)
	err := ValidateStruct(&categoryRequest{Name: long})
	if err == nil {
		t.Fatal("expected error for oversized name")
	}
	if !strings.Contains(err.Error(), "at most 120 characters") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
