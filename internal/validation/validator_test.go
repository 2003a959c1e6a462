// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package validation

import (
	"errors"
	"strings"
	"testing"
)

type sampleRequest struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required,max=10"`
	Count int    `validate:"min=0"`
}

func TestValidateStructValid(t *testing.T) {
	t.Parallel()

	req := sampleRequest{Email: "a@b.edu", Name: "alice", Count: 3}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}
}

func TestValidateStructCollectsAllErrors(t *testing.T) {
	t.Parallel()

	req := sampleRequest{Email: "not-an-email", Name: "", Count: -1}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var ve *RequestValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *RequestValidationError, got %T", err)
	}
	if len(ve.Fields()) != 3 {
		t.Errorf("expected 3 field errors, got %d", len(ve.Fields()))
	}
	if !strings.Contains(ve.Error(), "Email must be a valid email address") {
		t.Errorf("expected email message, got %q", ve.Error())
	}
	if !strings.Contains(ve.Error(), "Name is required") {
		t.Errorf("expected required message, got %q", ve.Error())
	}
}

func TestValidateStructMaxTag(t *testing.T) {
	t.Parallel()

	req := sampleRequest{Email: "a@b.edu", Name: "waytoolongname", Count: 0}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for long name")
	}
	if !strings.Contains(err.Error(), "Name must be at most 10") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("expected the same validator instance")
	}
}
