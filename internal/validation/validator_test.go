// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package validation

import (
	"strings"
	"testing"
)

type testRequest struct {
	ID        string    `validate:"required,uuid4"`
	Threshold float64   `validate:"omitempty,gt=0,lte=1"`
	Tags      []string  `validate:"omitempty,max=3"`
	Embedding []float64 `validate:"required,min=2"`
}

func validRequest() testRequest {
	return testRequest{
		ID:        "0b2e4b8e-5d15-4c7e-9a3b-8b9f2f6a1c4d",
		Threshold: 0.95,
		Embedding: []float64{0.1, 0.2},
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 != v2 {
		t.Error("GetValidator() returned different instances")
	}
}

func TestValidateStructPasses(t *testing.T) {
	req := validRequest()
	if verr := ValidateStruct(&req); verr != nil {
		t.Errorf("ValidateStruct() = %v, want nil", verr)
	}
}

func TestValidateStructSingleFailure(t *testing.T) {
	req := validRequest()
	req.ID = "not-a-uuid"

	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if len(verr.Errors()) != 1 {
		t.Fatalf("Errors() count = %d, want 1", len(verr.Errors()))
	}

	fieldErr := verr.Errors()[0]
	if fieldErr.Field() != "ID" {
		t.Errorf("Field() = %s, want ID", fieldErr.Field())
	}
	if fieldErr.Tag() != "uuid4" {
		t.Errorf("Tag() = %s, want uuid4", fieldErr.Tag())
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "valid UUID") {
		t.Errorf("Message = %q, want UUID mention", apiErr.Message)
	}
	if apiErr.Details["field"] != "ID" {
		t.Errorf("Details[field] = %v, want ID", apiErr.Details["field"])
	}
}

func TestValidateStructMultipleFailures(t *testing.T) {
	req := testRequest{
		Threshold: 1.5,
		Embedding: []float64{0.1},
	}

	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if len(verr.Errors()) != 3 {
		t.Fatalf("Errors() count = %d, want 3: %v", len(verr.Errors()), verr)
	}

	apiErr := verr.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("fields count = %d, want 3", len(fields))
	}
}

func TestTranslatedMessages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*testRequest)
		want   string
	}{
		{"required", func(r *testRequest) { r.ID = "" }, "ID is required"},
		{"lte", func(r *testRequest) { r.Threshold = 2 }, "less than or equal to 1"},
		{"slice min", func(r *testRequest) { r.Embedding = []float64{1} }, "at least 2 elements"},
		{"slice max", func(r *testRequest) { r.Tags = []string{"a", "b", "c", "d"} }, "at most 3 elements"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			verr := ValidateStruct(&req)
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if !strings.Contains(verr.Error(), tt.want) {
				t.Errorf("message %q does not contain %q", verr.Error(), tt.want)
			}
		})
	}
}
