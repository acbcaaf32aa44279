package services

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
)

func schemaDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate test file")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "schemas")
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(context.Background(), schemaDir(t))
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

func TestValidator_Project(t *testing.T) {
	v := newTestValidator(t)

	cases := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid minimal", `{"title": "Build a storefront", "description": "React frontend plus checkout."}`, false},
		{"valid full", `{"title": "Build a storefront", "description": "React frontend plus checkout.", "budget_cents": 250000, "category_id": "9f2c2e8e-1f1a-4f9a-9a51-7d1c9d1a2b3c"}`, false},
		{"null budget", `{"title": "Build a storefront", "description": "React frontend plus checkout.", "budget_cents": null}`, false},
		{"missing description", `{"title": "Build a storefront"}`, true},
		{"short title", `{"title": "ab", "description": "React frontend plus checkout."}`, true},
		{"short description", `{"title": "Build a storefront", "description": "short"}`, true},
		{"zero budget", `{"title": "Build a storefront", "description": "React frontend plus checkout.", "budget_cents": 0}`, true},
		{"unknown field", `{"title": "Build a storefront", "description": "React frontend plus checkout.", "status": "open"}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(context.Background(), PayloadProject, []byte(tc.payload))
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidator_Milestone(t *testing.T) {
	v := newTestValidator(t)

	cases := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"title": "Design mockups", "amount_cents": 25000}`, false},
		{"with description", `{"title": "Design mockups", "description": "Home and checkout pages", "amount_cents": 25000}`, false},
		{"missing amount", `{"title": "Design mockups"}`, true},
		{"zero amount", `{"title": "Design mockups", "amount_cents": 0}`, true},
		{"fractional amount", `{"title": "Design mockups", "amount_cents": 250.5}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(context.Background(), PayloadMilestone, []byte(tc.payload))
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidator_UnknownKind(t *testing.T) {
	v := newTestValidator(t)
	if err := v.Validate(context.Background(), "invoice", []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown payload kind")
	}
}

func TestValidator_MalformedJSON(t *testing.T) {
	v := newTestValidator(t)
	err := v.Validate(context.Background(), PayloadProject, []byte(`{`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatal("malformed JSON is a parse failure, not a schema violation")
	}
}
