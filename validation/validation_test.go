package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/kbukum/voicemap/errors"
)

type segmentRequest struct {
	ID      string  `json:"id" validate:"required,max=8"`
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start" validate:"finite,gte=0"`
	End     float64 `json:"end" validate:"finite,gtfield=Start"`
}

type clusterRequest struct {
	NumClusters int `json:"num_clusters" validate:"min=1,max=64"`
}

func TestStructValidateValid(t *testing.T) {
	if err := Validate(segmentRequest{ID: "seg-1", Start: 0, End: 1.5}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := Validate(clusterRequest{NumClusters: 2}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantField string
		wantMsg   string
	}{
		{"missing id", segmentRequest{Start: 0, End: 1}, "id", "is required"},
		{"long id", segmentRequest{ID: "123456789", End: 1}, "id", "at most 8 characters"},
		{"negative start", segmentRequest{ID: "a", Start: -1, End: 1}, "start", "at least 0"},
		{"end before start", segmentRequest{ID: "a", Start: 2, End: 1}, "end", "greater than start"},
		{"nan end", segmentRequest{ID: "a", Start: 0, End: math.NaN()}, "end", "finite"},
		{"zero clusters", clusterRequest{NumClusters: 0}, "num_clusters", "at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != errors.ErrCodeInvalidInput {
				t.Fatalf("expected INVALID_INPUT AppError, got %v", err)
			}
			fields, _ := appErr.Details["fields"].([]FieldError)
			var matched bool
			for _, f := range fields {
				if f.Field == tt.wantField && strings.Contains(f.Message, tt.wantMsg) {
					matched = true
				}
			}
			if !matched {
				t.Errorf("expected %s: %q in %+v", tt.wantField, tt.wantMsg, fields)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Start":       "start",
		"NumClusters": "num_clusters",
		"id":          "id",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
