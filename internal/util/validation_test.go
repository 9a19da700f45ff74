package util

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"
)

type sampleRequest struct {
	DocumentID string   `json:"documentId" binding:"required"`
	Action     string   `json:"action" binding:"required,oneof=start update end"`
	Progress   *float64 `json:"progress" binding:"omitempty,min=0,max=100"`
	Total      int      `json:"total" binding:"min=1"`
	Correct    int      `json:"correct" binding:"ltefield=Total"`
}

func TestValidationDetails(t *testing.T) {
	RegisterJSONTagNames()

	progress := 101.0
	err := binding.Validator.ValidateStruct(&sampleRequest{Action: "skip", Progress: &progress, Total: 1, Correct: 2})
	if err == nil {
		t.Fatal("expected validation error")
	}

	got := ValidationDetails(err)
	want := []FieldError{
		{Field: "documentId", Message: "is required"},
		{Field: "action", Message: "must be one of: start, update, end"},
		{Field: "progress", Message: "must be less than or equal to 100"},
		{Field: "correct", Message: "must not exceed total"},
	}
	if len(got) != len(want) {
		t.Fatalf("details = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("details[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestValidationDetails_JSONErrors(t *testing.T) {
	var req sampleRequest

	err := json.Unmarshal([]byte(`{"total": "three"}`), &req)
	got := ValidationDetails(err)
	if len(got) != 1 || got[0].Field != "total" || got[0].Message != "must be of type int" {
		t.Errorf("type error details = %+v", got)
	}

	err = json.Unmarshal([]byte(`{"total": }`), &req)
	got = ValidationDetails(err)
	if len(got) != 1 || got[0] != (FieldError{Field: "body", Message: "malformed JSON"}) {
		t.Errorf("syntax error details = %+v", got)
	}
}
