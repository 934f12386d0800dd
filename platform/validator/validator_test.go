package validator

import (
	"errors"
	"testing"
)

type thresholds struct {
	Hot  int `validate:"min=0,max=100"`
	Warm int `validate:"min=0,ltefield=Hot"`
}

func TestStructRejectsWarmAboveHot(t *testing.T) {
	v := New()
	err := v.Struct(thresholds{Hot: 50, Warm: 60})
	if err == nil {
		t.Fatalf("expected validation error")
	}

	got := Describe(err)
	if len(got) != 1 || got[0] != "warm failed on ltefield=Hot" {
		t.Fatalf("unexpected description: %v", got)
	}
}

func TestStructAcceptsOrderedThresholds(t *testing.T) {
	if err := New().Struct(thresholds{Hot: 70, Warm: 40}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestDescribePlainError(t *testing.T) {
	got := Describe(errors.New("boom"))
	if len(got) != 1 || got[0] != "boom" {
		t.Fatalf("unexpected description: %v", got)
	}
}
