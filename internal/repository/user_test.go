package repository

import (
	"errors"
	"testing"

	"gradebetter/internal/qerrors"
)

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		email string
		valid bool
	}{
		{"student@example.edu", true},
		{"", false},
		{"no-at-sign", false},
		{"@example.edu", false},
		{"student@", false},
		{"a@b@c", false},
	}

	for _, c := range cases {
		err := validateEmail(c.email)
		if c.valid && err != nil {
			t.Errorf("validateEmail(%q): expected valid, got %v", c.email, err)
		}
		if !c.valid && !errors.Is(err, qerrors.InvalidEmailError) {
			t.Errorf("validateEmail(%q): expected InvalidEmailError, got %v", c.email, err)
		}
	}
}

func TestValidateID(t *testing.T) {
	if err := validateID("abc123"); err != nil {
		t.Errorf("expected valid ID, got %v", err)
	}
	if err := validateID(""); !errors.Is(err, qerrors.InvalidIDError) {
		t.Errorf("expected InvalidIDError for empty ID, got %v", err)
	}

	long := make([]byte, 129)
	for i := range long {
		long[i] = 'a'
	}
	if err := validateID(string(long)); !errors.Is(err, qerrors.InvalidIDError) {
		t.Errorf("expected InvalidIDError for oversized ID, got %v", err)
	}
}
