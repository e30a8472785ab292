package model

import (
	"errors"
	"strings"
	"testing"
)

func validEventInput() EventInput {
	return EventInput{
		Title:    "Town Meeting",
		Category: "town_meeting",
		Date:     "2026-07-04",
		Location: "City Hall",
	}
}

func fieldsOf(t *testing.T, err error) map[string]bool {
	t.Helper()
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FieldErrors", err)
	}
	got := make(map[string]bool)
	for _, f := range fe {
		got[f.Field] = true
	}
	return got
}

func TestEventInputValid(t *testing.T) {
	in := validEventInput()
	if err := in.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}

func TestEventInputViolations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*EventInput)
		field  string
	}{
		{"short title", func(in *EventInput) { in.Title = "ab" }, "title"},
		{"long title", func(in *EventInput) { in.Title = strings.Repeat("x", 101) }, "title"},
		{"long description", func(in *EventInput) { in.Description = strings.Repeat("x", 2001) }, "description"},
		{"bad category", func(in *EventInput) { in.Category = "picnic" }, "category"},
		{"bad date", func(in *EventInput) { in.Date = "07/04/2026" }, "date"},
		{"missing location", func(in *EventInput) { in.Location = "" }, "location"},
		{"long contact", func(in *EventInput) { in.ContactInfo = strings.Repeat("x", 101) }, "contact_info"},
		{"negative capacity", func(in *EventInput) { in.MaxCapacity = -1 }, "max_capacity"},
		{"too many tags", func(in *EventInput) { in.Tags = make([]string, 11) }, "tags"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validEventInput()
			tc.mutate(&in)
			err := in.Validate()
			if err == nil {
				t.Fatal("invalid input accepted")
			}
			if !fieldsOf(t, err)[tc.field] {
				t.Errorf("violations %v do not mention %q", err, tc.field)
			}
		})
	}
}

func TestEventInputCollectsAllViolations(t *testing.T) {
	in := EventInput{Title: "x", Category: "nope", Date: "bad", Location: ""}
	err := in.Validate()
	if err == nil {
		t.Fatal("invalid input accepted")
	}
	got := fieldsOf(t, err)
	for _, f := range []string{"title", "category", "date", "location"} {
		if !got[f] {
			t.Errorf("missing violation for %q in %v", f, err)
		}
	}
}

func TestRegisterInputValidate(t *testing.T) {
	in := RegisterInput{Username: "alice", Email: "Alice@Example.com", Password: "hunter2hunter2"}
	if err := in.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if in.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", in.Email)
	}

	bad := RegisterInput{Username: "ab", Email: "not-an-email", Password: "short"}
	err := bad.Validate()
	if err == nil {
		t.Fatal("invalid input accepted")
	}
	got := fieldsOf(t, err)
	for _, f := range []string{"username", "email", "password"} {
		if !got[f] {
			t.Errorf("missing violation for %q", f)
		}
	}
}

func TestLoginInputValidate(t *testing.T) {
	in := LoginInput{Email: "alice@example.com", Password: "hunter2"}
	if err := in.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if err := (&LoginInput{Email: "nope", Password: ""}).Validate(); err == nil {
		t.Fatal("invalid login accepted")
	}
}
