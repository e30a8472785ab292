package model

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldError describes a single invalid field in a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors collects every violation found in a payload so clients can fix
// them all at once.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "invalid input"
	}
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return strings.Join(parts, "; ")
}

func (fe *FieldErrors) add(field, message string) {
	*fe = append(*fe, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no violations were recorded, so callers can write
// `if err := in.Validate(); err != nil`.
func (fe FieldErrors) OrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate checks an event payload against the field constraints. It runs at
// the HTTP boundary, before any core logic sees the input.
func (in *EventInput) Validate() error {
	var errs FieldErrors

	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)

	switch n := len(in.Title); {
	case n < 3:
		errs.add("title", "must be at least 3 characters")
	case n > 100:
		errs.add("title", "cannot exceed 100 characters")
	}
	if len(in.Description) > 2000 {
		errs.add("description", "cannot exceed 2000 characters")
	}
	if !ValidCategory(in.Category) {
		errs.add("category", "must be one of: "+strings.Join(Categories, ", "))
	}
	if !dateRe.MatchString(in.Date) {
		errs.add("date", "must be in YYYY-MM-DD format")
	}
	switch n := len(in.Location); {
	case n == 0:
		errs.add("location", "is required")
	case n > 200:
		errs.add("location", "cannot exceed 200 characters")
	}
	if len(in.ContactInfo) > 100 {
		errs.add("contact_info", "cannot exceed 100 characters")
	}
	if in.MaxCapacity < 0 {
		errs.add("max_capacity", "cannot be negative")
	}
	if len(in.Tags) > 10 {
		errs.add("tags", "cannot have more than 10 tags")
	}

	return errs.OrNil()
}

// Validate checks a registration payload.
func (in *RegisterInput) Validate() error {
	var errs FieldErrors

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	switch n := len(in.Username); {
	case n < 3:
		errs.add("username", "must be at least 3 characters")
	case n > 30:
		errs.add("username", "cannot exceed 30 characters")
	}
	if !validEmail(in.Email) {
		errs.add("email", "must be a valid email address")
	}
	if len(in.Password) < 8 {
		errs.add("password", "must be at least 8 characters")
	}

	return errs.OrNil()
}

// Validate checks a login payload.
func (in *LoginInput) Validate() error {
	var errs FieldErrors

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if !validEmail(in.Email) {
		errs.add("email", "must be a valid email address")
	}
	if in.Password == "" {
		errs.add("password", "is required")
	}

	return errs.OrNil()
}

// validEmail does a basic structural check (no external deps).
func validEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
