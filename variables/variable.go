// Package variables stores named values and substitutes them into converted
// Cypress code.
//
// A variable named baseUrl with value 'https://staging.example.test' turns
//
//	cy.visit(baseUrl);
//
// into
//
//	cy.visit('https://staging.example.test');
package variables

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no variable matches the id or name.
	ErrNotFound = errors.New("variable not found")
	// ErrDuplicateName is returned when a name is already taken.
	ErrDuplicateName = errors.New("variable name already exists")
	// ErrInvalidVariable is returned for an empty name or value.
	ErrInvalidVariable = errors.New("variable name and value are required")
)

// Variable is a named value.
type Variable struct {
	ID        string
	Name      string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store lists the variables used for substitution.
type Store interface {
	GetAll(ctx context.Context) ([]Variable, error)
}

// normalize trims name and value and rejects empty ones.
func normalize(name, value string) (string, string, error) {
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if name == "" || value == "" {
		return "", "", ErrInvalidVariable
	}
	return name, value, nil
}
