// Package domain contains core concepts of the chat client.
// This file defines the Identity a session connects with.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Identity struct {
	Name string `validate:"required"`
	Role string `validate:"required"`
}

func NewIdentity(name, role string) Identity {
	return Identity{Name: strings.TrimSpace(name), Role: strings.TrimSpace(role)}
}

// Validate rejects identities whose trimmed name or role is empty.
func (i Identity) Validate() error {
	return validate.Struct(NewIdentity(i.Name, i.Role))
}

// ValidateStruct exposes the shared validator for wire envelopes.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}
