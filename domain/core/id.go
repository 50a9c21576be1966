package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	TemplateID ID
	ProjectID  ID
)

// String conversions for domain IDs
func (id TemplateID) String() string { return ID(id).String() }
func (id ProjectID) String() string  { return ID(id).String() }

// Emptiness checks for domain IDs
func (id TemplateID) IsEmpty() bool { return ID(id).IsEmpty() }
func (id ProjectID) IsEmpty() bool  { return ID(id).IsEmpty() }

// NewTemplateID creates a fresh template identifier
func NewTemplateID() TemplateID { return TemplateID(NewID()) }

// ParseTemplateID parses a string into TemplateID
func ParseTemplateID(s string) (TemplateID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("template ID cannot be empty")
	}
	return TemplateID(s), nil
}

// ParseProjectID parses a string into ProjectID
func ParseProjectID(s string) (ProjectID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("project ID cannot be empty")
	}
	return ProjectID(s), nil
}
