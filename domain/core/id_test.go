package core

import (
	"testing"
	"time"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestDomainIDIsEmpty tests emptiness checks on the typed IDs
func TestDomainIDIsEmpty(t *testing.T) {
	if !TemplateID("").IsEmpty() || !ProjectID("").IsEmpty() {
		t.Error("Expected empty domain IDs to be empty")
	}
	if NewTemplateID().IsEmpty() {
		t.Error("Expected generated template ID to not be empty")
	}
	if ProjectID("crm").IsEmpty() {
		t.Error("Expected non-empty project ID to not be empty")
	}
}

// TestClocks tests the fixed and system clocks
func TestClocks(t *testing.T) {
	at := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	if got := FixedClock(at)(); !got.Equal(at) {
		t.Errorf("Expected %s, got %s", at, got)
	}
	if loc := SystemClock().Location(); loc != time.UTC {
		t.Errorf("Expected UTC system clock, got %s", loc)
	}
}

// TestParseTemplateID tests template ID parsing
func TestParseTemplateID(t *testing.T) {
	tests := []struct {
		input    string
		expected TemplateID
		hasError bool
	}{
		{"valid-id", TemplateID("valid-id"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		result, err := ParseTemplateID(tt.input)
		if tt.hasError && err == nil {
			t.Errorf("Expected error for input '%s'", tt.input)
		}
		if !tt.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, result)
		}
	}
}

// TestComputeSampleHashIgnoresKeyOrder checks the fingerprint is stable across map construction order
func TestComputeSampleHashIgnoresKeyOrder(t *testing.T) {
	a := []map[string]interface{}{{"name": "Dana", "amount": 10}}
	b := []map[string]interface{}{{"amount": 10, "name": "Dana"}}
	if ComputeSampleHash(a) != ComputeSampleHash(b) {
		t.Error("Expected identical hashes for identical rows")
	}

	c := []map[string]interface{}{{"amount": 11, "name": "Dana"}}
	if ComputeSampleHash(a) == ComputeSampleHash(c) {
		t.Error("Expected different hashes for different rows")
	}
}
