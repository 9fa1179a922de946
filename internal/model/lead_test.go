package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"valid", StatusValid},
		{"invalid", StatusInvalid},
		{"disposable", StatusDisposable},
		{"catchall", StatusCatchall},
		{"unknown", StatusUnknown},
		{"", StatusUnknown},
		{"bogus", StatusUnknown},
		{"VALID", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.in))
		})
	}
}

func TestCandidateAddress(t *testing.T) {
	c := Candidate{LocalPart: "jane.doe", Domain: "example.com"}
	assert.Equal(t, "jane.doe@example.com", c.Address())
}
