package sqlutil

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"summary table", "integration_summary", "`integration_summary`"},
		{"client prefixed", "acme_Membership_Summary", "`acme_Membership_Summary`"},
		{"embedded backtick", "sum`mary", "`sum``mary`"},
		{"only backtick", "`", "``````"},
		{"empty", "", "``"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuoteIdentifier(tt.input))
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"integration_summary", true},
		{"Summary2024", true},
		{strings.Repeat("a", MaxIdentifierLength), true},
		{strings.Repeat("a", MaxIdentifierLength+1), false},
		{"", false},
		{"summary-table", false},
		{"db.summary", false},
		{"summary; DROP TABLE x", false},
		{"sum`mary", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidIdentifier(tt.input))
		})
	}
}

func TestQuoteIdentifierSafe(t *testing.T) {
	quoted, err := QuoteIdentifierSafe("integration_summary")
	require.NoError(t, err)
	assert.Equal(t, "`integration_summary`", quoted)

	quoted, err = QuoteIdentifierSafe("bad name")
	require.Error(t, err)
	assert.Empty(t, quoted)

	var invalid *InvalidIdentifierError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "bad name", invalid.Name)
	assert.Contains(t, err.Error(), `"bad name"`)
	assert.Contains(t, err.Error(), "at most 64 characters")
}
