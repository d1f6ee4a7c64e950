package pure_utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"trims", "  12 Main St  ", "12 Main St"},
		{"collapses inner spaces", "12   Main \t St", "12 Main St"},
		{"collapses newlines", "12\nMain\r\nSt", "12 Main St"},
		{"keeps case", "12 MAIN st", "12 MAIN st"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.in))
			assert.Equal(t, tt.want, NormalizeCity(tt.in))
		})
	}
}

func TestNormalizeState(t *testing.T) {
	assert.Equal(t, "TX", NormalizeState(" tx "))
	assert.Equal(t, "CA", NormalizeState("CA"))
	assert.Equal(t, "", NormalizeState("   "))
}

func TestNormalizeZip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12345", "12345"},
		{"12345-6789", "12345"},
		{"123456789", "12345"},
		{"abc123-4", "1234"},
		{" 0 1 2 ", "012"},
		{"", ""},
		{"no digits", ""},
		{"１２３４５", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeZip(tt.in))
		})
	}
}

func TestNormalizeZip_idempotent(t *testing.T) {
	for _, in := range []string{"12345-6789", "abc123-4", "9"} {
		once := NormalizeZip(in)
		assert.Equal(t, once, NormalizeZip(once))
	}
}

func TestFoldCase(t *testing.T) {
	assert.Equal(t, FoldCase("12 Main St"), FoldCase("12 MAIN ST"))
	assert.NotEqual(t, FoldCase("12 Main St"), FoldCase("12 Main Rd"))
	assert.Equal(t, "propertyaddress", FoldCase("PropertyAddress"))
}
