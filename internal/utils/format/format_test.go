package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComma(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{100, "100"},
		{1000, "1,000"},
		{100000, "100,000"},
		{2000000, "2,000,000"},
		{1234567.5, "1,234,567.5"},
		{-45000, "-45,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Comma(tt.in))
	}
}
