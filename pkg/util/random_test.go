package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAccountCode(t *testing.T) {
	tests := []struct {
		name   string
		length int
	}{
		{"zero", 0},
		{"negative", -1},
		{"six digits", 6},
		{"twelve digits", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := GenerateAccountCode(tt.length)
			if tt.length <= 0 {
				assert.Empty(t, code)
				return
			}
			assert.Len(t, code, tt.length)
			for _, r := range code {
				assert.True(t, r >= '0' && r <= '9', "unexpected rune %q", r)
			}
		})
	}
}
