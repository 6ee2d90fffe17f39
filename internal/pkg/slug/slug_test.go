package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "API Gateway", "api-gateway"},
		{"already slug", "api-gateway", "api-gateway"},
		{"diacritics", "Café Résumé", "cafe-resume"},
		{"punctuation collapses", "Auth / Login (EU)", "auth-login-eu"},
		{"leading and trailing junk", "  --Status Page--  ", "status-page"},
		{"numbers", "Region 2 DB", "region-2-db"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Make(tt.input))
		})
	}
}
