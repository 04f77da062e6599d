package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "TOTAL 4.75", "TOTAL 4.75"},
		{"invalid utf8", "caf\xe9 4.75", "caf 4.75"},
		{"crlf and page break", "A\r\nB\fC\rD", "A\nB\nC\nD"},
		{"nul", "A\x00B", "AB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanText(tt.in))
		})
	}
}
