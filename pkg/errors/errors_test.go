package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	assert.Equal(t, "contract error: markup must not be empty", Contract("markup").Error())
	assert.Equal(t, "permanent error (code 404): gone", (&Error{Type: ErrorTypePermanent, Message: "gone", Code: 404}).Error())

	wrapped := Session("navigation failed", stderrors.New("net::ERR_NAME_NOT_RESOLVED"))
	assert.Contains(t, wrapped.Error(), "session error: navigation failed")
	assert.Contains(t, wrapped.Error(), "ERR_NAME_NOT_RESOLVED")
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("board: %w", Parse("board name", "https://example.com"))

	assert.True(t, IsType(err, ErrorTypeParse))
	assert.False(t, IsType(err, ErrorTypeSession))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeParse))
}

func TestIsPermanentReason(t *testing.T) {
	tests := []struct {
		reason string
		want   bool
	}{
		{"status 403 Forbidden", true},
		{"status 404 Not Found", true},
		{"status 429 Too Many Requests", false},
		{"status 503 Service Unavailable", false},
		{"dial tcp: connection refused", false},
		{"forbidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPermanentReason(tt.reason, DefaultPermanentMarkers))
		})
	}

	assert.False(t, IsPermanentReason("anything", []string{""}))
	assert.True(t, IsPermanentReason("status 410 Gone", []string{"Gone"}))
}
