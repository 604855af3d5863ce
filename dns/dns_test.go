package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRecordType(t *testing.T) {
	for _, in := range []string{"A", "aaaa", " cname "} {
		_, err := NormalizeRecordType(in)
		assert.NoError(t, err, in)
	}

	recordType, err := NormalizeRecordType("cname")
	require.NoError(t, err)
	assert.Equal(t, "CNAME", recordType)

	for _, in := range []string{"MX", "TXT", ""} {
		_, err := NormalizeRecordType(in)
		assert.Error(t, err, in)
	}
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		recordType string
		content    string
		wantErr    bool
	}{
		{"A", "203.0.113.7", false},
		{"A", "2001:db8::1", true},
		{"A", "example.com", true},
		{"AAAA", "2001:db8::1", false},
		{"AAAA", "203.0.113.7", true},
		{"CNAME", "alice.github.io", false},
		{"CNAME", "https://alice.github.io", true},
		{"CNAME", "localhost", true},
		{"CNAME", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.recordType+"_"+tt.content, func(t *testing.T) {
			err := ValidateTarget(tt.recordType, tt.content)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestRecordComment(t *testing.T) {
	assert.Equal(t, "lokirent rental: alice, expires: 2026-11-17T00:00:00.000Z", RecordComment("alice", "2026-11-17T00:00:00.000Z"))
}
