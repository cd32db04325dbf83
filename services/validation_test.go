package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeadline(t *testing.T) {
	d, err := ParseDeadline("2026-12-24")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDeadline(" 2026-12-24T18:30:00+02:00 ")
	require.NoError(t, err)
	assert.Equal(t, 16, d.UTC().Hour())

	for _, bad := range []string{"", "tomorrow", "24/12/2026"} {
		_, err := ParseDeadline(bad)
		assertKind(t, err, KindPrecondition)
	}
}

func TestRequireAmount(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "smallest amount", value: "0.01"},
		{name: "largest amount", value: "9999999999.99"},
		{name: "zero", value: "0", wantErr: true},
		{name: "negative", value: "-1", wantErr: true},
		{name: "column overflow", value: "10000000000", wantErr: true},
		{name: "far too large", value: "1e12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := requireAmount("budget", decimal.RequireFromString(tt.value))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assertKind(t, err, KindPrecondition)
			assert.Equal(t, "VALIDATION_ERROR", err.(*Error).Code)
		})
	}
}
