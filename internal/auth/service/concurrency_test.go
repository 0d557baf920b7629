package service_test

import (
	"testing"

	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/stretchr/testify/require"
)

func TestConcurrencyGuard(t *testing.T) {
	tests := []struct {
		supplied, stored string
		wantErr          bool
	}{
		{"v1", "v1", false},
		{"v2", "v1", true},
		{"", "v1", true},
		{"", "", true},
	}

	var g service.ConcurrencyGuard
	for _, tt := range tests {
		err := g.Check(tt.supplied, tt.stored)
		if tt.wantErr {
			require.ErrorIs(t, err, service.ErrStaleObjectState, "supplied=%q stored=%q", tt.supplied, tt.stored)
		} else {
			require.NoError(t, err)
		}
	}
}
