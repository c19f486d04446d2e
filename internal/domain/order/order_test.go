package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Transition Table Tests
// ============================================

func TestNextStatus_AllowedTransitions(t *testing.T) {
	tests := []struct {
		action Action
		from   Status
		want   Status
	}{
		{ActionAccept, StatusNew, StatusProcessing},
		{ActionReject, StatusNew, StatusCancelled},
		{ActionShip, StatusProcessing, StatusShipped},
		{ActionDeliver, StatusShipped, StatusDelivered},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			got, err := NextStatus(tt.action, tt.from)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextStatus_WrongCurrentStatus(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		from   Status
	}{
		{"ship from new", ActionShip, StatusNew},
		{"deliver from new", ActionDeliver, StatusNew},
		{"accept from processing", ActionAccept, StatusProcessing},
		{"reject from processing", ActionReject, StatusProcessing},
		{"deliver from processing", ActionDeliver, StatusProcessing},
		{"accept from delivered", ActionAccept, StatusDelivered},
		{"ship from cancelled", ActionShip, StatusCancelled},
		{"deliver from returned", ActionDeliver, StatusReturned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NextStatus(tt.action, tt.from)
			assert.ErrorIs(t, err, ErrTransition)
		})
	}
}

func TestNextStatus_ErrorNamesExpectedStatus(t *testing.T) {
	_, err := NextStatus(ActionShip, StatusNew)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `requires status "processing"`)
}

func TestNextStatus_UnknownAction(t *testing.T) {
	_, err := NextStatus("archive", StatusNew)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

// ============================================
// Order Helper Tests
// ============================================

func TestOrder_Revenue(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusNew, false},
		{StatusProcessing, true},
		{StatusShipped, true},
		{StatusDelivered, true},
		{StatusCancelled, false},
		{StatusReturned, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			o := &Order{Status: tt.status}
			assert.Equal(t, tt.want, o.Revenue())
		})
	}
}

func TestOrder_Reversed(t *testing.T) {
	assert.True(t, (&Order{Status: StatusCancelled}).Reversed())
	assert.True(t, (&Order{Status: StatusReturned}).Reversed())
	assert.False(t, (&Order{Status: StatusDelivered}).Reversed())
	assert.False(t, (&Order{Status: StatusNew}).Reversed())
}

func TestOrder_EffectiveUpdatedAt_FallsBackToCreation(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(2 * time.Hour)

	o := &Order{CreatedAt: created}
	assert.Equal(t, created, o.EffectiveUpdatedAt())

	o.UpdatedAt = updated
	assert.Equal(t, updated, o.EffectiveUpdatedAt())
}
