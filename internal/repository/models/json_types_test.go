package models

import (
	"testing"

	"leadsync/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestResponseMap_ValueAndScan(t *testing.T) {
	original := ResponseMap{"value_1": "A", "risk_2": "C"}

	value, err := original.Value()
	assert.NoError(t, err)

	var scanned ResponseMap
	assert.NoError(t, scanned.Scan(value))
	assert.Equal(t, original, scanned)
}

func TestResponseMap_ScanNil(t *testing.T) {
	var scanned ResponseMap
	assert.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)
}

func TestStringSlice_ValueNilIsEmptyArray(t *testing.T) {
	var s StringSlice
	value, err := s.Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", value)
}

func TestNullScoreBreakdown_Null(t *testing.T) {
	var n NullScoreBreakdown
	value, err := n.Value()
	assert.NoError(t, err)
	assert.Nil(t, value)

	assert.NoError(t, n.Scan(nil))
	assert.False(t, n.Valid)
}

func TestNullScoreBreakdown_RoundTrip(t *testing.T) {
	original := NullScoreBreakdown{
		Breakdown: domain.ScoreBreakdown{
			ValueCreation:  80,
			CustomerSafety: 55.5,
			RiskManagement: 70,
			Governance:     40,
		},
		Valid: true,
	}

	value, err := original.Value()
	assert.NoError(t, err)

	var scanned NullScoreBreakdown
	assert.NoError(t, scanned.Scan([]byte(value.(string))))
	assert.True(t, scanned.Valid)
	assert.Equal(t, original.Breakdown, scanned.Breakdown)
}

func TestToBytes_UnsupportedType(t *testing.T) {
	var scanned ResponseMap
	assert.Error(t, scanned.Scan(42))
}
