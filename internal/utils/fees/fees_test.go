package fees_test

import (
	"testing"

	"github.com/renohub/reno_backend/internal/utils/fees"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestSettlementAmount(t *testing.T) {
	testCases := []struct {
		name       string
		workPrice  string
		quantity   string
		minimum    string
		isSet      bool
		expected   string
	}{
		{"minimum overrides single low-priced item", "80", "1", "100", true, "100"},
		{"minimum ignored when quantity above one", "80", "2", "100", true, "160"},
		{"minimum ignored when not set", "80", "1", "100", false, "80"},
		{"minimum ignored when price meets it", "120", "1", "100", true, "120"},
		{"price equal to minimum settles at price", "100", "1", "100", true, "100"},
		{"plain multiplication", "150", "3", "0", false, "450"},
		{"fractional quantity", "120", "2.5", "0", false, "300"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := fees.SettlementAmount(d(tc.workPrice), d(tc.quantity), d(tc.minimum), tc.isSet)
			assert.True(t, d(tc.expected).Equal(got), "expected %s, got %s", tc.expected, got)
		})
	}
}

func TestServiceFee(t *testing.T) {
	assert.True(t, d("900").Equal(fees.ServiceFee(d("9000"))))
	assert.True(t, d("12.35").Equal(fees.ServiceFee(d("123.45"))))
	assert.True(t, decimal.Zero.Equal(fees.ServiceFee(decimal.Zero)))
}

func TestGangmasterFee(t *testing.T) {
	testCases := []struct {
		name           string
		area           string
		cost           string
		expectedFee    string
		expectedVisits int
	}{
		{"tier 0 boundary at step", "60", "18000", "8000", 24},
		{"one above step moves to tier 1", "60", "18001", "9000", 27},
		{"tier 1 boundary at 1.35x step", "60", "24300", "9000", 27},
		{"tier 2 just above 1.35x step", "60", "24301", "10000", 30},
		{"tier 2 boundary at 1.7x step", "60", "30600", "10000", 30},
		{"tier 3 above 1.7x step", "60", "30601", "11000", 33},
		{"area below 60 clamps to first band", "45", "18000", "8000", 24},
		{"second band base values", "75", "20000", "8400", 26},
		{"last tabulated band", "200", "44000", "13200", 50},
		{"synthesized band past 200", "205", "46000", "13600", 52},
		{"synthesized band two increments out", "212", "48000", "14000", 54},
		{"e2e vector area 65 cost 9000", "65", "9000", "8000", 24},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fee, visits := fees.GangmasterFee(d(tc.area), d(tc.cost))
			assert.True(t, d(tc.expectedFee).Equal(fee), "expected fee %s, got %s", tc.expectedFee, fee)
			assert.Equal(t, tc.expectedVisits, visits)
		})
	}
}
