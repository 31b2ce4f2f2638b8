package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSharesExample(t *testing.T) {
	a, b := DeriveShares(300000, 76.9, 23.1)

	assert.Equal(t, 230700.0, a)
	assert.Equal(t, 69300.0, b)
	assert.Equal(t, 300000.0, a+b)
}

func TestDeriveSharesRounding(t *testing.T) {
	tests := []struct {
		total float64
		wantA float64
		wantB float64
	}{
		{total: 0, wantA: 0, wantB: 0},
		{total: 1, wantA: 1, wantB: 0},
		{total: 10, wantA: 8, wantB: 2},
		{total: 999, wantA: 768, wantB: 231},
		{total: 1000, wantA: 769, wantB: 231},
	}
	for _, tt := range tests {
		a, b := DeriveShares(tt.total, EnterprisePercent, GovernmentPercent)
		assert.Equal(t, tt.wantA, a, "share A of %v", tt.total)
		assert.Equal(t, tt.wantB, b, "share B of %v", tt.total)
	}
}

func TestDeriveSharesPartitionIsExact(t *testing.T) {
	for total := 0.0; total <= 2_000_000; total += 7919 {
		a, b := DeriveShares(total, EnterprisePercent, GovernmentPercent)
		assert.Equal(t, total, a+b, "partition of %v", total)
		assert.Equal(t, a, float64(int64(a)), "share A of %v must be whole", total)
	}
}

func TestDeriveSharesNegativeTotal(t *testing.T) {
	a, b := DeriveShares(-1000, EnterprisePercent, GovernmentPercent)
	assert.Equal(t, -769.0, a)
	assert.Equal(t, -231.0, b)
}

func TestSharesOfUsesFixedSplit(t *testing.T) {
	s := SharesOf(300000)
	assert.Equal(t, Shares{Enterprise: 230700, Government: 69300}, s)

	s = SharesOf(1001)
	assert.Equal(t, 1001.0, s.Enterprise+s.Government)
}
