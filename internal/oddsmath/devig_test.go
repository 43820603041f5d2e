package oddsmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevig(t *testing.T) {
	tests := []struct {
		name    string
		odds    []float64
		want    []float64
		wantErr bool
	}{
		{
			name: "standard -110/-110",
			odds: []float64{1.91, 1.91},
			want: []float64{0.5, 0.5},
		},
		{
			name: "fair line is a no-op",
			odds: []float64{3.0, 1.5},
			want: []float64{1.0 / 3.0, 2.0 / 3.0},
		},
		{
			name: "heavy favorite -200/+170",
			odds: []float64{1.5, 2.7},
			want: []float64{0.6429, 0.3571},
		},
		{
			name: "three-way soccer market",
			odds: []float64{2.1, 3.4, 3.6},
			want: []float64{0.4543, 0.2806, 0.2650},
		},
		{name: "single outcome", odds: []float64{1.5}, wantErr: true},
		{name: "empty", odds: nil, wantErr: true},
		{name: "odds at one", odds: []float64{1.0, 2.0}, wantErr: true},
		{name: "negative odds", odds: []float64{-1.5, 2.0}, wantErr: true},
		{name: "NaN odds", odds: []float64{math.NaN(), 2.0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Devig(tt.odds)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrDevig)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-3)
			}
		})
	}
}

func TestDevigSumsToOne(t *testing.T) {
	markets := [][]float64{
		{1.91, 1.91},
		{1.5, 2.7},
		{1.01, 25.0},
		{2.1, 3.4, 3.6},
		{4.5, 5.0, 6.0, 7.5, 9.0, 11.0, 15.0, 21.0},
		{1.2, 1.2, 1.2},
	}

	for _, odds := range markets {
		fair, err := Devig(odds)
		require.NoError(t, err)

		sum := 0.0
		for _, p := range fair {
			assert.Greater(t, p, 0.0)
			assert.Less(t, p, 1.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "odds %v", odds)
	}
}

func TestDevigPreservesOrdering(t *testing.T) {
	fair, err := Devig([]float64{1.4, 3.2, 8.0})
	require.NoError(t, err)
	assert.Greater(t, fair[0], fair[1])
	assert.Greater(t, fair[1], fair[2])
}

func TestOverround(t *testing.T) {
	margin, err := Overround([]float64{1.91, 1.91})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/1.91-1.0, margin, 1e-12)

	margin, err = Overround([]float64{3.0, 1.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, margin, 1e-12)

	_, err = Overround([]float64{2.0})
	assert.ErrorIs(t, err, ErrDevig)
}
