package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredict(t *testing.T) {
	tests := []struct {
		name          string
		pivotTimeMs   int64
		pivotPosition float64
		isPlaying     bool
		nowMs         int64
		want          float64
	}{
		{
			name:          "playing, elapsed time is added",
			pivotTimeMs:   10_000,
			pivotPosition: 42.5,
			isPlaying:     true,
			nowMs:         17_500,
			want:          50.0,
		},
		{
			name:          "playing, zero elapsed",
			pivotTimeMs:   10_000,
			pivotPosition: 42.5,
			isPlaying:     true,
			nowMs:         10_000,
			want:          42.5,
		},
		{
			name:          "playing, clock behind pivot clamps to pivot position",
			pivotTimeMs:   10_000,
			pivotPosition: 42.5,
			isPlaying:     true,
			nowMs:         9_000,
			want:          42.5,
		},
		{
			name:          "paused, elapsed time is irrelevant",
			pivotTimeMs:   10_000,
			pivotPosition: 42.5,
			isPlaying:     false,
			nowMs:         500_000,
			want:          42.5,
		},
		{
			name:          "paused at zero",
			pivotTimeMs:   0,
			pivotPosition: 0,
			isPlaying:     false,
			nowMs:         123,
			want:          0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Predict(tt.pivotTimeMs, tt.pivotPosition, tt.isPlaying, tt.nowMs)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPredictIsIdempotent(t *testing.T) {
	first := Predict(5_000, 12.0, true, 9_000)
	second := Predict(5_000, 12.0, true, 9_000)

	assert.Equal(t, first, second)
}

func TestPredictRoundTrip(t *testing.T) {
	// a play action published at t with position p must project to p + d
	// when reconciled d later
	const (
		t0 = int64(100_000)
		p  = 33.0
		d  = int64(4_200)
	)

	got := Predict(t0, p, true, t0+d)
	assert.InDelta(t, p+float64(d)/1000, got, 1e-9)
}
