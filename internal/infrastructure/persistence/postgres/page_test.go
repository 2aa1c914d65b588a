package postgres

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageParams(t *testing.T) {
	tests := []struct {
		offset, limit int
		wantOffset    int32
		wantLimit     int32
	}{
		{0, 20, 0, 20},
		{40, 100, 40, 100},
		{-3, 10, 0, 10},
		{0, -1, 0, math.MaxInt32},
		{1, math.MaxInt, 1, math.MaxInt32},
		{math.MaxInt, 5, math.MaxInt32, 5},
		{math.MaxInt32 + 1, math.MaxInt32 + 1, math.MaxInt32, math.MaxInt32},
	}
	for _, tt := range tests {
		offset, limit := pageParams(tt.offset, tt.limit)
		assert.Equal(t, tt.wantOffset, offset, "offset=%d limit=%d", tt.offset, tt.limit)
		assert.Equal(t, tt.wantLimit, limit, "offset=%d limit=%d", tt.offset, tt.limit)
	}
}
