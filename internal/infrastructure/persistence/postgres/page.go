package postgres

import "math"

// pageParams maps offset and limit onto the int32 query parameters the same way the memory
// store reads them: a negative offset reads from the start, a negative limit reads to the end,
// and values past the int32 range saturate instead of wrapping.
func pageParams(offset, limit int) (int32, int32) {
	offset = min(max(offset, 0), math.MaxInt32)
	if limit < 0 || limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	return int32(offset), int32(limit)
}
