package memory

// pageBounds returns the slice bounds of one page over n rows. A negative offset reads from
// the start; a negative limit reads to the end.
func pageBounds(n, offset, limit int) (start, end int) {
	start = min(max(offset, 0), n)
	end = n
	if limit >= 0 && limit < end-start {
		end = start + limit
	}
	return start, end
}
