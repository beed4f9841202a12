package model

// GridColumns is the width of a preview row in grid columns.
const GridColumns = 12

// ColumnSpan returns the column span of each member of a group with size
// members: two members share the row in halves, three in thirds, and any
// other size stacks full-width.
func ColumnSpan(size int) int {
	switch size {
	case 2:
		return GridColumns / 2
	case 3:
		return GridColumns / 3
	default:
		return GridColumns
	}
}

// Spans returns the column span for every field of the entry. Single fields
// always span the full row.
func (e Entry) Spans() []int {
	spans := make([]int, len(e.Fields))
	span := GridColumns
	if e.Grouped {
		span = ColumnSpan(len(e.Fields))
	}
	for i := range spans {
		spans[i] = span
	}
	return spans
}
