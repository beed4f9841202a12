package model

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestColumnSpan(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{size: 0, want: 12},
		{size: 1, want: 12},
		{size: 2, want: 6},
		{size: 3, want: 4},
		{size: 4, want: 12},
		{size: 7, want: 12},
	}
	for _, tc := range tests {
		if got := ColumnSpan(tc.size); got != tc.want {
			t.Fatalf("ColumnSpan(%d) = %d, want %d", tc.size, got, tc.want)
		}
	}
}

func TestProperty_GroupSpansFillRow(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("two and three member groups fill exactly one row", prop.ForAll(
		func(size int) bool {
			fields := make([]Field, size)
			spans := Group(fields...).Spans()
			total := 0
			for _, span := range spans {
				total += span
			}
			switch size {
			case 2, 3:
				return total == GridColumns
			default:
				for _, span := range spans {
					if span != GridColumns {
						return false
					}
				}
				return true
			}
		},
		gen.IntRange(0, 12),
	))

	properties.Property("single fields span the full row", prop.ForAll(
		func(name string) bool {
			spans := Single(Field{Name: name}).Spans()
			return len(spans) == 1 && spans[0] == GridColumns
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
