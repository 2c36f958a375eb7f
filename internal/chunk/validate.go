package chunk

import (
	"github.com/starford/havenfs/internal/diag"
)

// Validate performs the structural pass over the complete header sequence.
// It only reports; no chunk is ever discarded.
//
//   - INVALID_RANGE: a range whose low bound exceeds its high bound.
//   - DUPLICATE_CHUNK: a type declared more than once where at least one
//     declaration has no range to tell the segments apart.
//   - OVERLAPPING_RANGE: two ranged chunks of the same type share values.
//   - DUPLICATE_OFFSET: two chunks declare the same offset.
func Validate(headers []Header, sink *diag.Sink) {
	byType := make(map[string][]int)
	offsets := make(map[int]int)

	for i, h := range headers {
		if h.Range != nil && h.Range.Low > h.Range.High {
			sink.Report(diag.CodeInvalidRange, h.Pos,
				"Invalid range %s in chunk %q", h.Range, h.Type)
		}

		if h.Offset != nil {
			if first, dup := offsets[*h.Offset]; dup {
				sink.Report(diag.CodeDuplicateOffset, h.Pos,
					"Chunk %q reuses offset @%d of chunk %q", h.Type, *h.Offset, headers[first].Type)
			} else {
				offsets[*h.Offset] = i
			}
		}

		if h.Type == "" {
			continue
		}
		duplicate := false
		for _, j := range byType[h.Type] {
			prev := headers[j]
			switch {
			case prev.Range == nil || h.Range == nil:
				duplicate = true
			case prev.Range.Overlaps(*h.Range):
				sink.Report(diag.CodeOverlappingRange, h.Pos,
					"Range %s of chunk %q overlaps range %s", h.Range, h.Type, prev.Range)
			}
		}
		if duplicate {
			sink.Report(diag.CodeDuplicateChunk, h.Pos,
				"Duplicate chunk %q without a distinguishing range", h.Type)
		}
		byType[h.Type] = append(byType[h.Type], i)
	}
}
