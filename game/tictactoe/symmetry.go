package tictactoe

// transform rotates a square grid counter-clockwise a number of quarter turns,
// then optionally mirrors it left to right.
type transform struct {
	rotations int
	mirror    bool
	source    []int
}

func newTransform(size, rotations int, mirror bool) transform {
	source := make([]int, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			r, c := i, j
			if mirror {
				c = size - 1 - c
			}
			for k := 0; k < rotations%4; k++ {
				r, c = c, size-1-r
			}
			source[i*size+j] = r*size + c
		}
	}
	return transform{rotations: rotations, mirror: mirror, source: source}
}

// dihedral lists the 8 symmetries of the square, identity last.
func dihedral(size int) []transform {
	transforms := make([]transform, 0, 8)
	for rotations := 1; rotations <= 4; rotations++ {
		for _, mirror := range []bool{true, false} {
			transforms = append(transforms, newTransform(size, rotations, mirror))
		}
	}
	return transforms
}

func permute[T any](cells []T, source []int) []T {
	out := make([]T, len(cells))
	for i, from := range source {
		out[i] = cells[from]
	}
	return out
}

func unpermute[T any](cells []T, source []int) []T {
	out := make([]T, len(cells))
	for i, from := range source {
		out[from] = cells[i]
	}
	return out
}

func (t transform) apply8(cells []int8) []int8 { return permute(cells, t.source) }

func (t transform) apply64(policy []float64) []float64 { return permute(policy, t.source) }

func (t transform) invert8(cells []int8) []int8 { return unpermute(cells, t.source) }
