// Package matrix provides a dense complex matrix container for the MNA
// solver. Algebra beyond shape manipulation lives in pkg/mna.
package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange reports an element access outside the matrix.
	ErrOutOfRange = errors.New("matrix: access out of range")
	// ErrDimension reports an operation on matrices with incompatible shapes.
	ErrDimension = errors.New("matrix: incompatible dimensions")
)

// Matrix is a rectangular, row-major container of complex values.
// Rows and columns are indexed from zero. Element access panics with
// ErrOutOfRange outside the matrix bounds.
type Matrix struct {
	data []complex128
	h, w int
}

// New returns a zero-initialised h x w matrix.
func New(h, w int) *Matrix {
	return &Matrix{
		data: make([]complex128, h*w),
		h:    h,
		w:    w,
	}
}

func (m *Matrix) Height() int { return m.h }
func (m *Matrix) Width() int  { return m.w }

func (m *Matrix) checkBounds(row, col int) {
	if row < 0 || row >= m.h || col < 0 || col >= m.w {
		panic(fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, row, col, m.h, m.w))
	}
}

// At returns the element at (row, col).
func (m *Matrix) At(row, col int) complex128 {
	m.checkBounds(row, col)
	return m.data[row*m.w+col]
}

// Set overwrites the element at (row, col).
func (m *Matrix) Set(row, col int, v complex128) {
	m.checkBounds(row, col)
	m.data[row*m.w+col] = v
}

// Add accumulates v into the element at (row, col).
func (m *Matrix) Add(row, col int, v complex128) {
	m.checkBounds(row, col)
	m.data[row*m.w+col] += v
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	c := New(m.h, m.w)
	copy(c.data, m.data)
	return c
}

// Transpose returns a fresh w x h transposed matrix.
func (m *Matrix) Transpose() *Matrix {
	t := New(m.w, m.h)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			t.data[x*t.w+y] = m.data[y*m.w+x]
		}
	}
	return t
}

// Replace overwrites the sub-rectangle starting at (row, col) with sub.
func (m *Matrix) Replace(row, col int, sub *Matrix) error {
	if row < 0 || col < 0 || row+sub.h > m.h || col+sub.w > m.w {
		return fmt.Errorf("%w: replacing %dx%d at (%d,%d) in %dx%d",
			ErrOutOfRange, sub.h, sub.w, row, col, m.h, m.w)
	}
	for y := 0; y < sub.h; y++ {
		copy(m.data[(row+y)*m.w+col:(row+y)*m.w+col+sub.w], sub.data[y*sub.w:(y+1)*sub.w])
	}
	return nil
}

// JoinHorizontal returns [L R]. The matrices must have equal heights.
func JoinHorizontal(l, r *Matrix) (*Matrix, error) {
	if l.h != r.h {
		return nil, fmt.Errorf("%w: horizontal join of heights %d and %d", ErrDimension, l.h, r.h)
	}
	m := New(l.h, l.w+r.w)
	m.Replace(0, 0, l)
	m.Replace(0, l.w, r)
	return m, nil
}

// JoinVertical returns [U; D]. The matrices must have equal widths.
func JoinVertical(u, d *Matrix) (*Matrix, error) {
	if u.w != d.w {
		return nil, fmt.Errorf("%w: vertical join of widths %d and %d", ErrDimension, u.w, d.w)
	}
	m := New(u.h+d.h, u.w)
	m.Replace(0, 0, u)
	m.Replace(u.h, 0, d)
	return m, nil
}

// Mul returns the matrix product l * r.
func Mul(l, r *Matrix) (*Matrix, error) {
	if l.w != r.h {
		return nil, fmt.Errorf("%w: multiplying %dx%d by %dx%d", ErrDimension, l.h, l.w, r.h, r.w)
	}
	m := New(l.h, r.w)
	for i := 0; i < l.h; i++ {
		for j := 0; j < r.w; j++ {
			var sum complex128
			for k := 0; k < l.w; k++ {
				sum += l.data[i*l.w+k] * r.data[k*r.w+j]
			}
			m.data[i*m.w+j] = sum
		}
	}
	return m, nil
}
