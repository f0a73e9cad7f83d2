package mna

import (
	"fmt"

	"github.com/Jacajack/myspice/pkg/matrix"
)

// Solution is a read-only view over the MNA solution vector. The first
// N entries are node potentials, the next V are voltage-source branch
// currents and the remaining entries op-amp output currents.
type Solution struct {
	vector             *matrix.Matrix
	nodeCount          int
	voltageSourceCount int
}

// Voltage returns the potential difference between two nodes. Node
// indices below zero read as ground (zero potential).
func (s *Solution) Voltage(pos, neg int) (complex128, error) {
	if pos >= s.nodeCount || neg >= s.nodeCount {
		return 0, fmt.Errorf("%w: voltage between nodes %d and %d of %d",
			matrix.ErrOutOfRange, pos, neg, s.nodeCount)
	}

	var vpos, vneg complex128
	if pos >= 0 {
		vpos = s.vector.At(pos, 0)
	}
	if neg >= 0 {
		vneg = s.vector.At(neg, 0)
	}
	return vpos - vneg, nil
}

// VoltageSourceCurrent returns the current drawn through the id-th
// voltage source. Positive current flows from the "+" terminal into
// the source.
func (s *Solution) VoltageSourceCurrent(id int) (complex128, error) {
	if id < 0 || id >= s.voltageSourceCount {
		return 0, fmt.Errorf("%w: voltage source %d of %d",
			matrix.ErrOutOfRange, id, s.voltageSourceCount)
	}
	return s.vector.At(s.nodeCount+id, 0), nil
}

// OpAmpCurrent returns the output current of the id-th op-amp.
func (s *Solution) OpAmpCurrent(id int) (complex128, error) {
	opAmpCount := s.vector.Height() - s.nodeCount - s.voltageSourceCount
	if id < 0 || id >= opAmpCount {
		return 0, fmt.Errorf("%w: op-amp %d of %d", matrix.ErrOutOfRange, id, opAmpCount)
	}
	return s.vector.At(s.nodeCount+s.voltageSourceCount+id, 0), nil
}

// NodeCount returns the number of non-ground nodes in the solved system.
func (s *Solution) NodeCount() int {
	return s.nodeCount
}

// Vector returns a copy of the raw solution vector for advanced callers.
func (s *Solution) Vector() *matrix.Matrix {
	return s.vector.Clone()
}
