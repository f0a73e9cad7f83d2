package mna

import "github.com/Jacajack/myspice/pkg/matrix"

// Test-only access to the assembly internals.

func (p *Problem) AssembleA(nodeCount int) *matrix.Matrix {
	return p.matrixA(nodeCount)
}

func (p *Problem) AssembleZ(nodeCount int) *matrix.Matrix {
	return p.vectorZ(nodeCount)
}

var GaussianElimination = gaussianElimination
