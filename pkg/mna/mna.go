// Package mna implements Modified Nodal Analysis over a dense node index
// space. Node indices below zero are the reference node (ground).
//
// The assembled system follows the canonical block layout
//
//	[ G  B ] [ v ]   [ i ]
//	[ C  D ] [ j ] = [ e ]
//
// with one extra unknown current per voltage source and per op-amp.
// See https://www.swarthmore.edu/NatSci/echeeve1/Ref/mna/MNA3.html
package mna

import (
	"github.com/Jacajack/myspice/pkg/matrix"
	"github.com/Jacajack/myspice/pkg/util"
)

// Admittance is a generalised passive element between two nodes.
type Admittance struct {
	NodeA, NodeB int
	Y            complex128
}

// VoltageSource is an ideal EMF. NodeA is the "+" terminal.
type VoltageSource struct {
	NodeA, NodeB int
	V            complex128
}

// CurrentSource is an ideal current source. Current flows from NodeB to
// NodeA inside the source, into the external circuit at NodeA.
type CurrentSource struct {
	NodeA, NodeB int
	I            complex128
}

// OpAmp is an ideal operational amplifier assumed to operate in the
// linear region under negative feedback. Swapping the inputs changes
// nothing in this model.
type OpAmp struct {
	PosInput, NegInput, Output int
}

// Problem is a circuit degenerated to admittance, source and op-amp
// lists. Slice order of voltage sources and op-amps determines their
// branch index in the solution vector.
type Problem struct {
	Admittances    []Admittance
	VoltageSources []VoltageSource
	CurrentSources []CurrentSource
	OpAmps         []OpAmp
}

// Clear empties all element lists, keeping allocated capacity.
func (p *Problem) Clear() {
	p.Admittances = p.Admittances[:0]
	p.VoltageSources = p.VoltageSources[:0]
	p.CurrentSources = p.CurrentSources[:0]
	p.OpAmps = p.OpAmps[:0]
}

// MaxNode returns the highest node index referenced by any element, or
// -1 when the problem is empty or references only ground.
func (p *Problem) MaxNode() int {
	maxNode := -1
	for _, a := range p.Admittances {
		maxNode = util.Max(maxNode, util.Max(a.NodeA, a.NodeB))
	}
	for _, vs := range p.VoltageSources {
		maxNode = util.Max(maxNode, util.Max(vs.NodeA, vs.NodeB))
	}
	for _, cs := range p.CurrentSources {
		maxNode = util.Max(maxNode, util.Max(cs.NodeA, cs.NodeB))
	}
	for _, opa := range p.OpAmps {
		maxNode = util.Max(maxNode, util.Max(opa.PosInput, util.Max(opa.NegInput, opa.Output)))
	}
	return maxNode
}

// Solve assembles the MNA system and solves it by Gaussian elimination.
// Returns ErrSingular when the system has no unique solution.
func (p *Problem) Solve() (*Solution, error) {
	nodeCount := p.MaxNode() + 1

	a := p.matrixA(nodeCount)
	z := p.vectorZ(nodeCount)

	system, err := matrix.JoinHorizontal(a, z)
	if err != nil {
		return nil, err
	}

	x, err := gaussianElimination(system)
	if err != nil {
		return nil, err
	}

	return &Solution{
		vector:             x,
		nodeCount:          nodeCount,
		voltageSourceCount: len(p.VoltageSources),
	}, nil
}

// matrixA builds the square coefficient matrix from the G, B, C and D
// blocks.
func (p *Problem) matrixA(nodeCount int) *matrix.Matrix {
	n := nodeCount
	m := len(p.VoltageSources) + len(p.OpAmps)

	g := matrix.New(n, n)
	b := matrix.New(n, m)
	d := matrix.New(m, m)

	// Each diagonal entry of G sums the admittances attached to the node;
	// off-diagonal entries are negated admittances between node pairs.
	// Elements touching ground contribute to the diagonal only.
	for _, elem := range p.Admittances {
		if elem.NodeA >= 0 {
			g.Add(elem.NodeA, elem.NodeA, elem.Y)
		}
		if elem.NodeB >= 0 {
			g.Add(elem.NodeB, elem.NodeB, elem.Y)
		}
		if elem.NodeA >= 0 && elem.NodeB >= 0 {
			g.Add(elem.NodeA, elem.NodeB, -elem.Y)
			g.Add(elem.NodeB, elem.NodeA, -elem.Y)
		}
	}

	// Independent voltage sources occupy the first columns of B.
	for i, vs := range p.VoltageSources {
		if vs.NodeA >= 0 {
			b.Set(vs.NodeA, i, 1)
		}
		if vs.NodeB >= 0 {
			b.Set(vs.NodeB, i, -1)
		}
	}

	// C transposes the independent-source part of B before the op-amp
	// columns are added to B.
	c := b.Transpose()

	// The op-amp output behaves as a voltage source between ground and
	// the output node: it appears in B so that KCL at the output node
	// admits the output current.
	for i, opa := range p.OpAmps {
		if opa.Output >= 0 {
			b.Set(opa.Output, len(p.VoltageSources)+i, 1)
		}
	}

	// The op-amp rows of C encode the virtual short v+ - v- = 0. The
	// output node deliberately does not appear here.
	for i, opa := range p.OpAmps {
		row := len(p.VoltageSources) + i
		if opa.PosInput >= 0 {
			c.Set(row, opa.PosInput, 1)
		}
		if opa.NegInput >= 0 {
			c.Set(row, opa.NegInput, -1)
		}
	}

	// Shapes are consistent by construction, the joins cannot fail.
	top, _ := matrix.JoinHorizontal(g, b)
	bottom, _ := matrix.JoinHorizontal(c, d)
	a, _ := matrix.JoinVertical(top, bottom)
	return a
}

// vectorZ builds the excitation vector z = [i; e].
func (p *Problem) vectorZ(nodeCount int) *matrix.Matrix {
	n := nodeCount
	m := len(p.VoltageSources) + len(p.OpAmps)

	i := matrix.New(n, 1)
	e := matrix.New(m, 1)

	for _, cs := range p.CurrentSources {
		if cs.NodeA >= 0 {
			i.Add(cs.NodeA, 0, cs.I)
		}
		if cs.NodeB >= 0 {
			i.Add(cs.NodeB, 0, -cs.I)
		}
	}

	for k, vs := range p.VoltageSources {
		e.Set(k, 0, vs.V)
	}

	// Op-amp entries of e stay zero: the virtual short is homogeneous.
	z, _ := matrix.JoinVertical(i, e)
	return z
}
