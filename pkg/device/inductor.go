package device

import (
	"github.com/Jacajack/myspice/internal/consts"
)

// Inductor is a nearly ideal inductance in henries.
//
// At omega = 0 the true admittance would be infinite, which the matrix
// formulation cannot express. The inductor is instead replaced by the
// small series resistance consts.InductorDCResistance, effectively a
// short for DC analysis.
type Inductor struct {
	Bipole
	L float64
}

func NewInductor(nodeA, nodeB int, l float64) *Inductor {
	return &Inductor{Bipole: Bipole{NodeA: nodeA, NodeB: nodeB}, L: l}
}

func (l *Inductor) GetType() string { return "L" }

func (l *Inductor) Admittance(omega float64) complex128 {
	if omega == 0 {
		return complex(1.0/consts.InductorDCResistance, 0)
	}
	return 1.0 / complex(0, omega*l.L)
}
