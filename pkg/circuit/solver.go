package circuit

import (
	"errors"
	"fmt"

	"github.com/Jacajack/myspice/internal/consts"
	"github.com/Jacajack/myspice/pkg/device"
	"github.com/Jacajack/myspice/pkg/mna"
)

// ErrQueryUnsupported reports a measurement requested on a component
// that does not support it.
var ErrQueryUnsupported = errors.New("circuit: measurement not supported on component")

// Solver analyses a linear circuit with MNA. It renumbers the
// user-visible node labels into the dense index space required by
// pkg/mna and answers voltage, current and power queries by component
// reference once Solve has run.
//
// A solver instance is exclusively owned by the caller during a Solve
// call; independent solvers over independent circuits need no
// coordination.
type Solver struct {
	circ    *Circuit
	nodeMap map[int]int
	problem mna.Problem

	solution *mna.Solution
	omega    float64
}

// NewSolver creates a solver bound to the circuit and computes the
// node renumbering.
func NewSolver(circ *Circuit) *Solver {
	s := &Solver{circ: circ}
	s.UpdateNodeMap()
	return s
}

// UpdateNodeMap recomputes the label to dense index mapping. Label 0
// maps to the ground sentinel; every other label referenced by a
// component gets the next free index in first-encounter order. Call
// after mutating the circuit; repeated calls without mutation produce
// the same mapping.
func (s *Solver) UpdateNodeMap() {
	s.nodeMap = map[int]int{0: consts.GroundNode}
	cnt := 0

	addNode := func(label int) {
		if _, seen := s.nodeMap[label]; !seen {
			s.nodeMap[label] = cnt
			cnt++
		}
	}

	s.circ.each(func(ref string, comp device.Component) {
		for _, label := range comp.GetNodes() {
			addNode(label)
		}
	})
}

// NodeMap returns a copy of the label to dense index mapping.
func (s *Solver) NodeMap() map[int]int {
	m := make(map[int]int, len(s.nodeMap))
	for k, v := range s.nodeMap {
		m[k] = v
	}
	return m
}

// Omega returns the pulsation the current solution was computed for.
func (s *Solver) Omega() float64 {
	return s.omega
}

// Solution exposes the raw MNA solution for advanced callers.
func (s *Solver) Solution() *mna.Solution {
	return s.solution
}

// Update recomputes the node map and, if a solution was already
// computed, re-solves at the stored pulsation.
func (s *Solver) Update() error {
	s.UpdateNodeMap()
	if s.solution != nil {
		return s.Solve(s.omega)
	}
	return nil
}

// Solve lowers the circuit into an MNA problem for the given pulsation
// and solves it. omega = 0 selects DC analysis: sources contribute
// their DC amplitudes; any other pulsation selects AC analysis with
// the AC amplitudes.
func (s *Solver) Solve(omega float64) error {
	s.omega = omega
	s.problem.Clear()

	s.circ.each(func(ref string, comp device.Component) {
		switch c := comp.(type) {
		case device.Passive:
			nodes := c.GetNodes()
			s.problem.Admittances = append(s.problem.Admittances, mna.Admittance{
				NodeA: s.nodeMap[nodes[0]],
				NodeB: s.nodeMap[nodes[1]],
				Y:     c.Admittance(omega),
			})

		case *device.VoltageSource:
			s.problem.VoltageSources = append(s.problem.VoltageSources, mna.VoltageSource{
				NodeA: s.nodeMap[c.NodeA],
				NodeB: s.nodeMap[c.NodeB],
				V:     complex(c.Amplitude(omega), 0),
			})

		case *device.CurrentSource:
			s.problem.CurrentSources = append(s.problem.CurrentSources, mna.CurrentSource{
				NodeA: s.nodeMap[c.NodeA],
				NodeB: s.nodeMap[c.NodeB],
				I:     complex(c.Amplitude(omega), 0),
			})

		case *device.OpAmp:
			s.problem.OpAmps = append(s.problem.OpAmps, mna.OpAmp{
				PosInput: s.nodeMap[c.PosInput],
				NegInput: s.nodeMap[c.NegInput],
				Output:   s.nodeMap[c.Output],
			})
		}
	})

	solution, err := s.problem.Solve()
	if err != nil {
		s.solution = nil
		return fmt.Errorf("could not compute operating point at omega = %g: %w", omega, err)
	}

	s.solution = solution
	return nil
}

// NodeVoltage measures the potential difference between two node
// labels. Label 0 is ground.
func (s *Solver) NodeVoltage(pos, neg int) (complex128, error) {
	if s.solution == nil {
		return 0, errors.New("circuit: no solution computed")
	}

	posIdx, ok := s.nodeMap[pos]
	if !ok {
		return 0, fmt.Errorf("circuit: unknown node label %d", pos)
	}
	negIdx, ok := s.nodeMap[neg]
	if !ok {
		return 0, fmt.Errorf("circuit: unknown node label %d", neg)
	}
	return s.solution.Voltage(posIdx, negIdx)
}

// ComponentVoltage measures the voltage across a component. Two-terminal
// components report the NodeA-to-NodeB drop; op-amps report the output
// node potential against ground.
func (s *Solver) ComponentVoltage(comp device.Component) (complex128, error) {
	switch c := comp.(type) {
	case *device.OpAmp:
		return s.NodeVoltage(c.Output, 0)
	default:
		nodes := comp.GetNodes()
		if len(nodes) == 2 {
			return s.NodeVoltage(nodes[0], nodes[1])
		}
	}
	return 0, fmt.Errorf("%w: voltage on %s", ErrQueryUnsupported, comp.GetType())
}

// ComponentCurrent measures the current through a component.
//
// Passives report voltage times admittance. Voltage sources and
// op-amps report the branch current from the solution vector; the
// source current is positive when flowing from the "+" terminal into
// the EMF. A current source reports the negated source amplitude, the
// current as seen "through" the component from NodeA to NodeB.
func (s *Solver) ComponentCurrent(comp device.Component) (complex128, error) {
	if s.solution == nil {
		return 0, errors.New("circuit: no solution computed")
	}

	switch c := comp.(type) {
	case device.Passive:
		v, err := s.ComponentVoltage(comp)
		if err != nil {
			return 0, err
		}
		return v * c.Admittance(s.omega), nil

	case *device.VoltageSource:
		return s.solution.VoltageSourceCurrent(s.voltageSourceIndex(c))

	case *device.CurrentSource:
		return complex(-c.Amplitude(s.omega), 0), nil

	case *device.OpAmp:
		return s.solution.OpAmpCurrent(s.opAmpIndex(c))
	}

	return 0, fmt.Errorf("%w: current through %s", ErrQueryUnsupported, comp.GetType())
}

// ComponentPower measures the complex power dissipated in a component.
func (s *Solver) ComponentPower(comp device.Component) (complex128, error) {
	v, err := s.ComponentVoltage(comp)
	if err != nil {
		return 0, err
	}
	i, err := s.ComponentCurrent(comp)
	if err != nil {
		return 0, err
	}
	return v * i, nil
}

// Voltage measures the voltage across the referenced component.
func (s *Solver) Voltage(ref string) (complex128, error) {
	comp, err := s.circ.Get(ref)
	if err != nil {
		return 0, err
	}
	return s.ComponentVoltage(comp)
}

// Current measures the current through the referenced component.
func (s *Solver) Current(ref string) (complex128, error) {
	comp, err := s.circ.Get(ref)
	if err != nil {
		return 0, err
	}
	return s.ComponentCurrent(comp)
}

// Power measures the power dissipated in the referenced component.
func (s *Solver) Power(ref string) (complex128, error) {
	comp, err := s.circ.Get(ref)
	if err != nil {
		return 0, err
	}
	return s.ComponentPower(comp)
}

// voltageSourceIndex returns the MNA branch index of a voltage source:
// its position among voltage sources in circuit iteration order.
func (s *Solver) voltageSourceIndex(vs *device.VoltageSource) int {
	cnt := 0
	for _, ref := range s.circ.refs {
		if c, ok := s.circ.comps[ref].(*device.VoltageSource); ok {
			if c == vs {
				break
			}
			cnt++
		}
	}
	return cnt
}

// opAmpIndex returns the position of an op-amp among op-amps in
// circuit iteration order.
func (s *Solver) opAmpIndex(opa *device.OpAmp) int {
	cnt := 0
	for _, ref := range s.circ.refs {
		if c, ok := s.circ.comps[ref].(*device.OpAmp); ok {
			if c == opa {
				break
			}
			cnt++
		}
	}
	return cnt
}
