// Package analysis provides the measurement (probe) layer and the DC
// operating point and AC sweep drivers built on the circuit solver.
package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/Jacajack/myspice/pkg/circuit"
)

// ProbingMethod selects which real component of a complex measurement
// a probe reports.
type ProbingMethod int

const (
	// ProbeDefault reports the real part at DC and the magnitude
	// during AC analysis.
	ProbeDefault ProbingMethod = iota
	ProbeMagnitude
	ProbePhase
	ProbeReal
	ProbeImaginary
)

// Suffix returns the probe-name suffix of the method ("" for default).
func (m ProbingMethod) Suffix() string {
	switch m {
	case ProbeMagnitude:
		return "mag"
	case ProbePhase:
		return "p"
	case ProbeReal:
		return "re"
	case ProbeImaginary:
		return "im"
	default:
		return ""
	}
}

// ProbingMethodByName maps the netlist suffixes to methods. The empty
// string selects the default method.
func ProbingMethodByName(name string) (ProbingMethod, error) {
	switch name {
	case "":
		return ProbeDefault, nil
	case "mag":
		return ProbeMagnitude, nil
	case "ph":
		return ProbePhase, nil
	case "re":
		return ProbeReal, nil
	case "im":
		return ProbeImaginary, nil
	}
	return 0, fmt.Errorf("analysis: invalid probing method %q", name)
}

// probeComplex projects a complex measurement onto the method.
func probeComplex(c complex128, method ProbingMethod, omega float64) float64 {
	switch method {
	case ProbeMagnitude:
		return cmplx.Abs(c)
	case ProbePhase:
		return cmplx.Phase(c)
	case ProbeReal:
		return real(c)
	case ProbeImaginary:
		return imag(c)
	default:
		if omega == 0 {
			return real(c)
		}
		return cmplx.Abs(c)
	}
}

// Probe is a named measurement over a solved circuit.
type Probe interface {
	Name() string
	Value(solver *circuit.Solver) (float64, error)
}

// VoltageProbe measures the voltage across a referenced component.
type VoltageProbe struct {
	ref    string
	method ProbingMethod
}

func NewVoltageProbe(ref string, method ProbingMethod) *VoltageProbe {
	return &VoltageProbe{ref: ref, method: method}
}

func (p *VoltageProbe) Name() string {
	return "V" + p.method.Suffix() + "(" + p.ref + ")"
}

func (p *VoltageProbe) Value(solver *circuit.Solver) (float64, error) {
	v, err := solver.Voltage(p.ref)
	if err != nil {
		return 0, fmt.Errorf("probing %q failed: %w", p.Name(), err)
	}
	return probeComplex(v, p.method, solver.Omega()), nil
}

// NodeVoltageProbe measures the voltage between two node labels.
type NodeVoltageProbe struct {
	pos, neg int
	method   ProbingMethod
}

func NewNodeVoltageProbe(pos, neg int, method ProbingMethod) *NodeVoltageProbe {
	return &NodeVoltageProbe{pos: pos, neg: neg, method: method}
}

func (p *NodeVoltageProbe) Name() string {
	if p.neg != 0 {
		return fmt.Sprintf("V%s(%d, %d)", p.method.Suffix(), p.pos, p.neg)
	}
	return fmt.Sprintf("V%s(%d)", p.method.Suffix(), p.pos)
}

func (p *NodeVoltageProbe) Value(solver *circuit.Solver) (float64, error) {
	v, err := solver.NodeVoltage(p.pos, p.neg)
	if err != nil {
		return 0, fmt.Errorf("probing %q failed: %w", p.Name(), err)
	}
	return probeComplex(v, p.method, solver.Omega()), nil
}

// CurrentProbe measures the current through a referenced component.
type CurrentProbe struct {
	ref    string
	method ProbingMethod
}

func NewCurrentProbe(ref string, method ProbingMethod) *CurrentProbe {
	return &CurrentProbe{ref: ref, method: method}
}

func (p *CurrentProbe) Name() string {
	return "I" + p.method.Suffix() + "(" + p.ref + ")"
}

func (p *CurrentProbe) Value(solver *circuit.Solver) (float64, error) {
	i, err := solver.Current(p.ref)
	if err != nil {
		return 0, fmt.Errorf("probing %q failed: %w", p.Name(), err)
	}
	return probeComplex(i, p.method, solver.Omega()), nil
}

// PowerProbe measures the power dissipated in a referenced component.
type PowerProbe struct {
	ref    string
	method ProbingMethod
}

func NewPowerProbe(ref string, method ProbingMethod) *PowerProbe {
	return &PowerProbe{ref: ref, method: method}
}

func (p *PowerProbe) Name() string {
	return "P" + p.method.Suffix() + "(" + p.ref + ")"
}

func (p *PowerProbe) Value(solver *circuit.Solver) (float64, error) {
	w, err := solver.Power(p.ref)
	if err != nil {
		return 0, fmt.Errorf("probing %q failed: %w", p.Name(), err)
	}
	return probeComplex(w, p.method, solver.Omega()), nil
}
