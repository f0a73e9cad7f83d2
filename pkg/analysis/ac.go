package analysis

import (
	"fmt"
	"math"

	"github.com/Jacajack/myspice/pkg/circuit"
)

// SweepParams describes an AC frequency sweep.
//
// Base 0 (or 1) selects a linear sweep with Steps points in total.
// Any other base selects a logarithmic sweep with Steps points per
// Base-fold change of frequency (10 for decade, 2 for octave sweeps).
type SweepParams struct {
	FStart float64 // lower frequency bound [Hz]
	FStop  float64 // upper frequency bound [Hz]
	Steps  int
	Base   float64
}

// Linear reports whether the sweep is linearly spaced.
func (p SweepParams) Linear() bool {
	return p.Base == 0 || p.Base == 1
}

// Omegas returns the pulsation grid of the sweep. The grid is a pure
// function of the parameters, so identical sweeps sample identical
// pulsations.
func (p SweepParams) Omegas() []float64 {
	startOmega := 2 * math.Pi * p.FStart
	stopOmega := 2 * math.Pi * p.FStop

	steps := p.Steps
	if !p.Linear() {
		steps = int(math.Floor(float64(p.Steps) * math.Log(p.FStop/p.FStart) / math.Log(p.Base)))
	}
	if steps <= 1 {
		return []float64{startOmega}
	}

	omegas := make([]float64, steps)
	for i := 0; i < steps; i++ {
		if p.Linear() {
			omegas[i] = startOmega + (stopOmega-startOmega)*float64(i)/float64(steps-1)
		} else {
			s := math.Log(startOmega) / math.Log(p.Base)
			e := math.Log(stopOmega) / math.Log(p.Base)
			omegas[i] = math.Pow(p.Base, s+(e-s)*float64(i)/float64(steps-1))
		}
	}
	return omegas
}

// ACSweep runs a small-signal analysis over a frequency grid and
// collects probe values per step.
type ACSweep struct {
	params SweepParams
	probes []Probe
	names  []string

	freqs []float64
	rows  [][]float64
}

func NewACSweep(params SweepParams, probes []Probe) *ACSweep {
	names := make([]string, len(probes))
	for i, p := range probes {
		names[i] = p.Name()
	}
	return &ACSweep{params: params, probes: probes, names: names}
}

// Execute solves the circuit once per grid point and probes each
// solution.
func (ac *ACSweep) Execute(solver *circuit.Solver) error {
	omegas := ac.params.Omegas()
	ac.freqs = make([]float64, 0, len(omegas))
	ac.rows = make([][]float64, 0, len(omegas))

	for step, omega := range omegas {
		if err := solver.Solve(omega); err != nil {
			return fmt.Errorf("could not perform step %d of small signal AC analysis: %w", step, err)
		}

		row := make([]float64, len(ac.probes))
		for i, p := range ac.probes {
			v, err := p.Value(solver)
			if err != nil {
				return fmt.Errorf("AC probing failed: %w", err)
			}
			row[i] = v
		}

		ac.freqs = append(ac.freqs, omega/(2*math.Pi))
		ac.rows = append(ac.rows, row)
	}
	return nil
}

// Names returns probe names in probe-list order.
func (ac *ACSweep) Names() []string {
	return ac.names
}

// Frequencies returns the swept frequencies in hertz, one per step.
func (ac *ACSweep) Frequencies() []float64 {
	return ac.freqs
}

// Rows returns the probed values, one row per step, columns aligned
// with Names.
func (ac *ACSweep) Rows() [][]float64 {
	return ac.rows
}

// Column extracts the values of a single probe across all steps.
func (ac *ACSweep) Column(i int) []float64 {
	col := make([]float64, len(ac.rows))
	for step, row := range ac.rows {
		col[step] = row[i]
	}
	return col
}
