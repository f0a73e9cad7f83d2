package analysis

import (
	"fmt"

	"github.com/Jacajack/myspice/pkg/circuit"
)

// OperatingPoint solves the circuit at omega = 0 and evaluates the
// probe list once.
type OperatingPoint struct {
	probes []Probe
	names  []string
	values []float64
}

func NewOperatingPoint(probes []Probe) *OperatingPoint {
	names := make([]string, len(probes))
	for i, p := range probes {
		names[i] = p.Name()
	}
	return &OperatingPoint{probes: probes, names: names}
}

// Execute runs the DC analysis on the solver's circuit.
func (op *OperatingPoint) Execute(solver *circuit.Solver) error {
	if err := solver.Solve(0); err != nil {
		return err
	}

	op.values = make([]float64, len(op.probes))
	for i, p := range op.probes {
		v, err := p.Value(solver)
		if err != nil {
			return fmt.Errorf("DC probing failed: %w", err)
		}
		op.values[i] = v
	}
	return nil
}

// Names returns probe names in probe-list order.
func (op *OperatingPoint) Names() []string {
	return op.names
}

// Values returns the probed values, aligned with Names.
func (op *OperatingPoint) Values() []float64 {
	return op.values
}
