package circuit_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Jacajack/myspice/pkg/circuit"
	"github.com/Jacajack/myspice/pkg/device"
	"github.com/Jacajack/myspice/pkg/mna"
)

func buildDivider(t *testing.T) *circuit.Circuit {
	t.Helper()
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 10, 0)))
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 2, 1e3)))
	require.NoError(t, circ.Add("R2", device.NewResistor(2, 0, 1e3)))
	return circ
}

func TestNodeMap(t *testing.T) {
	circ := buildDivider(t)
	solver := circuit.NewSolver(circ)

	m := solver.NodeMap()
	require.Negative(t, m[0])
	require.Equal(t, 0, m[1])
	require.Equal(t, 1, m[2])

	// Repeated updates without mutation keep the mapping.
	solver.UpdateNodeMap()
	require.Equal(t, m, solver.NodeMap())
}

func TestNodeMapSparseLabels(t *testing.T) {
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(100, 0, 1, 0)))
	require.NoError(t, circ.Add("R1", device.NewResistor(100, 7, 1e3)))
	require.NoError(t, circ.Add("R2", device.NewResistor(7, 0, 1e3)))

	solver := circuit.NewSolver(circ)
	m := solver.NodeMap()

	// Dense indices in first-encounter order, ground negative.
	require.Negative(t, m[0])
	require.Equal(t, 0, m[100])
	require.Equal(t, 1, m[7])
	require.Len(t, m, 3)
}

func TestResistorDivider(t *testing.T) {
	circ := buildDivider(t)
	solver := circuit.NewSolver(circ)
	require.NoError(t, solver.Solve(0))

	v2, err := solver.NodeVoltage(2, 0)
	require.NoError(t, err)
	require.InDelta(t, 5.0, real(v2), 1e-9)

	i, err := solver.Current("R1")
	require.NoError(t, err)
	require.InDelta(t, 5e-3, real(i), 1e-9)

	p, err := solver.Power("R1")
	require.NoError(t, err)
	require.InDelta(t, 25e-3, real(p), 1e-9)
}

func TestVoltageSourceAcrossResistor(t *testing.T) {
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 10, 0)))
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 0, 2e3)))

	solver := circuit.NewSolver(circ)
	require.NoError(t, solver.Solve(0))

	v1, err := solver.NodeVoltage(1, 0)
	require.NoError(t, err)
	require.InDelta(t, 10.0, real(v1), 1e-9)

	// The source current balances the resistor current, so the power
	// over all components sums to zero.
	iv, err := solver.Current("V1")
	require.NoError(t, err)
	require.InDelta(t, -5e-3, real(iv), 1e-9)

	pv, err := solver.Power("V1")
	require.NoError(t, err)
	pr, err := solver.Power("R1")
	require.NoError(t, err)
	require.InDelta(t, 0, real(pv)+real(pr), 1e-9)
}

func TestRCLowPass(t *testing.T) {
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 0, 1)))
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 2, 1e3)))
	require.NoError(t, circ.Add("C1", device.NewCapacitor(2, 0, 1e-6)))

	solver := circuit.NewSolver(circ)
	require.NoError(t, solver.Solve(1000))

	v2, err := solver.NodeVoltage(2, 0)
	require.NoError(t, err)
	require.InDelta(t, 1/math.Sqrt2, cmplx.Abs(v2), 1e-9)
	require.InDelta(t, -math.Pi/4, cmplx.Phase(v2), 1e-9)
}

func TestInvertingOpAmp(t *testing.T) {
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 1, 0)))
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 2, 1e3)))
	require.NoError(t, circ.Add("R2", device.NewResistor(2, 3, 10e3)))
	require.NoError(t, circ.Add("OPA1", device.NewOpAmp(0, 2, 3)))

	solver := circuit.NewSolver(circ)
	require.NoError(t, solver.Solve(0))

	v3, err := solver.NodeVoltage(3, 0)
	require.NoError(t, err)
	require.InDelta(t, -10.0, real(v3), 1e-9)

	// Virtual short between the inputs.
	vShort, err := solver.NodeVoltage(2, 0)
	require.NoError(t, err)
	require.InDelta(t, 0, real(vShort), 1e-9)

	// Op-amp voltage reads as output against ground; its current is
	// the output branch current.
	vOpa, err := solver.Voltage("OPA1")
	require.NoError(t, err)
	require.InDelta(t, -10.0, real(vOpa), 1e-9)

	_, err = solver.Current("OPA1")
	require.NoError(t, err)
}

func TestSuperposition(t *testing.T) {
	// 5 V source feeding node 2 through 1k against a 1 mA injection
	// into node 2 and a 1k to ground: 2.5 V + 0.5 V.
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 5, 0)))
	require.NoError(t, circ.Add("I1", device.NewCurrentSource(2, 0, 1e-3, 0)))
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 2, 1e3)))
	require.NoError(t, circ.Add("R2", device.NewResistor(2, 0, 1e3)))

	solver := circuit.NewSolver(circ)
	require.NoError(t, solver.Solve(0))

	v2, err := solver.NodeVoltage(2, 0)
	require.NoError(t, err)
	require.InDelta(t, 3.0, real(v2), 1e-9)

	// The probed current through a current source is the negated
	// source amplitude.
	i, err := solver.Current("I1")
	require.NoError(t, err)
	require.InDelta(t, -1e-3, real(i), 1e-9)
}

func TestSingularCircuit(t *testing.T) {
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 5, 0)))
	require.NoError(t, circ.Add("V2", device.NewVoltageSource(1, 0, 10, 0)))

	solver := circuit.NewSolver(circ)
	err := solver.Solve(0)
	require.ErrorIs(t, err, mna.ErrSingular)
	require.ErrorContains(t, err, "could not compute operating point")
}

func TestDCCapacitorOpen(t *testing.T) {
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 5, 0)))
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 2, 1e3)))
	require.NoError(t, circ.Add("C1", device.NewCapacitor(2, 0, 1e-6)))
	require.NoError(t, circ.Add("R2", device.NewResistor(2, 0, 1e3)))

	solver := circuit.NewSolver(circ)
	require.NoError(t, solver.Solve(0))

	i, err := solver.Current("C1")
	require.NoError(t, err)
	require.Equal(t, complex128(0), i)
}

func TestDCInductorShort(t *testing.T) {
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 5, 0)))
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 2, 1e3)))
	require.NoError(t, circ.Add("L1", device.NewInductor(2, 0, 1e-3)))

	solver := circuit.NewSolver(circ)
	require.NoError(t, solver.Solve(0))

	// The inductor acts as a 1 nOhm resistance at DC, so node 2 sits
	// at essentially ground and the loop carries the full 5 mA.
	v2, err := solver.NodeVoltage(2, 0)
	require.NoError(t, err)
	require.InDelta(t, 0, real(v2), 1e-5)

	i, err := solver.Current("L1")
	require.NoError(t, err)
	require.InDelta(t, 5e-3, real(i), 1e-6)
}

func TestACSourceAmplitudeSelection(t *testing.T) {
	// A source with zero AC amplitude applies no excitation in AC
	// analysis.
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 10, 0)))
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 0, 1e3)))

	solver := circuit.NewSolver(circ)
	require.NoError(t, solver.Solve(1000))

	v1, err := solver.NodeVoltage(1, 0)
	require.NoError(t, err)
	require.Equal(t, complex128(0), v1)
}

func TestSolveRoundTrip(t *testing.T) {
	circ := buildDivider(t)
	solver := circuit.NewSolver(circ)

	require.NoError(t, solver.Solve(0))
	first := solver.Solution().Vector()

	require.NoError(t, solver.Solve(0))
	second := solver.Solution().Vector()

	require.Equal(t, first.Height(), second.Height())
	for i := 0; i < first.Height(); i++ {
		require.InDelta(t, real(first.At(i, 0)), real(second.At(i, 0)), 1e-12)
		require.InDelta(t, imag(first.At(i, 0)), imag(second.At(i, 0)), 1e-12)
	}
}

func TestKirchhoffCurrentLaw(t *testing.T) {
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 12, 0)))
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 2, 1e3)))
	require.NoError(t, circ.Add("R2", device.NewResistor(2, 0, 2e3)))
	require.NoError(t, circ.Add("R3", device.NewResistor(2, 3, 4.7e3)))
	require.NoError(t, circ.Add("R4", device.NewResistor(3, 0, 1e3)))
	require.NoError(t, circ.Add("I1", device.NewCurrentSource(3, 0, 2e-3, 0)))

	solver := circuit.NewSolver(circ)
	require.NoError(t, solver.Solve(0))

	// KCL at node 2: currents through R1 (in), R2 and R3 (out).
	iR1, _ := solver.Current("R1")
	iR2, _ := solver.Current("R2")
	iR3, _ := solver.Current("R3")
	require.InDelta(t, 0, real(iR1-iR2-iR3), 1e-9)

	// KCL at node 3: R3 in, R4 out, 2 mA injected.
	iR4, _ := solver.Current("R4")
	require.InDelta(t, 0, real(iR3-iR4+2e-3), 1e-9)
}

func TestQueryErrors(t *testing.T) {
	circ := buildDivider(t)
	solver := circuit.NewSolver(circ)
	require.NoError(t, solver.Solve(0))

	_, err := solver.Voltage("R9")
	require.ErrorIs(t, err, circuit.ErrUnknownReference)
	_, err = solver.Current("R9")
	require.ErrorIs(t, err, circuit.ErrUnknownReference)
	_, err = solver.Power("R9")
	require.ErrorIs(t, err, circuit.ErrUnknownReference)
}

func TestDuplicateReference(t *testing.T) {
	circ := circuit.New()
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 0, 1e3)))
	err := circ.Add("R1", device.NewResistor(2, 0, 1e3))
	require.ErrorIs(t, err, circuit.ErrDuplicateReference)
}

func TestUpdateResolves(t *testing.T) {
	circ := buildDivider(t)
	solver := circuit.NewSolver(circ)
	require.NoError(t, solver.Solve(0))

	// Adding a parallel resistor and updating re-solves at the stored
	// pulsation.
	require.NoError(t, circ.Add("R3", device.NewResistor(2, 0, 1e3)))
	require.NoError(t, solver.Update())

	v2, err := solver.NodeVoltage(2, 0)
	require.NoError(t, err)
	require.InDelta(t, 10.0/3.0, real(v2), 1e-9)
}
