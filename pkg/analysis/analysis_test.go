package analysis_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Jacajack/myspice/pkg/analysis"
	"github.com/Jacajack/myspice/pkg/circuit"
	"github.com/Jacajack/myspice/pkg/device"
)

func buildLowPass(t *testing.T) *circuit.Circuit {
	t.Helper()
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 1, 1)))
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 2, 1e3)))
	require.NoError(t, circ.Add("C1", device.NewCapacitor(2, 0, 1e-6)))
	return circ
}

func TestProbingMethodByName(t *testing.T) {
	for name, want := range map[string]analysis.ProbingMethod{
		"":    analysis.ProbeDefault,
		"re":  analysis.ProbeReal,
		"im":  analysis.ProbeImaginary,
		"mag": analysis.ProbeMagnitude,
		"ph":  analysis.ProbePhase,
	} {
		got, err := analysis.ProbingMethodByName(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := analysis.ProbingMethodByName("abs")
	require.Error(t, err)
}

func TestProbeNames(t *testing.T) {
	require.Equal(t, "V(R1)", analysis.NewVoltageProbe("R1", analysis.ProbeDefault).Name())
	require.Equal(t, "Imag(V1)", analysis.NewCurrentProbe("V1", analysis.ProbeMagnitude).Name())
	require.Equal(t, "Pre(R2)", analysis.NewPowerProbe("R2", analysis.ProbeReal).Name())
	require.Equal(t, "V(3)", analysis.NewNodeVoltageProbe(3, 0, analysis.ProbeDefault).Name())
	require.Equal(t, "Vp(3, 1)", analysis.NewNodeVoltageProbe(3, 1, analysis.ProbePhase).Name())
}

func TestOperatingPoint(t *testing.T) {
	circ := circuit.New()
	require.NoError(t, circ.Add("V1", device.NewVoltageSource(1, 0, 10, 0)))
	require.NoError(t, circ.Add("R1", device.NewResistor(1, 2, 1e3)))
	require.NoError(t, circ.Add("R2", device.NewResistor(2, 0, 1e3)))

	probes := []analysis.Probe{
		analysis.NewNodeVoltageProbe(2, 0, analysis.ProbeDefault),
		analysis.NewCurrentProbe("R1", analysis.ProbeDefault),
		analysis.NewPowerProbe("R1", analysis.ProbeDefault),
	}

	op := analysis.NewOperatingPoint(probes)
	solver := circuit.NewSolver(circ)
	require.NoError(t, op.Execute(solver))

	require.Equal(t, []string{"V(2)", "I(R1)", "P(R1)"}, op.Names())
	require.InDelta(t, 5.0, op.Values()[0], 1e-9)
	require.InDelta(t, 5e-3, op.Values()[1], 1e-9)
	require.InDelta(t, 25e-3, op.Values()[2], 1e-9)
}

func TestSweepOmegasLinear(t *testing.T) {
	p := analysis.SweepParams{FStart: 100, FStop: 200, Steps: 3}
	omegas := p.Omegas()
	require.Len(t, omegas, 3)
	require.InDelta(t, 2*math.Pi*100, omegas[0], 1e-9)
	require.InDelta(t, 2*math.Pi*150, omegas[1], 1e-9)
	require.InDelta(t, 2*math.Pi*200, omegas[2], 1e-9)
}

func TestSweepOmegasDecade(t *testing.T) {
	p := analysis.SweepParams{FStart: 10, FStop: 1000, Steps: 5, Base: 10}
	omegas := p.Omegas()

	// Five points per decade over two decades.
	require.Len(t, omegas, 10)
	require.InDelta(t, 2*math.Pi*10, omegas[0], 1e-9)

	// Log-spaced: constant ratio between consecutive points.
	ratio := omegas[1] / omegas[0]
	for i := 2; i < len(omegas); i++ {
		require.InDelta(t, ratio, omegas[i]/omegas[i-1], 1e-9)
	}
}

func TestACSweepLowPass(t *testing.T) {
	circ := buildLowPass(t)
	probes := []analysis.Probe{
		analysis.NewNodeVoltageProbe(2, 0, analysis.ProbeMagnitude),
		analysis.NewNodeVoltageProbe(2, 0, analysis.ProbePhase),
	}

	// A linear grid crossing the cutoff frequency of 1000 rad/s.
	params := analysis.SweepParams{
		FStart: 1000 / (2 * math.Pi),
		FStop:  2000 / (2 * math.Pi),
		Steps:  2,
	}
	sweep := analysis.NewACSweep(params, probes)
	solver := circuit.NewSolver(circ)
	require.NoError(t, sweep.Execute(solver))

	require.Equal(t, []string{"Vmag(2)", "Vp(2)"}, sweep.Names())
	require.Len(t, sweep.Rows(), 2)

	// At omega = RC^-1 the response is -3 dB at -45 degrees.
	require.InDelta(t, 1/math.Sqrt2, sweep.Rows()[0][0], 1e-9)
	require.InDelta(t, -math.Pi/4, sweep.Rows()[0][1], 1e-9)

	require.InDelta(t, 1000/(2*math.Pi), sweep.Frequencies()[0], 1e-9)
	require.Equal(t, sweep.Column(0)[1], sweep.Rows()[1][0])
}

func TestACSweepReproducible(t *testing.T) {
	circ := buildLowPass(t)
	params := analysis.SweepParams{FStart: 10, FStop: 10e3, Steps: 4, Base: 10}

	run := func() [][]float64 {
		probes := []analysis.Probe{
			analysis.NewNodeVoltageProbe(2, 0, analysis.ProbeMagnitude),
			analysis.NewNodeVoltageProbe(2, 0, analysis.ProbePhase),
		}
		sweep := analysis.NewACSweep(params, probes)
		solver := circuit.NewSolver(circ)
		require.NoError(t, sweep.Execute(solver))
		return sweep.Rows()
	}

	first := run()
	second := run()
	require.Equal(t, first, second)
}
