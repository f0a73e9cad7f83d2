package device

// VoltageSource is an ideal EMF with separate DC and AC amplitudes.
// NodeA is the "+" terminal. DC analysis uses the DC amplitude, AC
// analysis the AC amplitude; a source with a zero amplitude for the
// active mode applies no excitation and acts as a short between its
// nodes.
type VoltageSource struct {
	Bipole
	DC float64
	AC float64
}

func NewVoltageSource(nodeA, nodeB int, dc, ac float64) *VoltageSource {
	return &VoltageSource{Bipole: Bipole{NodeA: nodeA, NodeB: nodeB}, DC: dc, AC: ac}
}

func (v *VoltageSource) GetType() string { return "V" }

// Amplitude returns the source EMF for the given analysis pulsation.
func (v *VoltageSource) Amplitude(omega float64) float64 {
	if omega == 0 {
		return v.DC
	}
	return v.AC
}
