package consts

const (
	GroundNode = -1 // Dense index of the reference node in MNA space

	// Resistance substituted for an inductor at omega = 0. Keeps the
	// conductance matrix regular at DC. Compatibility value, do not change.
	InductorDCResistance = 1e-9
)
