package device

// Resistor is an ideal resistance in ohms.
type Resistor struct {
	Bipole
	R float64
}

func NewResistor(nodeA, nodeB int, r float64) *Resistor {
	return &Resistor{Bipole: Bipole{NodeA: nodeA, NodeB: nodeB}, R: r}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Admittance(omega float64) complex128 {
	_ = omega
	return complex(1.0/r.R, 0)
}
