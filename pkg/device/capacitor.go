package device

// Capacitor is an ideal capacitance in farads. At omega = 0 it is an
// exact open circuit.
type Capacitor struct {
	Bipole
	C float64
}

func NewCapacitor(nodeA, nodeB int, c float64) *Capacitor {
	return &Capacitor{Bipole: Bipole{NodeA: nodeA, NodeB: nodeB}, C: c}
}

func (c *Capacitor) GetType() string { return "C" }

func (c *Capacitor) Admittance(omega float64) complex128 {
	return complex(0, omega*c.C)
}
