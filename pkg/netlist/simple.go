package netlist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Jacajack/myspice/pkg/circuit"
	"github.com/Jacajack/myspice/pkg/device"
)

// ParseSimple reads the simplified positional format: one component
// per line as "TYPE nodeB nodeA value" with 1-based node numbering.
//
// The format does not name a reference node, yet one is required for
// the analysis, so node numbering is shifted down by one and node 1
// becomes ground. A netlist without node 1 may fail to solve or give
// meaningless results. The node pair is read in reverse because source
// polarity in this format is opposite to the SPICE convention.
func ParseSimple(r io.Reader) (*circuit.Circuit, error) {
	circ := circuit.New()
	counts := map[string]int{}

	addComponent := func(kind string, comp device.Component) error {
		counts[kind]++
		return circ.Add(fmt.Sprintf("%s%d", kind, counts[kind]), comp)
	}

	scanner := bufio.NewScanner(r)
	lineCount := 0
	for scanner.Scan() {
		lineCount++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("netlist: invalid line %d", lineCount)
		}

		nodeB, err1 := strconv.Atoi(fields[1])
		nodeA, err2 := strconv.Atoi(fields[2])
		value, err3 := strconv.ParseFloat(fields[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("netlist: invalid line %d", lineCount)
		}
		nodeA--
		nodeB--

		switch fields[0] {
		case "R":
			err1 = addComponent("R", device.NewResistor(nodeA, nodeB, value))
		case "I":
			err1 = addComponent("I", device.NewCurrentSource(nodeA, nodeB, value, 0))
		case "E":
			err1 = addComponent("E", device.NewVoltageSource(nodeA, nodeB, value, 0))
		default:
			return nil, fmt.Errorf("netlist: invalid component type in line %d", lineCount)
		}
		if err1 != nil {
			return nil, err1
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("netlist: reading input: %w", err)
	}

	return circ, nil
}
