// Package netlist parses circuit descriptions into circuits, sweep
// parameters and probe lists. Two grammars are supported: a SPICE-like
// format with .ac and .print directives (Parse) and a simplified
// positional format (ParseSimple).
package netlist

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Jacajack/myspice/pkg/analysis"
	"github.com/Jacajack/myspice/pkg/circuit"
	"github.com/Jacajack/myspice/pkg/device"
)

// Simulation is a parsed netlist: the circuit plus everything needed
// to drive an analysis.
type Simulation struct {
	Title   string
	Circuit *circuit.Circuit
	AC      *analysis.SweepParams // nil selects DC analysis
	Probes  []analysis.Probe
}

// Parse reads the SPICE-like format. The first line is the title;
// component lines precede interpretation of the collected dot
// commands.
func Parse(r io.Reader) (*Simulation, error) {
	sim := &Simulation{Circuit: circuit.New()}
	scanner := bufio.NewScanner(r)

	if scanner.Scan() {
		sim.Title = strings.TrimSpace(scanner.Text())
	}

	var commands []string

	lineNumber := 1
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		// Dot commands are handled after all elements are known.
		if strings.HasPrefix(fields[0], ".") {
			commands = append(commands, line)
			continue
		}

		ref := fields[0]
		if _, err := sim.Circuit.Get(ref); err == nil {
			return nil, fmt.Errorf("netlist: duplicate component %q (line %d)", ref, lineNumber)
		}

		comp, err := parseComponent(fields)
		if err != nil {
			return nil, fmt.Errorf("netlist: could not parse component in line %d: %w", lineNumber, err)
		}
		if err := sim.Circuit.Add(ref, comp); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("netlist: reading input: %w", err)
	}

	for _, cmd := range commands {
		if err := sim.parseCommand(cmd); err != nil {
			return nil, err
		}
	}

	return sim, nil
}

// refType extracts the leading letters of a reference, e.g. "OPA" from
// "OPA3".
func refType(ref string) string {
	end := len(ref)
	for i, c := range ref {
		if unicode.IsDigit(c) {
			end = i
			break
		}
	}
	return strings.ToUpper(ref[:end])
}

// parseNodePair reads the two node labels of a two-terminal component
// line together with its value.
func parseNodePair(fields []string) (nodeA, nodeB int, value float64, err error) {
	if len(fields) < 4 {
		return 0, 0, 0, fmt.Errorf("missing arguments")
	}
	nodeA, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid node %q", fields[1])
	}
	nodeB, err = strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid node %q", fields[2])
	}
	value, err = ParseValue(fields[3])
	if err != nil {
		return 0, 0, 0, err
	}
	return nodeA, nodeB, value, nil
}

// parseACAmplitude reads the optional trailing "AC <value>" of a
// source line.
func parseACAmplitude(fields []string) (float64, error) {
	if len(fields) < 6 || !strings.EqualFold(fields[4], "ac") {
		return 0, nil
	}
	return ParseValue(fields[5])
}

func parseComponent(fields []string) (device.Component, error) {
	switch refType(fields[0]) {
	case "R":
		a, b, v, err := parseNodePair(fields)
		if err != nil {
			return nil, err
		}
		return device.NewResistor(a, b, v), nil

	case "L":
		a, b, v, err := parseNodePair(fields)
		if err != nil {
			return nil, err
		}
		return device.NewInductor(a, b, v), nil

	case "C":
		a, b, v, err := parseNodePair(fields)
		if err != nil {
			return nil, err
		}
		return device.NewCapacitor(a, b, v), nil

	case "V", "E":
		a, b, v, err := parseNodePair(fields)
		if err != nil {
			return nil, err
		}
		ac, err := parseACAmplitude(fields)
		if err != nil {
			return nil, err
		}
		return device.NewVoltageSource(a, b, v, ac), nil

	case "I":
		a, b, v, err := parseNodePair(fields)
		if err != nil {
			return nil, err
		}
		ac, err := parseACAmplitude(fields)
		if err != nil {
			return nil, err
		}
		return device.NewCurrentSource(a, b, v, ac), nil

	case "OPA":
		if len(fields) < 4 {
			return nil, fmt.Errorf("missing nodes")
		}
		pos, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid node %q", fields[1])
		}
		neg, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("invalid node %q", fields[2])
		}
		out, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("invalid node %q", fields[3])
		}
		return device.NewOpAmp(pos, neg, out), nil
	}

	return nil, fmt.Errorf("invalid component type %q", fields[0])
}

var probeRe = regexp.MustCompile(`(?i)([VPI])(re|im|mag|ph)?\(\s*([^\s,)]+)(\s*,\s*([^\s,)]+))?\s*\)`)

// parseCommand interprets a single dot command. Unknown commands are
// ignored.
func (sim *Simulation) parseCommand(cmd string) error {
	fields := strings.Fields(cmd)
	switch strings.ToLower(fields[0]) {
	case ".ac":
		if len(fields) != 5 {
			return fmt.Errorf("netlist: invalid use of .ac command")
		}

		var base float64
		switch strings.ToLower(fields[1]) {
		case "lin":
			base = 0
		case "dec":
			base = 10
		case "oct":
			base = 2
		default:
			return fmt.Errorf("netlist: invalid .ac sweep type %q", fields[1])
		}

		steps, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("netlist: malformed .ac step count: %w", err)
		}
		fstart, err := ParseValue(fields[3])
		if err != nil {
			return fmt.Errorf("netlist: malformed .ac start frequency: %w", err)
		}
		fstop, err := ParseValue(fields[4])
		if err != nil {
			return fmt.Errorf("netlist: malformed .ac stop frequency: %w", err)
		}
		if fstart <= 0 || fstop <= fstart || steps <= 0 {
			return fmt.Errorf("netlist: invalid .ac command parameter value")
		}

		sim.AC = &analysis.SweepParams{FStart: fstart, FStop: fstop, Steps: steps, Base: base}

	case ".print":
		for _, match := range probeRe.FindAllStringSubmatch(cmd, -1) {
			probe, err := sim.parseProbe(match)
			if err != nil {
				return err
			}
			sim.Probes = append(sim.Probes, probe)
		}

	default:
		// Other SPICE commands are out of scope; skip quietly.
	}

	return nil
}

func (sim *Simulation) parseProbe(match []string) (analysis.Probe, error) {
	method, err := analysis.ProbingMethodByName(strings.ToLower(match[2]))
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(match[1]) {
	case "v":
		// Node-pair form first: V(3) or V(3, 1) with numeric labels.
		if pos, err := strconv.Atoi(match[3]); err == nil {
			neg := 0
			if match[5] != "" {
				neg, err = strconv.Atoi(match[5])
				if err != nil {
					return nil, fmt.Errorf("netlist: invalid node number %q in probe", match[5])
				}
			}
			return analysis.NewNodeVoltageProbe(pos, neg, method), nil
		}
		if _, err := sim.Circuit.Get(match[3]); err != nil {
			return nil, fmt.Errorf("netlist: cannot probe %w", err)
		}
		return analysis.NewVoltageProbe(match[3], method), nil

	case "i":
		if _, err := sim.Circuit.Get(match[3]); err != nil {
			return nil, fmt.Errorf("netlist: cannot probe %w", err)
		}
		return analysis.NewCurrentProbe(match[3], method), nil

	case "p":
		if _, err := sim.Circuit.Get(match[3]); err != nil {
			return nil, fmt.Errorf("netlist: cannot probe %w", err)
		}
		return analysis.NewPowerProbe(match[3], method), nil
	}

	return nil, fmt.Errorf("netlist: invalid probe type %q", match[1])
}
