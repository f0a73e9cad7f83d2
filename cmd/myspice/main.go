package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/Jacajack/myspice/pkg/analysis"
	"github.com/Jacajack/myspice/pkg/circuit"
	"github.com/Jacajack/myspice/pkg/device"
	"github.com/Jacajack/myspice/pkg/netlist"
	"github.com/Jacajack/myspice/pkg/plot"
	"github.com/Jacajack/myspice/pkg/util"
)

func main() {
	legacy := flag.Bool("legacy", false, "read the simplified positional netlist format")
	plotPath := flag.String("plot", "", "write AC sweep probes to a PNG file")
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		log.Fatal("Usage: myspice [-legacy] [-plot FILE] NETLIST [OUTPUT]")
	}

	fin, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Cannot open netlist %q: %v", flag.Arg(0), err)
	}
	defer fin.Close()

	var fout io.Writer = os.Stdout
	if flag.NArg() == 2 {
		f, err := os.Create(flag.Arg(1))
		if err != nil {
			log.Fatalf("Cannot open output %q: %v", flag.Arg(1), err)
		}
		defer f.Close()
		fout = f
	}

	if *legacy {
		runSimple(fin, fout)
		return
	}
	runSpice(fin, fout, *plotPath)
}

// runSimple solves a simplified-format netlist at DC and prints the
// full solution: node potentials, per-component measurements and the
// power balance.
func runSimple(in io.Reader, out io.Writer) {
	circ, err := netlist.ParseSimple(in)
	if err != nil {
		log.Fatalf("Could not parse netlist: %v", err)
	}

	solver := circuit.NewSolver(circ)
	if err := solver.Solve(0); err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	// Node potentials by user label, back in the netlist's 1-based
	// numbering.
	nodeMap := solver.NodeMap()
	labels := make([]int, 0, len(nodeMap))
	for label := range nodeMap {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	fmt.Fprintln(out, "Node potentials:")
	for _, label := range labels {
		v, err := solver.NodeVoltage(label, 0)
		if err != nil {
			continue
		}
		fmt.Fprintf(out, "\tV(%d) = %s\n", label+1, util.FormatValueFactor(real(v), "V"))
	}
	fmt.Fprintln(out)

	totalPower := 0.0
	for _, ref := range circ.Refs() {
		comp, _ := circ.Get(ref)

		v, err := solver.Voltage(ref)
		if err != nil {
			continue
		}
		i, err := solver.Current(ref)
		if err != nil {
			continue
		}
		p, err := solver.Power(ref)
		if err != nil {
			continue
		}

		fmt.Fprintf(out, "%s:\n", ref)
		fmt.Fprintf(out, "\tV(%s) = %s\n", ref, util.FormatValueFactor(real(v), "V"))
		fmt.Fprintf(out, "\tI(%s) = %s\n", ref, util.FormatValueFactor(real(i), "A"))
		fmt.Fprintf(out, "\tP(%s) = %s\n", ref, util.FormatValueFactor(real(p), "W"))
		fmt.Fprintln(out)

		if _, ok := comp.(device.Passive); ok {
			totalPower += real(p)
		}
	}

	fmt.Fprintf(out, "Total power: %s\n", util.FormatValueFactor(totalPower, "W"))
}

// runSpice solves a SPICE-like netlist: a DC operating point, or an AC
// sweep when the netlist carries an .ac directive.
func runSpice(in io.Reader, out io.Writer, plotPath string) {
	sim, err := netlist.Parse(in)
	if err != nil {
		log.Fatalf("Could not parse SPICE file: %v", err)
	}

	solver := circuit.NewSolver(sim.Circuit)

	if sim.AC == nil {
		op := analysis.NewOperatingPoint(sim.Probes)
		if err := op.Execute(solver); err != nil {
			log.Fatalf("Simulation failed: %v", err)
		}
		for i, name := range op.Names() {
			fmt.Fprintf(out, "%s = %g\n", name, op.Values()[i])
		}
		return
	}

	sweep := analysis.NewACSweep(*sim.AC, sim.Probes)
	if err := sweep.Execute(solver); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	fmt.Fprint(out, "step\tfrequency")
	for _, name := range sweep.Names() {
		fmt.Fprintf(out, "\t%s", name)
	}
	fmt.Fprintln(out)

	for step, row := range sweep.Rows() {
		fmt.Fprintf(out, "%d\t%g", step, sweep.Frequencies()[step])
		for _, v := range row {
			fmt.Fprintf(out, "\t%g", v)
		}
		fmt.Fprintln(out)
	}

	if plotPath != "" {
		series := make([]plot.Series, len(sweep.Names()))
		for i, name := range sweep.Names() {
			series[i] = plot.Series{Name: name, Values: sweep.Column(i)}
		}
		if err := plot.Sweep(sim.Title, sweep.Frequencies(), series, plotPath); err != nil {
			log.Fatalf("Could not render plot: %v", err)
		}
	}
}
