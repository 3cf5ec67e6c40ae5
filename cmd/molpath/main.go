/*
 * main.go, part of molecule-aligner.
 *
 * Copyright 2026 The molecule-aligner developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// molpath assembles a reaction pathway from a JSON step description
// and writes it as a multi-frame xyz trajectory. Interpolation steps
// are refined with the image-dependent pair potential unless the
// document asks otherwise.
package main

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/pflag"

	"github.com/kangmg/molecule-aligner/bond"
	"github.com/kangmg/molecule-aligner/idpp"
	"github.com/kangmg/molecule-aligner/pathjson"
	"github.com/kangmg/molecule-aligner/pathway"
	"github.com/kangmg/molecule-aligner/xyz"
)

func main() {
	pflag.Usage = usage
	stepsFlag := pflag.StringP("steps", "s", "", "JSON pathway description (may also be given as a positional argument)")
	outputFlag := pflag.StringP("output", "o", "pathway.xyz", "Trajectory file to write; .gz and .zst suffixes compress")
	reportFlag := pflag.StringP("report", "r", "", "Write a per-step JSON report to this file, or to stdout with -")
	referenceFlag := pflag.String("reference", "", "Override the document's reference policy (first or reactant)")
	strictFlag := pflag.Bool("strict", false, "Refuse steps whose chemical species disagree with the running reference")
	bondsFlag := pflag.Bool("bonds", false, "Print the bond changes along the assembled pathway")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}
	name := *stepsFlag
	if name == "" && pflag.NArg() > 0 {
		name = pflag.Arg(0)
	}
	if name == "" {
		pflag.Usage()
		os.Exit(1)
	}

	doc, err := pathjson.Load(name)
	if err != nil {
		fatalf("%v", err)
	}
	steps, opts, err := doc.Build(xyz.File{})
	if err != nil {
		fatalf("%v", err)
	}
	if *referenceFlag != "" {
		opts.Reference = pathway.Reference(*referenceFlag)
	}
	opts.Strict = opts.Strict || *strictFlag
	opts.Refiner = idpp.New()

	p, err := pathway.Assemble(steps, opts)
	if err != nil {
		fatalf("%v", err)
	}

	w, err := xyz.NewWriter(*outputFlag)
	if err != nil {
		fatalf("%v", err)
	}
	for i, frame := range p.Frames {
		if err := w.WNext(frame, p.Meta(i)); err != nil {
			fatalf("writing %s: %v", *outputFlag, err)
		}
	}
	w.Close()

	if *reportFlag != "" {
		if err := writeReport(p, *reportFlag); err != nil {
			fatalf("%v", err)
		}
	}
	if *bondsFlag {
		if err := printBondChanges(p); err != nil {
			fatalf("%v", err)
		}
	}
	fmt.Printf("%s -> %s\n", p, *outputFlag)
}

func printBondChanges(p *pathway.Pathway) error {
	changes, err := bond.Trace(p.Frames)
	if err != nil {
		return err
	}
	for _, c := range changes {
		verb := "broken"
		if c.Formed {
			verb = "formed"
		}
		label := bond.Label(p.Frames[c.Frame], c.Bond)
		fmt.Printf("frame %4d (step %d): %s %s (%.2f A)\n", c.Frame, p.StepOf(c.Frame), verb, label, c.Dist)
	}
	return nil
}

func writeReport(p *pathway.Pathway, name string) error {
	if name == "-" {
		return pathjson.NewReport(p).Send(os.Stdout)
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return pathjson.NewReport(p).Send(f)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), fmt.Sprintf(format, args...))
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] steps.json\n\n", path.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "Options:\n")
	pflag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  molpath steps.json                    # write pathway.xyz\n")
	fmt.Fprintf(os.Stderr, "  molpath -s steps.json -o path.xyz.gz  # compressed output\n")
	fmt.Fprintf(os.Stderr, "  molpath steps.json -r -               # report on stdout\n")
	fmt.Fprintf(os.Stderr, "  molpath steps.json --bonds            # trace bond changes\n")
}
