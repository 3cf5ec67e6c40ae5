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

// molrmsd prints the RMSD between a reference structure and every
// frame of a second xyz file, optionally superimposing each frame on
// the reference first.
package main

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	molalign "github.com/kangmg/molecule-aligner"
	"github.com/kangmg/molecule-aligner/xyz"
)

func main() {
	pflag.Usage = usage
	alignFlag := pflag.BoolP("align", "a", false, "Superimpose each frame on the reference before measuring")
	indicesFlag := pflag.StringP("indices", "i", "", "Comma-separated atom indices to fit and measure on (default all)")
	outputFlag := pflag.StringP("output", "o", "", "Write the superimposed frames to this file (needs --align)")
	strictFlag := pflag.Bool("strict", false, "Refuse frames whose chemical species disagree with the reference")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}
	if pflag.NArg() != 2 {
		pflag.Usage()
		os.Exit(1)
	}
	if *outputFlag != "" && !*alignFlag {
		fatalf("--output only makes sense together with --align")
	}

	ref, err := xyz.ReadOne(pflag.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	frames, err := xyz.Read(pflag.Arg(1))
	if err != nil {
		fatalf("%v", err)
	}
	indices, err := parseIndices(*indicesFlag)
	if err != nil {
		fatalf("%v", err)
	}

	if *alignFlag {
		frames, err = molalign.AlignSeq(frames, ref, indices, *strictFlag)
		if err != nil {
			fatalf("%v", err)
		}
	}
	for i, frame := range frames {
		r, err := ref.RMSD(frame, indices)
		if err != nil {
			fatalf("frame %d: %v", i, err)
		}
		if len(frames) == 1 {
			fmt.Printf("%.6f\n", r)
		} else {
			fmt.Printf("%4d %12.6f\n", i, r)
		}
	}

	if *outputFlag != "" {
		if err := xyz.Write(*outputFlag, frames); err != nil {
			fatalf("%v", err)
		}
	}
}

func parseIndices(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	indices := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("bad atom index %q", f)
		}
		indices = append(indices, n)
	}
	return indices, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), fmt.Sprintf(format, args...))
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] reference.xyz frames.xyz\n\n", path.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "Options:\n")
	pflag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  molrmsd reactant.xyz trajectory.xyz\n")
	fmt.Fprintf(os.Stderr, "  molrmsd -a -i 0,1,2 reactant.xyz trajectory.xyz -o fitted.xyz\n")
}
