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

// molrigid ranks the atoms of a multi-frame xyz file by how little
// they move and suggests a fit subset for pathway alignment. The
// printed index list goes straight into a pathway document's
// base_indices or the --indices flag of molrmsd.
package main

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kangmg/molecule-aligner/rigid"
	"github.com/kangmg/molecule-aligner/xyz"
)

func main() {
	pflag.Usage = usage
	selectFlag := pflag.IntP("select", "n", -1, "How many atoms to select; -1 picks a quarter of the candidates")
	symbolsFlag := pflag.String("symbols", "", "Restrict candidates to these elements, as in C,N,O")
	msdFlag := pflag.BoolP("msd", "m", false, "Also print the displacement of every candidate atom")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}
	if pflag.NArg() < 1 {
		pflag.Usage()
		os.Exit(1)
	}

	frames, err := xyz.Read(pflag.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	o := rigid.DefaultOptions()
	o.N = *selectFlag
	if *symbolsFlag != "" {
		o.Symbols = strings.Split(*symbolsFlag, ",")
	}
	r, err := rigid.MostRigid(frames, o)
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Println(r)
	if *msdFlag {
		for i, at := range r.Candidates {
			marker := " "
			for _, sel := range r.Indices {
				if at == sel {
					marker = "*"
					break
				}
			}
			fmt.Printf("%s %4d %-2s %10.4f\n", marker, at, frames[0].Atoms[at].Symbol, r.MSD[i])
		}
	}
	fmt.Printf("base indices: %s\n", r.IndexList())
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), fmt.Sprintf(format, args...))
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] frames.xyz\n\n", path.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "Options:\n")
	pflag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  molrigid traj.xyz                 # quarter of the atoms\n")
	fmt.Fprintf(os.Stderr, "  molrigid -n 6 --symbols C traj.xyz\n")
	fmt.Fprintf(os.Stderr, "  molrigid -m pathway.xyz           # full mobility table\n")
}
