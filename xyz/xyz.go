/*
 * xyz.go, part of molecule-aligner.
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

// Package xyz reads and writes frame sequences in the xyz and extended
// xyz formats. Writing always produces extended xyz: the comment line
// of each frame declares the column layout and can carry additional
// key=value metadata, the way trajectory visualizers expect it.
// Reading accepts plain xyz too; comment lines are not interpreted.
//
// Files whose names end in .gz or .zst/.zstd are compressed and
// decompressed transparently.
package xyz

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	molalign "github.com/kangmg/molecule-aligner"
	v3 "github.com/kangmg/molecule-aligner/v3"
	"github.com/klauspost/compress/zstd"
)

// Properties is the extended xyz layout declaration written on every
// comment line: one species string and three position reals per atom.
const Properties = "Properties=species:S:1:pos:R:3"

// Writer streams frames to an xyz file. The filename suffix selects
// the compression: .gz means gzip, .zst or .zstd means zstd, anything
// else plain text.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	filename  string
	frames    int
	writeable bool
}

// NewWriter creates name, truncating it if it exists. The optional
// level only applies to gzip output.
func NewWriter(name string, compressionLevel ...int) (*Writer, error) {
	level := gzip.DefaultCompression
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	W := new(Writer)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	gzipwriter := func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, level) }
	zstdwriter := func(a io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(a)
	}
	plainwriter := func(a io.Writer) (io.WriteCloser, error) { return nopWriteCloser{a}, nil }
	var anyNewWriter func(io.Writer) (io.WriteCloser, error)
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		anyNewWriter = gzipwriter
	case strings.HasSuffix(lower, ".zst"), strings.HasSuffix(lower, ".zstd"):
		anyNewWriter = zstdwriter
	default:
		anyNewWriter = plainwriter
	}
	W.h, err = anyNewWriter(W.f)
	if err != nil {
		W.f.Close()
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	W.filename = name
	W.writeable = true
	return W, nil
}

// WNext writes one frame. The comment line carries the Properties
// declaration plus the given metadata as key=value pairs in sorted key
// order; neither keys nor values may contain whitespace.
func (W *Writer) WNext(s *molalign.Structure, meta ...map[string]string) error {
	if !W.writeable {
		return Error{WriterClosed, W.filename, []string{"WNext"}, true}
	}
	if s == nil || s.Coords == nil {
		return Error{NilCoordinates, W.filename, []string{"WNext"}, true}
	}
	fmt.Fprintf(W.h, "%d\n", s.Len())
	comment := Properties
	if len(meta) > 0 && meta[0] != nil {
		keys := make([]string, 0, len(meta[0]))
		for k := range meta[0] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			comment += fmt.Sprintf(" %s=%s", k, meta[0][k])
		}
	}
	fmt.Fprintf(W.h, "%s\n", comment)
	for i, at := range s.Atoms {
		_, err := fmt.Fprintf(W.h, "%-2s %12.6f %12.6f %12.6f\n", at.Symbol, s.Coords.At(i, 0), s.Coords.At(i, 1), s.Coords.At(i, 2))
		if err != nil {
			return Error{err.Error(), W.filename, []string{"WNext"}, true}
		}
	}
	W.frames++
	return nil
}

// Frames returns how many frames have been written so far.
func (W *Writer) Frames() int {
	return W.frames
}

// Close flushes the compressor and closes the file. The writer cannot
// be used afterwards.
func (W *Writer) Close() {
	if !W.writeable {
		return
	}
	W.h.Close()
	W.f.Close()
	W.writeable = false
}

// Write stores the whole sequence in name, one frame after another,
// compressing by suffix. Each frame is tagged with its index.
func Write(name string, frames molalign.Sequence) error {
	W, err := NewWriter(name)
	if err != nil {
		return errDecorate(err, "Write")
	}
	defer W.Close()
	for i, f := range frames {
		if err := W.WNext(f, map[string]string{"Frame": strconv.Itoa(i)}); err != nil {
			return errDecorate(err, "Write")
		}
	}
	return nil
}

// Read loads every frame of an xyz or extended xyz file, decompressing
// by suffix. Comment lines are skipped without interpretation, so any
// metadata written by this package is ignored on the way back in.
func Read(name string) (molalign.Sequence, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"Read"}, true}
	}
	defer f.Close()
	r, err := decompressor(f, name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"Read"}, true}
	}
	defer r.Close()
	buf := bufio.NewReader(r)
	var frames molalign.Sequence
	for i := 0; ; i++ {
		s, err := readFrame(buf, name, i)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, s)
	}
	if len(frames) == 0 {
		return nil, Error{"no frames in file", name, []string{"Read"}, true}
	}
	return frames, nil
}

// ReadOne loads only the first frame of a file.
func ReadOne(name string) (*molalign.Structure, error) {
	frames, err := Read(name)
	if err != nil {
		return nil, errDecorate(err, "ReadOne")
	}
	return frames[0], nil
}

func readFrame(buf *bufio.Reader, name string, frame int) (*molalign.Structure, error) {
	var line string
	var err error
	for {
		line, err = buf.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			break
		}
		if err != nil {
			// only whitespace until the end of the file
			return nil, io.EOF
		}
	}
	natoms, cerr := strconv.Atoi(strings.TrimSpace(line))
	if cerr != nil || natoms <= 0 {
		return nil, Error{fmt.Sprintf("%s: frame %d has atom count line %q", WrongFormat, frame, strings.TrimSpace(line)), name, []string{"readFrame"}, true}
	}
	_, _ = buf.ReadString('\n') // the comment line; a truncated frame fails below anyway
	atoms := make([]*molalign.Atom, natoms)
	data := make([]float64, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err = buf.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, Error{err.Error(), name, []string{"readFrame"}, true}
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, Error{fmt.Sprintf("%s: frame %d, atom line %d ill formed", WrongFormat, frame, i), name, []string{"readFrame"}, true}
		}
		atoms[i] = &molalign.Atom{Symbol: fields[0]}
		for j := 0; j < 3; j++ {
			data[3*i+j], cerr = strconv.ParseFloat(fields[j+1], 64)
			if cerr != nil {
				return nil, Error{fmt.Sprintf("%s: frame %d, atom line %d: %v", WrongFormat, frame, i, cerr), name, []string{"readFrame"}, true}
			}
		}
	}
	coords, cerr := v3.NewMatrix(data)
	if cerr != nil {
		return nil, errDecorate(cerr, "readFrame")
	}
	s, cerr := molalign.NewStructure(atoms, coords)
	if cerr != nil {
		return nil, Error{cerr.Error(), name, []string{"readFrame"}, true}
	}
	return s, nil
}

// File adapts the package functions to the molalign Source and Sink
// interfaces, so file access can be injected as a collaborator.
type File struct{}

func (File) Read(name string) (molalign.Sequence, error) { return Read(name) }

func (File) Write(name string, frames molalign.Sequence) error { return Write(name, frames) }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type nopReadCloser struct{ io.Reader }

func (nopReadCloser) Close() error { return nil }

// zstd's Decoder does not implement io.ReadCloser, its Close returns
// nothing, so it needs a little help.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.closeql()
	return nil
}

func decompressor(f io.Reader, name string) (io.ReadCloser, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return gzip.NewReader(f)
	case strings.HasSuffix(lower, ".zst"), strings.HasSuffix(lower, ".zstd"):
		r, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		return zstdql{r.Close, r}, nil
	default:
		return nopReadCloser{f}, nil
	}
}

// Errors

// errDecorate asserts that the error implements molalign.Error and
// decorates it with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(molalign.Error)
	err2.Decorate(caller)
	return err2
}

// Error is the structure for xyz file errors. It fulfills
// molalign.Error.
type Error struct {
	message  string
	filename string // the input file that has problems, or empty if none
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("xyz file %s error: %s", err.filename, err.message)
}

// Decorate adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// FileName returns the file associated to the error
func (err Error) FileName() string { return err.filename }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	WriterClosed   = "Writer already closed"
	UnableToOpen   = "Unable to open file"
	WrongFormat    = "Wrong format in the XYZ file or frame"
	NilCoordinates = "Given nil coordinates"
)
