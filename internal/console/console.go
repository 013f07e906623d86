/*
 * riapyx - debugger console command grammar
 *
 * Copyright (c) 2026, riapyx contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package console implements the debugger's line grammar: single
// mnemonic-letter commands, a hex-address cmdLine tokenizer, and the
// line-editing loop that feeds parsed commands to a machine.Machine.
// It runs on its own console thread and never touches machine state
// directly; everything it decides to do crosses over as a
// machine.Command.
package console

import (
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/nathanjackson/riapyx/internal/machine"
)

// cmdLine is a cursor over one line of debugger input.
type cmdLine struct {
	line string
	pos  int
}

func (l *cmdLine) skipSpace() {
	for l.pos < len(l.line) && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

func (l *cmdLine) isEOL() bool {
	return l.pos >= len(l.line)
}

// getWord returns the next whitespace-delimited token.
func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.line) && !unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
	return l.line[start:l.pos]
}

// ErrBadHex is the sentinel for a malformed hex token. Per the
// documented debugger contract this is not a recoverable parse error:
// the console reports it and aborts the process, the same as the
// reference debugger's hex parser does.
var ErrBadHex = errors.New("invalid hex digits in address argument")

func parseHex16(tok string) (uint16, error) {
	if tok == "" {
		return 0, ErrBadHex
	}
	var v uint32
	for _, r := range tok {
		var digit uint32
		switch {
		case r >= '0' && r <= '9':
			digit = uint32(r - '0')
		case r >= 'a' && r <= 'f':
			digit = uint32(r-'a') + 10
		case r >= 'A' && r <= 'F':
			digit = uint32(r-'A') + 10
		default:
			return 0, ErrBadHex
		}
		v = v<<4 | digit
	}
	return uint16(v), nil
}

// Outcome is what ProcessCommand decided to do with one input line,
// reported back to the driving loop for printing and cancellation.
type Outcome struct {
	Quit    bool
	Message string
}

// ProcessCommand parses one debugger input line and applies it against
// m. A malformed hex address returns ErrBadHex, which the caller must
// treat as fatal rather than re-prompting.
func ProcessCommand(line string, m *machine.Machine, c *cpuInspector) (Outcome, error) {
	l := &cmdLine{line: line}
	word := l.getWord()

	switch word {
	case "":
		m.SendSync(machine.Command{Kind: machine.CmdStep})
		return Outcome{Message: c.RegisterDump()}, nil

	case "q":
		return Outcome{Quit: true}, nil

	case "b":
		seg, off, err := parseAddrPair(l)
		if err != nil {
			return Outcome{}, err
		}
		m.Send(machine.Command{Kind: machine.CmdSetBreakpoint, Seg: seg, Off: off})
		return Outcome{Message: fmt.Sprintf("Breakpoint set at %04X:%04X", seg, off)}, nil

	case "d":
		seg, off, err := parseAddrPair(l)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Message: c.DumpMemory(seg, off, 16)}, nil

	case "u":
		seg, off, err := parseAddrPair(l)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Message: c.Disassemble(seg, off, 5)}, nil

	case "c":
		m.Send(machine.Command{Kind: machine.CmdRun, Trace: false})
		return Outcome{Message: "Resuming."}, nil

	case "t":
		m.Send(machine.Command{Kind: machine.CmdRun, Trace: true})
		return Outcome{Message: "Resuming with trace."}, nil

	case "w":
		name := l.getWord()
		if name == "" {
			return Outcome{Message: "Bad command."}, nil
		}
		if err := c.DumpPhysicalMemory(name); err != nil {
			return Outcome{}, err
		}
		return Outcome{Message: "Wrote " + name}, nil

	default:
		return Outcome{Message: "Bad command."}, nil
	}
}

func parseAddrPair(l *cmdLine) (seg, off uint16, err error) {
	seg, err = parseHex16(l.getWord())
	if err != nil {
		return 0, 0, err
	}
	off, err = parseHex16(l.getWord())
	if err != nil {
		return 0, 0, err
	}
	return seg, off, nil
}

// cpuInspector is the narrow read/format surface the console needs
// from the CPU for its memory, disassembly, and dump commands,
// without taking a hard dependency on internal/cpu's full API.
type cpuInspector struct {
	RegisterDumpFn        func() string
	DumpMemoryFn          func(seg, off uint16, count int) string
	DisassembleFn         func(seg, off uint16, count int) string
	DumpPhysicalMemoryFn  func(path string) error
}

func (c *cpuInspector) RegisterDump() string                       { return c.RegisterDumpFn() }
func (c *cpuInspector) DumpMemory(seg, off uint16, n int) string    { return c.DumpMemoryFn(seg, off, n) }
func (c *cpuInspector) Disassemble(seg, off uint16, n int) string   { return c.DisassembleFn(seg, off, n) }
func (c *cpuInspector) DumpPhysicalMemory(path string) error        { return c.DumpPhysicalMemoryFn(path) }

// NewInspector builds a cpuInspector bound to a concrete CPU/Bus pair.
// cmd/riapyx wires this so internal/console never imports internal/cpu
// or internal/bus directly, keeping the command grammar reusable
// independent of the interpreter's concrete register layout.
func NewInspector(registerDump func() string, dumpMemory, disassemble func(seg, off uint16, count int) string, dumpPhysical func(string) error) *cpuInspector {
	return &cpuInspector{
		RegisterDumpFn:       registerDump,
		DumpMemoryFn:         dumpMemory,
		DisassembleFn:        disassemble,
		DumpPhysicalMemoryFn: dumpPhysical,
	}
}

// FatalReport prints a diagnostic for an emulator-tier error (bad hex,
// I/O failure writing a memory dump) and exits the process, matching
// the documented "emulator bugs abort the process" error tier.
func FatalReport(err error) {
	fmt.Fprintln(os.Stderr, "riapyx: fatal:", err)
	os.Exit(1)
}
