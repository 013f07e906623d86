/*
 * riapyx - machine driver: the goroutine that runs the CPU
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

// Package machine owns the goroutine that steps the CPU, paces the PIT
// against instruction count, and applies debugger commands delivered
// over a single-producer/single-consumer channel. It is the glue
// between the interpreter core (internal/cpu, internal/bus, the
// peripheral packages) and the console's command grammar.
package machine

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nathanjackson/riapyx/internal/bios"
	"github.com/nathanjackson/riapyx/internal/bus"
	"github.com/nathanjackson/riapyx/internal/cpu"
	"github.com/nathanjackson/riapyx/internal/keyboard"
	"github.com/nathanjackson/riapyx/internal/pic"
	"github.com/nathanjackson/riapyx/internal/pit"
	"github.com/nathanjackson/riapyx/internal/video"
)

// EmulatorError distinguishes a defect in this interpreter (a panic
// recovered from the step loop, an invariant violation) from the two
// other error classes the machine produces: guest-visible faults,
// which never leave the CPU package as Go errors because the CPU
// already turned them into an INT, and configuration errors, which
// cmd/riapyx reports and exits on before the machine ever starts.
type EmulatorError struct {
	Op  string
	Err error
}

func (e *EmulatorError) Error() string {
	return fmt.Sprintf("emulator error during %s: %v", e.Op, e.Err)
}

func (e *EmulatorError) Unwrap() error { return e.Err }

// CommandKind enumerates what a Command packet asks the machine to do.
type CommandKind int

const (
	CmdRun CommandKind = iota
	CmdStop
	CmdStep
	CmdSetBreakpoint
	CmdClearBreakpoint
)

// Command is one request delivered over the machine's command channel,
// the same shape as the S370 teacher's master.Packet: a tagged union
// carried as a single struct rather than as distinct channels per verb.
type Command struct {
	Kind     CommandKind
	Seg, Off uint16
	Trace    bool

	// Ack, if non-nil, is closed once the command has been applied.
	// SendSync sets it; the console uses SendSync only for the
	// single-step command, because the debugger's "print
	// machine state after stepping" behavior needs to know the step
	// actually ran before it reads registers, even though the two
	// threads otherwise never synchronize.
	Ack chan struct{}
}

// Notification is an asynchronous message the driver goroutine emits
// for the console to print, such as a breakpoint hit while free
// running - something the console thread cannot learn about just by
// waiting for its next prompt response.
type Notification struct {
	Message string
}

// Machine wires together the CPU, bus, PIC, PIT, and BIOS and runs
// them on a dedicated goroutine, pacing the PIT by instruction count
// (TicksPerInstruction per Step) since this interpreter has no real
// wall-clock cycle timing to derive it from.
type Machine struct {
	CPU  *cpu.CPU
	Bus  *bus.Bus
	PIC  *pic.PIC
	PIT  *pit.PIT
	BIOS *bios.BIOS

	mu                 sync.Mutex
	breakpoints        map[uint32]int // address -> breakpoint number, assigned in Set order
	nextBreakpointNum int

	wg      sync.WaitGroup
	done    chan struct{}
	cmds    chan Command // capacity 1: a single pending command is enough
	notify  chan Notification
	running bool

	// LastError records the EmulatorError raised by the step loop; it is
	// set just before stepOnce logs it and ends the process.
	LastError error
}

// New returns a Machine ready to Start. It wires the PIT's RaiseIRQ0 and
// the keyboard's RaiseIRQ1 callbacks into the PIC, and registers every
// peripheral's memory and port ranges on the bus - this is the one place
// that holds references to all of them, so it is the one place a device
// actually becomes reachable from guest code rather than just existing
// as an unaddressed Go value.
func New(c *cpu.CPU, b *bus.Bus, p *pic.PIC, t *pit.PIT, bi *bios.BIOS) *Machine {
	m := &Machine{
		CPU:         c,
		Bus:         b,
		PIC:         p,
		PIT:         t,
		BIOS:        bi,
		breakpoints: make(map[uint32]int),
		done:        make(chan struct{}),
		cmds:        make(chan Command, 1),
		notify:      make(chan Notification, 8),
	}
	t.RaiseIRQ0 = func() { p.Raise(0) }
	bi.Keyboard.RaiseIRQ1 = func() { p.Raise(1) }
	m.wire()
	return m
}

// wire registers the PIC, PIT, keyboard, and video adapter on the bus's
// port and memory dispatch tables. Every range here is fixed at
// construction and chosen to not overlap any other device or ROM
// region, so a registration failure is this code's own bug, not a
// runtime condition to recover from.
func (m *Machine) wire() {
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	must(m.Bus.RegisterPort(uint32(pic.CommandPort), uint32(pic.CommandPort), bus.PortHandler{
		Name: "pic-command",
		In8:  func(uint16) uint8 { return m.PIC.ReadCommand() },
		Out8: func(_ uint16, v uint8) { m.PIC.WriteCommand(v) },
	}))
	must(m.Bus.RegisterPort(uint32(pic.DataPort), uint32(pic.DataPort), bus.PortHandler{
		Name: "pic-data",
		In8:  func(uint16) uint8 { return m.PIC.ReadData() },
		Out8: func(_ uint16, v uint8) { m.PIC.WriteData(v) },
	}))

	must(m.Bus.RegisterPort(uint32(pit.CommandPort), uint32(pit.CommandPort), bus.PortHandler{
		Name: "pit-command",
		Out8: func(_ uint16, v uint8) { m.PIT.WriteCommand(v) },
	}))
	must(m.Bus.RegisterPort(0x40, 0x42, bus.PortHandler{
		Name: "pit-channel-data",
		In8:  func(port uint16) uint8 { return m.PIT.ReadPort(port) },
		Out8: func(port uint16, v uint8) { m.PIT.WritePort(port, v) },
	}))

	kbd := m.BIOS.Keyboard
	must(m.Bus.RegisterPort(uint32(keyboard.DataPort), uint32(keyboard.DataPort), bus.PortHandler{
		Name: "keyboard-data",
		In8:  func(uint16) uint8 { return kbd.ReadData() },
		Out8: func(_ uint16, v uint8) { kbd.WriteData(v) },
	}))
	must(m.Bus.RegisterPort(uint32(keyboard.ControlPort), uint32(keyboard.ControlPort), bus.PortHandler{
		Name: "keyboard-control",
		In8: func(uint16) uint8 {
			v := kbd.ReadControl() &^ 0x20
			if m.PIT.ChannelOutput(2) {
				v |= 0x20 // bit 5: PIT channel 2 output
			}
			return v
		},
		Out8: func(_ uint16, v uint8) {
			kbd.WriteControl(v)
			m.PIT.SetGate(2, v&0x01 != 0) // bit 0: PIT channel 2 gate
		},
	}))

	vid := m.BIOS.Video
	must(m.Bus.RegisterMemory(video.FrameBase, video.FrameBase+video.FrameSize-1, bus.MemHandler{
		Name:   "video-framebuffer",
		Read8:  func(addr uint32) uint8 { return vid.ReadByte(addr - video.FrameBase) },
		Write8: func(addr uint32, v uint8) { vid.WriteByte(addr-video.FrameBase, v) },
	}))
	must(m.Bus.RegisterPort(uint32(video.CRTCIndexPort), uint32(video.CRTCIndexPort), bus.PortHandler{
		Name: "crtc-index",
		In8:  func(uint16) uint8 { return vid.ReadCRTCIndex() },
		Out8: func(_ uint16, v uint8) { vid.WriteCRTCIndex(v) },
	}))
	must(m.Bus.RegisterPort(uint32(video.CRTCDataPort), uint32(video.CRTCDataPort), bus.PortHandler{
		Name: "crtc-data",
		In8:  func(uint16) uint8 { return vid.ReadCRTCData() },
		Out8: func(_ uint16, v uint8) { vid.WriteCRTCData(v) },
	}))
}

// Notifications returns the channel the driver goroutine posts
// asynchronous messages to (currently just breakpoint hits). The
// console's reader loop drains it concurrently with prompting for
// input.
func (m *Machine) Notifications() <-chan Notification {
	return m.notify
}

func (m *Machine) emit(message string) {
	select {
	case m.notify <- Notification{Message: message}:
	default:
		// No one is listening (e.g. a test driving the machine directly);
		// dropping rather than blocking the step loop is the right
		// trade-off for a diagnostic message.
	}
}

// Start launches the driver goroutine.
func (m *Machine) Start() {
	m.wg.Add(1)
	go m.run()
}

// Stop requests the driver goroutine exit and waits up to one second
// for it, matching the teacher's Stop timeout against a wedged core.
// Calling Stop again after it has returned does nothing.
func (m *Machine) Stop() {
	select {
	case <-m.done:
		return
	default:
	}
	close(m.done)
	finished := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		slog.Warn("machine: timed out waiting for driver goroutine to exit")
	}
}

// Send delivers a command to the driver goroutine, replacing any
// still-pending command rather than blocking: a debugger session only
// ever needs its most recent instruction honored.
func (m *Machine) Send(c Command) {
	select {
	case m.cmds <- c:
	default:
		select {
		case <-m.cmds:
		default:
		}
		m.cmds <- c
	}
}

// SendSync delivers a command and blocks until the driver goroutine
// has applied it, for the debugger's single-step command where the
// caller needs post-step register state.
func (m *Machine) SendSync(c Command) {
	ack := make(chan struct{})
	c.Ack = ack
	m.cmds <- c
	<-ack
}

// IsRunning reports whether the CPU is currently free-running (as
// opposed to paused between debugger-issued single steps).
func (m *Machine) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Machine) run() {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case cmd := <-m.cmds:
			m.apply(cmd)
			if cmd.Ack != nil {
				close(cmd.Ack)
			}
		default:
		}

		if m.IsRunning() {
			if m.stepOnce() {
				m.setRunning(false)
			}
		} else {
			// Idle: yield instead of spinning the host CPU while paused.
			time.Sleep(time.Millisecond)
		}
	}
}

func (m *Machine) apply(cmd Command) {
	switch cmd.Kind {
	case CmdRun:
		m.CPU.Resume(cmd.Trace)
		m.setRunning(true)
	case CmdStop:
		m.setRunning(false)
	case CmdStep:
		m.setRunning(false)
		m.stepOnce()
	case CmdSetBreakpoint:
		m.mu.Lock()
		key := breakpointKey(cmd.Seg, cmd.Off)
		if _, exists := m.breakpoints[key]; !exists {
			m.breakpoints[key] = m.nextBreakpointNum
			m.nextBreakpointNum++
		}
		m.mu.Unlock()
	case CmdClearBreakpoint:
		m.mu.Lock()
		delete(m.breakpoints, breakpointKey(cmd.Seg, cmd.Off))
		m.mu.Unlock()
	}
}

func breakpointKey(seg, off uint16) uint32 {
	return uint32(seg)<<16 | uint32(off)
}

// stepOnce executes exactly one CPU instruction, advances the PIT, and
// reports whether the machine hit a breakpoint and should stop running.
// During a run resumed with trace, each step's starting CS:IP is logged
// at info level. A panic inside the interpreter (an emulator bug, not a
// guest fault, which the CPU already turns into an INT) is recovered
// here, recorded as an EmulatorError, logged with slog.Error, and ends
// the process with exit status 2.
func (m *Machine) stepOnce() (hitBreakpoint bool) {
	defer func() {
		if r := recover(); r != nil {
			m.LastError = &EmulatorError{Op: "step", Err: fmt.Errorf("%v", r)}
			slog.Error("riapyx: fatal", "error", m.LastError)
			os.Exit(2)
		}
	}()

	res := m.CPU.Step()
	if m.IsRunning() && m.CPU.Tracing() {
		slog.Info("trace", "pc", fmt.Sprintf("%04x:%04x", res.CS, res.IP))
	}
	m.PIT.Advance(pit.TicksPerInstruction)

	cs, ip := m.CPU.GetPC()
	m.mu.Lock()
	num, isBreak := m.breakpoints[breakpointKey(cs, ip)]
	m.mu.Unlock()
	if isBreak {
		m.emit(fmt.Sprintf("Hit breakpoint #%d at %04x:%04x", num, cs, ip))
	}
	return isBreak
}

func (m *Machine) setRunning(v bool) {
	m.mu.Lock()
	m.running = v
	m.mu.Unlock()
	if v {
		m.CPU.Resume(m.CPU.Tracing())
	} else {
		m.CPU.Pause()
	}
}
