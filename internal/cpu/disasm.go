/*
 * riapyx - memory dump helper for the debugger
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

package cpu

import "fmt"

// DumpMemory formats count bytes starting at seg:off as the debugger's
// "d" command expects: one line per 16 bytes, hex offset followed by
// hex byte pairs.
func (c *CPU) DumpMemory(seg, off uint16, count int) string {
	out := ""
	addr := off
	remaining := count
	for remaining > 0 {
		lineLen := 16
		if remaining < lineLen {
			lineLen = remaining
		}
		out += fmt.Sprintf("%04X:%04X ", seg, addr)
		for i := 0; i < lineLen; i++ {
			b := c.Bus.ReadByte(phys(seg, addr+uint16(i)))
			out += fmt.Sprintf("%02X ", b)
		}
		out += "\n"
		addr += uint16(lineLen)
		remaining -= lineLen
	}
	return out
}

// RegisterDump formats the register file the way the debugger's
// empty-line single-step command prints it after each step.
func (c *CPU) RegisterDump() string {
	return fmt.Sprintf(
		"AX=%04X BX=%04X CX=%04X DX=%04X SP=%04X BP=%04X SI=%04X DI=%04X\n"+
			"DS=%04X ES=%04X SS=%04X CS=%04X IP=%04X FLAGS=%04X %s",
		c.AX, c.BX, c.CX, c.DX, c.SP, c.BP, c.SI, c.DI,
		c.DS, c.ES, c.SS, c.CS, c.IP, c.Flags, c.flagsMnemonic())
}

func (c *CPU) flagsMnemonic() string {
	flags := []struct {
		mask uint16
		set  string
		clr  string
	}{
		{FlagOF, "OV", "NV"},
		{FlagDF, "DN", "UP"},
		{FlagIF, "EI", "DI"},
		{FlagSF, "NG", "PL"},
		{FlagZF, "ZR", "NZ"},
		{FlagAF, "AC", "NA"},
		{FlagPF, "PE", "PO"},
		{FlagCF, "CY", "NC"},
	}
	out := ""
	for _, f := range flags {
		if c.getFlag(f.mask) {
			out += f.set + " "
		} else {
			out += f.clr + " "
		}
	}
	return out
}
