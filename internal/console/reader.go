/*
 * riapyx - interactive debugger line reader
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

package console

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/peterh/liner"

	"github.com/nathanjackson/riapyx/internal/machine"
)

var commandWords = []string{"q", "b", "d", "u", "c", "t", "w"}

// Run drives the console thread: it owns standard input exclusively,
// never touches m's fields directly, and communicates only through
// m.Send. It returns when the user quits or aborts the prompt (Ctrl-D
// / Ctrl-C), matching the two threads the design calls for — the
// console thread blocks on input, the emulator thread never does.
func Run(m *machine.Machine, inspector *cpuInspector) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		matches := []string{}
		for _, w := range commandWords {
			if len(partial) <= len(w) && w[:len(partial)] == partial {
				matches = append(matches, w)
			}
		}
		return matches
	})

	// The machine runs free between prompts while "c"/"t" is in effect,
	// so a breakpoint hit has to be printed from its own goroutine rather
	// than waiting for the next Prompt return.
	notifyDone := make(chan struct{})
	defer close(notifyDone)
	go func() {
		for {
			select {
			case n := <-m.Notifications():
				fmt.Println(n.Message)
			case <-notifyDone:
				return
			}
		}
	}()

	for {
		input, err := line.Prompt("riapyx> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			slog.Error("console: error reading line", "error", err)
			return
		}
		line.AppendHistory(input)

		outcome, cmdErr := ProcessCommand(input, m, inspector)
		if cmdErr != nil {
			FatalReport(cmdErr)
		}
		if outcome.Message != "" {
			fmt.Println(outcome.Message)
		}
		if outcome.Quit {
			return
		}
	}
}
