/*
 * riapyx - main process
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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/nathanjackson/riapyx/internal/bios"
	"github.com/nathanjackson/riapyx/internal/bus"
	"github.com/nathanjackson/riapyx/internal/console"
	"github.com/nathanjackson/riapyx/internal/cpu"
	"github.com/nathanjackson/riapyx/internal/disk"
	"github.com/nathanjackson/riapyx/internal/keyboard"
	"github.com/nathanjackson/riapyx/internal/machine"
	"github.com/nathanjackson/riapyx/internal/pic"
	"github.com/nathanjackson/riapyx/internal/pit"
	"github.com/nathanjackson/riapyx/internal/video"
	logger "github.com/nathanjackson/riapyx/util/logger"
)

func main() {
	optBoot := getopt.StringLong("boot", 'b', "hd", "Boot drive: fd or hd")
	optHD := getopt.StringLong("hd", 0, "", "Hard disk image")
	optFD := getopt.StringLong("fd", 0, "", "Floppy image")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Echo all log records to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile *os.File
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "riapyx: cannot create log file:", err)
			os.Exit(1)
		}
		logFile = f
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	slog.SetDefault(slog.New(logger.New(logFile, &slog.HandlerOptions{Level: programLevel}, *optDebug)))

	var bootDrive uint8
	switch *optBoot {
	case "fd":
		bootDrive = 0x00
	case "hd":
		bootDrive = 0x80
	default:
		fmt.Fprintln(os.Stderr, "riapyx: --boot must be fd or hd")
		os.Exit(1)
	}

	controller := &disk.Controller{}
	if *optFD != "" {
		fd, err := disk.OpenFloppy(*optFD, false)
		if err != nil {
			fmt.Fprintln(os.Stderr, "riapyx: opening floppy image:", err)
			os.Exit(1)
		}
		controller.Floppy = fd
	}
	if *optHD != "" {
		hd, err := disk.OpenHardDisk(*optHD, false)
		if err != nil {
			fmt.Fprintln(os.Stderr, "riapyx: opening hard disk image:", err)
			os.Exit(1)
		}
		controller.HardDisk = hd
	}
	if controller.Drive(bootDrive) == nil {
		fmt.Fprintf(os.Stderr, "riapyx: no image attached for boot drive %#02x\n", bootDrive)
		os.Exit(1)
	}

	b := bus.New()
	picDev := pic.New()
	pitDev := pit.New()
	c := cpu.New(b, picDev)
	videoAdapter := video.New()
	kbd := keyboard.New()
	biosLayer := bios.New(b, videoAdapter, kbd, controller)
	biosLayer.Install(c)

	if err := biosLayer.PowerOn(bootDrive); err != nil {
		fmt.Fprintln(os.Stderr, "riapyx: bootstrap failed:", err)
		os.Exit(1)
	}

	m := machine.New(c, b, picDev, pitDev, biosLayer)
	m.Start()

	inspector := console.NewInspector(
		c.RegisterDump,
		c.DumpMemory,
		c.Disassemble,
		func(path string) error { return dumpPhysicalMemory(b, path) },
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		console.Run(m, inspector)
		close(done)
	}()

	select {
	case <-sigChan:
		fmt.Println("riapyx: interrupted, shutting down")
	case <-done:
	}

	m.Stop()
	if err := controller.Close(); err != nil {
		slog.Warn("riapyx: closing disk images", "error", err)
	}
}

func dumpPhysicalMemory(b *bus.Bus, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(b.ReadBytes(0, 1<<20))
	return err
}
