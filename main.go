// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: main.go
// Summary: Reference front end: runs shells in split panes on the emulator
//          core, displayed through tcell.
// Usage: texelcore [-shell /bin/bash] [-scrollback 2000] [-log texelcore.log]

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	xterm "golang.org/x/term"

	"github.com/framegrace/texelcore/display"
	"github.com/framegrace/texelcore/hostio"
	"github.com/framegrace/texelcore/term"
	"github.com/framegrace/texelcore/vt"
)

func main() {
	shell := flag.String("shell", defaultShell(), "command to run in each pane")
	scrollback := flag.Int("scrollback", 2000, "history rows kept per session")
	logPath := flag.String("log", "texelcore.log", "diagnostic log file")
	flag.Parse()

	if !xterm.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "texelcore needs an interactive terminal")
		os.Exit(1)
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		panic(err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.Println("Application starting...")

	var host *hostio.Host
	terminal := term.NewTerminal(24, 80,
		term.WithScrollback(*scrollback),
		term.WithReporter(func(level vt.ReportLevel, source vt.ReportSource, msg string) {
			log.Printf("%s: [%s] %s", source, level, msg)
		}),
		term.WithSessionResize(func(idx, cols, rows int) {
			if host != nil {
				host.HandleResize(idx, cols, rows)
			}
		}),
	)
	host = hostio.NewHost(terminal, *shell)
	defer host.Close()

	screen, err := display.NewScreen(terminal, host.Refresh)
	if err != nil {
		panic(err)
	}
	defer screen.Close()
	screen.Spawn = host.StartSession

	host.OnExit = func(idx int) {
		terminal.CloseSession(idx)
		if terminal.FocusedSession() == nil {
			screen.Close()
		}
	}

	if err := host.StartSession(0); err != nil {
		screen.Close()
		log.Fatalf("Failed to start %q: %v", *shell, err)
	}

	if err := screen.Run(); err != nil {
		log.Fatalf("Application exited with error: %v", err)
	}
	log.Println("Application stopped cleanly.")
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/bash"
}
