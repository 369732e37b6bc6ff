// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/report.go
// Summary: Error reporting levels, sources and the reporter callback.
// Usage: Every recoverable condition in the core funnels through a Reporter.

package vt

import "log"

// ReportLevel classifies the severity of a reported condition.
type ReportLevel int

const (
	LevelDebug ReportLevel = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelFatal
)

// String returns a human-readable representation of the level.
func (l ReportLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// ReportSource identifies which subsystem raised a report.
type ReportSource int

const (
	SourceParser ReportSource = iota
	SourceExecutor
	SourceSystem
	SourceGraphics
	SourceGateway
	SourceIO
)

// String returns a human-readable representation of the source.
func (s ReportSource) String() string {
	switch s {
	case SourceParser:
		return "PARSER"
	case SourceExecutor:
		return "EXECUTOR"
	case SourceSystem:
		return "SYSTEM"
	case SourceGraphics:
		return "GRAPHICS"
	case SourceGateway:
		return "GATEWAY"
	case SourceIO:
		return "IO"
	}
	return "UNKNOWN"
}

// Reporter receives every recoverable condition the core encounters. The core
// never aborts the process: parse failures, unsupported sequences and resource
// exhaustion all end up here and execution continues.
type Reporter func(level ReportLevel, source ReportSource, msg string)

// LogReporter writes reports through the standard logger. It is the default
// reporter when none is configured.
func LogReporter(level ReportLevel, source ReportSource, msg string) {
	log.Printf("%s: [%s] %s", source, level, msg)
}
