package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/flowgen/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode tracks if we're running as an MCP server (set by main). Debug
// output is suppressed entirely then: stdio belongs to the protocol.
var MCPMode = false

var (
	debugMutex  sync.Mutex
	debugOutput io.Writer = os.Stderr
)

// SetMCPMode enables MCP mode which suppresses all debug output to stdio.
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetOutput sets a custom writer for debug output. Pass nil to disable.
func SetOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// Enabled returns true if debug logging is active.
func Enabled() bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	switch os.Getenv("FLOWGEN_DEBUG") {
	case "1", "true":
		return true
	}
	return false
}

func logf(category, format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	debugMutex.Lock()
	defer debugMutex.Unlock()
	if debugOutput == nil {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(debugOutput, "[%s] %s: %s\n", ts, category, fmt.Sprintf(format, args...))
}

// LogBuild logs flowchart construction events.
func LogBuild(format string, args ...interface{}) {
	logf("BUILD", format, args...)
}

// LogSelect logs callable selection events.
func LogSelect(format string, args ...interface{}) {
	logf("SELECT", format, args...)
}

// LogWatch logs file watcher events.
func LogWatch(format string, args ...interface{}) {
	logf("WATCH", format, args...)
}

// LogParse logs parser setup and invocation events.
func LogParse(format string, args ...interface{}) {
	logf("PARSE", format, args...)
}
