package engine

import (
	"fmt"
	"log"
)

// Severity grades a Report.
type Severity int

const (
	Notify Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "notify"
	}
}

// Report is one recoverable diagnostic from the engine: an unknown drum, a
// note token the backend rejected, a feedback call while the gate is closed.
// Reports are how failures degrade to "no sound produced" instead of
// crossing the public boundary as errors.
type Report struct {
	Source   string
	Severity Severity
	Message  string
}

func (r Report) String() string {
	return fmt.Sprintf("%s: %s: %s", r.Severity, r.Source, r.Message)
}

// Reports is a non-blocking diagnostics channel. Senders never block: when
// the receiver cannot keep up, reports are dropped rather than stalling a
// trigger path.
type Reports struct {
	C chan Report
}

// NewReports creates a Reports with a buffered channel the UI can drain.
func NewReports() *Reports {
	return &Reports{C: make(chan Report, 64)}
}

// send delivers a report without blocking. A nil *Reports falls back to the
// standard logger, so components can always report.
func (r *Reports) send(source string, severity Severity, format string, args ...any) {
	rep := Report{Source: source, Severity: severity, Message: fmt.Sprintf(format, args...)}
	if r == nil {
		log.Print(rep.String())
		return
	}
	select {
	case r.C <- rep:
	default:
	}
}
