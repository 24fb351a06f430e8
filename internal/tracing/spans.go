package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names of a driver run.
const (
	SpanDriverStart     = "driver.start"
	SpanDriverSession   = "driver.session"
	SpanDriverTerminate = "driver.terminate"
)

// Span attribute keys.
const (
	AttrProcessPID     = "process.pid"
	AttrProcessCommand = "process.command"
	AttrSignal         = "process.signal"
	AttrRunID          = "run.id"
	AttrTermName       = "term.name"
	AttrPTYRows        = "pty.rows"
	AttrPTYCols        = "pty.cols"
	AttrBytesRead      = "pty.bytes_read"
	AttrReads          = "pty.reads"
	AttrExitCause      = "exit.cause"
	AttrErrorMessage   = "error.message"
)

// Span event names.
const (
	EventSpawned = "process.spawned"
	EventExited  = "process.exited"
)

// RecordError marks span failed with err.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
