package domain

import (
	"log/slog"
	"sync"
)

// DiagnosticCode classifies a non-fatal problem
type DiagnosticCode string

const (
	CodeInvalidDefinition  DiagnosticCode = "invalid_definition"
	CodeDuplicateNode      DiagnosticCode = "duplicate_node"
	CodeDanglingConnection DiagnosticCode = "dangling_connection"
	CodeDuplicateEdge      DiagnosticCode = "duplicate_edge"
	CodeSelfLoop           DiagnosticCode = "self_loop"
	CodeRoomToRoom         DiagnosticCode = "room_to_room"
	CodeWallCrossing       DiagnosticCode = "wall_crossing"
	CodeAsymmetricEdge     DiagnosticCode = "asymmetric_edge"
	CodeFloorConflict      DiagnosticCode = "floor_conflict"
	CodeUnresolvedFloor    DiagnosticCode = "unresolved_floor"
	CodeIsolatedNode       DiagnosticCode = "isolated_node"
	CodeRouteNotFound      DiagnosticCode = "route_not_found"
	CodeIterationCap       DiagnosticCode = "iteration_cap"
)

// Severity of a diagnostic
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a reported construction, resolution or search problem
type Diagnostic struct {
	Code     DiagnosticCode `json:"code"`
	Severity Severity       `json:"severity"`
	NodeID   string         `json:"node_id,omitempty"`
	OtherID  string         `json:"other_id,omitempty"`
	Message  string         `json:"message"`
}

// Reporter receives diagnostics. A nil Reporter discards them.
type Reporter func(Diagnostic)

// Report delivers d if r is non-nil
func (r Reporter) Report(d Diagnostic) {
	if r != nil {
		r(d)
	}
}

// Tee returns a reporter that forwards to every non-nil reporter
func Tee(reporters ...Reporter) Reporter {
	return func(d Diagnostic) {
		for _, r := range reporters {
			r.Report(d)
		}
	}
}

// LogReporter adapts a structured logger into a Reporter
func LogReporter(logger *slog.Logger) Reporter {
	if logger == nil {
		return nil
	}
	return func(d Diagnostic) {
		attrs := []any{
			slog.String("code", string(d.Code)),
		}
		if d.NodeID != "" {
			attrs = append(attrs, slog.String("node", d.NodeID))
		}
		if d.OtherID != "" {
			attrs = append(attrs, slog.String("other", d.OtherID))
		}
		switch d.Severity {
		case SeverityError:
			logger.Error(d.Message, attrs...)
		case SeverityWarning:
			logger.Warn(d.Message, attrs...)
		default:
			logger.Debug(d.Message, attrs...)
		}
	}
}

// Collector accumulates diagnostics. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Reporter returns a Reporter that appends to the collector
func (c *Collector) Reporter() Reporter {
	return func(d Diagnostic) {
		c.mu.Lock()
		c.items = append(c.items, d)
		c.mu.Unlock()
	}
}

// All returns a copy of the collected diagnostics
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns how many diagnostics have the given code
func (c *Collector) Count(code DiagnosticCode) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Len returns the total number of diagnostics
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
