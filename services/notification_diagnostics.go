// services/notification_diagnostics.go
package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// Fields carries contextual values (event kind, ticket id, user ids) attached
// to a diagnostic event so failures can be diagnosed without reproducing them.
type Fields map[string]interface{}

// Diagnostics receives the dispatcher's structured outcome events. The
// dispatcher never logs directly; the sink decides the backend.
type Diagnostics interface {
	Sent(event EventKind, fields Fields)
	Suppressed(event EventKind, reason string, fields Fields)
	Failed(event EventKind, err error, fields Fields)
}

// logDiagnostics writes diagnostic events through the standard logger.
type logDiagnostics struct{}

// NewLogDiagnostics returns a Diagnostics sink backed by the standard logger.
func NewLogDiagnostics() Diagnostics {
	return logDiagnostics{}
}

func (logDiagnostics) Sent(event EventKind, fields Fields) {
	log.Printf("notification sent: event=%s %s", event, formatFields(fields))
}

func (logDiagnostics) Suppressed(event EventKind, reason string, fields Fields) {
	log.Printf("notification suppressed: event=%s reason=%s %s", event, reason, formatFields(fields))
}

func (logDiagnostics) Failed(event EventKind, err error, fields Fields) {
	log.Printf("notification failed: event=%s error=%v %s", event, err, formatFields(fields))
}

func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
