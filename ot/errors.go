package ot

import "fmt"

// Error conditions raised during parsing fall into four categories. Only
// MalformedContainer is fatal for a font; the other three are caught at the
// decoder boundary and downgrade the affected table to an opaque byte range.

// MalformedContainer reports an unusable outer structure: an unrecognized
// leading tag, a table directory running past the end of the data, or a
// collection member offset outside the data.
type MalformedContainer struct {
	Reason string
}

func (e *MalformedContainer) Error() string {
	return "malformed font container: " + e.Reason
}

// UnexpectedEndOfData reports a read crossing the bound of the byte segment
// it was scoped to. At is the attempted position, Want the number of bytes
// requested, Bound the segment size.
type UnexpectedEndOfData struct {
	At    int
	Want  int
	Bound int
}

func (e *UnexpectedEndOfData) Error() string {
	return fmt.Sprintf("unexpected end of data: read of %d bytes at %d, bound %d", e.Want, e.At, e.Bound)
}

// UnresolvedPrerequisite reports that a table decoder could not run because
// a table it depends on is absent or was itself left opaque.
type UnresolvedPrerequisite struct {
	Table   Tag
	Missing Tag
}

func (e *UnresolvedPrerequisite) Error() string {
	return fmt.Sprintf("table %s: prerequisite %s absent or undecoded", e.Table, e.Missing)
}

// UnsupportedDiscriminator reports a format or version selector with a value
// the decoder does not know. Structure names the OpenType structure, Value is
// the selector encountered.
type UnsupportedDiscriminator struct {
	Structure string
	Value     uint32
}

func (e *UnsupportedDiscriminator) Error() string {
	return fmt.Sprintf("%s: unsupported format/version %d", e.Structure, e.Value)
}

// --- Collected errors and warnings -----------------------------------------

// ErrorSeverity represents the severity level of a font parsing error.
type ErrorSeverity int

const (
	// SeverityCritical indicates a severe error that makes the font unusable or unreliable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a significant error that may affect functionality but doesn't prevent usage.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered during font parsing.
// Errors are accumulated during initial parsing and can be inspected after
// parsing completes.
type FontError struct {
	Table    Tag           // the OpenType table where the error occurred (e.g., "GSUB", "GPOS")
	Section  string        // specific section within the table (e.g., "LookupType6", "ScriptList")
	Issue    string        // human-readable description of the issue
	Severity ErrorSeverity // severity level of the error
	Offset   uint32        // byte offset in the font file where the error occurred (0 if unknown)
	Cause    error         // underlying condition, if one of the typed conditions above
}

// Error implements the error interface.
func (e FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Table, e.Section, e.Issue)
}

// Unwrap exposes the underlying condition for errors.Is/As.
func (e FontError) Unwrap() error {
	return e.Cause
}

// FontWarning represents a non-critical issue encountered during font parsing.
// Warnings indicate potential problems but do not prevent font usage.
type FontWarning struct {
	Table  Tag    // the OpenType table where the warning occurred
	Issue  string // human-readable description of the warning
	Offset uint32 // byte offset in the font file where the warning occurred (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// errorCollector accumulates errors and warnings during font parsing.
// This is an internal helper used by the parser to collect issues as they are
// discovered.
type errorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

// addError records a parsing error.
func (ec *errorCollector) addError(table Tag, section string, issue string, severity ErrorSeverity, offset uint32) {
	ec.errors = append(ec.errors, FontError{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   offset,
	})
}

// addCondition records a parsing error wrapping one of the typed conditions.
func (ec *errorCollector) addCondition(table Tag, section string, cause error, severity ErrorSeverity, offset uint32) {
	ec.errors = append(ec.errors, FontError{
		Table:    table,
		Section:  section,
		Issue:    cause.Error(),
		Severity: severity,
		Offset:   offset,
		Cause:    cause,
	})
}

// addWarning records a parsing warning.
func (ec *errorCollector) addWarning(table Tag, issue string, offset uint32) {
	ec.warnings = append(ec.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Offset: offset,
	})
}

// hasErrors returns true if any errors have been recorded.
func (ec *errorCollector) hasErrors() bool {
	return len(ec.errors) > 0
}

// hasCriticalErrors returns true if any critical errors have been recorded.
func (ec *errorCollector) hasCriticalErrors() bool {
	for _, err := range ec.errors {
		if err.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
