package diag

import "fmt"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	// SevError is for recoverable errors; the reduction still produces output.
	SevError
	// SevFatal is for structural errors; the reduced output cannot be trusted.
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// ParseSeverity maps a log-level name to a Severity threshold.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "info":
		return SevInfo, nil
	case "warn", "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	case "fatal":
		return SevFatal, nil
	}
	return SevInfo, fmt.Errorf("unknown log level: %s", name)
}
