package diag

import (
	"fmt"
)

// Code identifies a diagnostic category. Blocks are reserved per phase.
type Code uint16

const (
	UnknownCode Code = 0

	// I/O
	IOReadError Code = 100

	// Include resolution
	IncInfo           Code = 1000
	IncNotFound       Code = 1001
	IncJailViolation  Code = 1002
	IncCycle          Code = 1003
	IncDepthExceeded  Code = 1004
	IncUnresolvedAttr Code = 1005
	IncBadSelector    Code = 1006
	IncProcessorError Code = 1007

	// Conditional directives
	CondInfo            Code = 2000
	CondUnbalanced      Code = 2001
	CondStrayEndIf      Code = 2002
	CondMismatchedEndIf Code = 2003
	CondBadExpr         Code = 2004
)

func (c Code) String() string {
	switch c {
	case IOReadError:
		return "IO0100"
	case IncInfo, IncNotFound, IncJailViolation, IncCycle, IncDepthExceeded,
		IncUnresolvedAttr, IncBadSelector, IncProcessorError:
		return fmt.Sprintf("INC%04d", uint16(c)-1000)
	case CondInfo, CondUnbalanced, CondStrayEndIf, CondMismatchedEndIf, CondBadExpr:
		return fmt.Sprintf("COND%04d", uint16(c)-2000)
	}
	return fmt.Sprintf("UNK%04d", uint16(c))
}

// Structural reports whether the code describes a structural error,
// which is always fatal regardless of configuration.
func (c Code) Structural() bool {
	switch c {
	case IncCycle, IncDepthExceeded, CondUnbalanced, CondStrayEndIf,
		CondMismatchedEndIf, CondBadExpr:
		return true
	}
	return false
}
