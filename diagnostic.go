package qimport

import "fmt"

type SyntaxError struct {
	File string
	Pos  Position
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%s: %s", e.File, e.Pos, e.Msg)
}

type FindingKind int

const (
	// FindingMissingExport is reported when a requested name does not appear
	// on the resolved target module's export list.
	FindingMissingExport FindingKind = iota
	// FindingBindingConflict is reported when the bound identifier collides
	// with another top-level binding of the importing module.
	FindingBindingConflict
	// FindingDuplicateName is reported for a name listed twice inside one
	// qualified clause.
	FindingDuplicateName
	// FindingUnresolvable is reported when the module specifier cannot be
	// resolved on the filesystem. It is informational: bare specifiers are
	// expected to be external.
	FindingUnresolvable
)

func (k FindingKind) String() string {
	switch k {
	case FindingMissingExport:
		return "missing-export"
	case FindingBindingConflict:
		return "binding-conflict"
	case FindingDuplicateName:
		return "duplicate-name"
	case FindingUnresolvable:
		return "unresolvable-specifier"
	default:
		return "unknown"
	}
}

// Fatal reports whether the finding blocks rewriting in strict mode.
// Unresolvable specifiers never do.
func (k FindingKind) Fatal() bool {
	return k != FindingUnresolvable
}

type Finding struct {
	Kind FindingKind
	File string
	Pos  Position
	Msg  string
	// RelatedPos points at the other involved declaration for conflicts.
	RelatedPos *Position
}

func (f *Finding) String() string {
	s := fmt.Sprintf("%s:%s: %s: %s", f.File, f.Pos, f.Kind, f.Msg)
	if f.RelatedPos != nil {
		s += fmt.Sprintf(" (previously bound at %s)", f.RelatedPos)
	}
	return s
}

type ValidationError struct {
	Findings []*Finding
}

func (e *ValidationError) Error() string {
	if len(e.Findings) == 1 {
		return e.Findings[0].String()
	}
	return fmt.Sprintf("%s (and %d more findings)", e.Findings[0], len(e.Findings)-1)
}
