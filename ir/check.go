package ir

import "fmt"

// Severity classifies a checker message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Message is one diagnostic produced by Check. Kind is a short, stable tag
// ("call-missing-callee", "missing-condition", ...) so callers can
// pattern-match without parsing Text.
type Message struct {
	Kind     string
	Severity Severity
	Location Addr
	Text     string
}

// CheckResult aggregates the messages produced by Check.
type CheckResult struct {
	Messages []Message
}

// HasErrors reports whether any message carries SeverityError — the SCoP
// codegen round-trip (scop.ToIR) treats this as a fatal semantic-check
// failure and aborts.
func (r CheckResult) HasErrors() bool {
	for _, m := range r.Messages {
		if m.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Check implements the semantic-checker collaborator: it flags, at
// minimum, argument-count/type mismatches, return-type mismatches, invalid
// initializers, non-boolean conditions, non-integer switch values, field
// access on non-composites, tuple-element access on non-tuples, literal
// type mismatches, and reference-rank mismatches on casts.
//
// This stand-in checks only the structural subset expressible by the minimal
// ir.Node shape above (a call with no callee operand and a KindIf/KindWhile
// with no condition operand are errors; a KindUnknown node is a warning); a
// real front-end's type checker would
// extend the same Message shape with its full type system.
func Check(m *Manager, root Addr) CheckResult {
	var res CheckResult
	Walk(m, root, Visitor{
		Default: func(m *Manager, n *Node) {
			switch n.Kind {
			case KindCall:
				if len(n.Operands) == 0 {
					res.Messages = append(res.Messages, Message{
						Kind:     "call-missing-callee",
						Severity: SeverityError,
						Location: n.Addr,
						Text:     fmt.Sprintf("call to %q has no callee operand", n.Symbol),
					})
				}
			case KindIf, KindWhile:
				if len(n.Operands) == 0 {
					res.Messages = append(res.Messages, Message{
						Kind:     "missing-condition",
						Severity: SeverityError,
						Location: n.Addr,
						Text:     fmt.Sprintf("%s has no condition operand", n.Kind),
					})
				}
			case KindUnknown:
				res.Messages = append(res.Messages, Message{
					Kind:     "unknown-node-kind",
					Severity: SeverityWarning,
					Location: n.Addr,
					Text:     "conservative: node kind not recognized by this checker",
				})
			}
		},
	})
	return res
}
