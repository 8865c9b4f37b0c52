// Package agent implements the HR assistant's conversation policy.
//
// Each conversation thread carries a sticky employee profile and domain
// plus a bounded history. The policy decides per turn whether to ask for
// the employee's profile, run one corpus retrieval, or answer with a fixed
// fallback sentence, and compacts history once it grows past a threshold.
package agent

import "unicode/utf8"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSummary marks a turn that condenses earlier, compacted turns.
	RoleSummary Role = "summary"
)

// Turn is one utterance in a conversation thread.
type Turn struct {
	Role Role
	Text string
}

// State holds everything remembered about one conversation thread. The
// sticky profile and domain live outside the history so compaction can
// never lose them. State is not safe for concurrent use; the Store
// serializes access per thread.
type State struct {
	profile string
	domain  string
	history []Turn
}

// Profile returns the sticky employee profile, or "" when not yet known.
func (s *State) Profile() string { return s.profile }

// SetProfile records the employee profile for the rest of the thread.
func (s *State) SetProfile(p string) { s.profile = p }

// Domain returns the sticky HR domain, or "" when none applies.
func (s *State) Domain() string { return s.domain }

// SetDomain records the current HR domain for the thread.
func (s *State) SetDomain(d string) { s.domain = d }

// Append adds a turn to the history.
func (s *State) Append(role Role, text string) {
	s.history = append(s.history, Turn{Role: role, Text: text})
}

// History returns a copy of the thread history.
func (s *State) History() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// HistorySize returns the total rune count of the history, the measure the
// compaction threshold is expressed in.
func (s *State) HistorySize() int {
	var n int
	for _, t := range s.history {
		n += utf8.RuneCountInString(t.Text)
	}
	return n
}

// Len returns the number of turns in the history.
func (s *State) Len() int { return len(s.history) }

// CompactInput returns the turns that a compaction with the given keep
// count would fold into a summary, or nil when there is nothing to fold.
func (s *State) CompactInput(keep int) []Turn {
	if keep < 0 {
		keep = 0
	}
	if len(s.history) <= keep {
		return nil
	}
	head := s.history[:len(s.history)-keep]
	out := make([]Turn, len(head))
	copy(out, head)
	return out
}

// Compact replaces all but the last keep turns with a single summary turn.
// The sticky profile and domain are untouched.
func (s *State) Compact(summary string, keep int) {
	if keep < 0 {
		keep = 0
	}
	if len(s.history) <= keep {
		return
	}
	tail := s.history[len(s.history)-keep:]
	compacted := make([]Turn, 0, keep+1)
	compacted = append(compacted, Turn{Role: RoleSummary, Text: summary})
	compacted = append(compacted, tail...)
	s.history = compacted
}
