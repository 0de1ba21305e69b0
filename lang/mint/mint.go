// Package mint mints the program-unique names threaded through the front
// end and the TAC lowering pass: suffixed local-variable names, compiler
// temporaries, and synthetic loop/switch labels. The source compiler this
// was adapted from keeps these as process-global mutable counters; here
// they are owned by a single Mint value created once per compile and
// passed by reference to every pass that needs it, so two independent
// compiles (e.g. in tests running in parallel) never share counters.
package mint

import "fmt"

// Mint owns the monotonically increasing counters used to generate names
// that must be unique across the whole compile, not just within a single
// pass.
type Mint struct {
	varSeq   int
	tempSeq  int
	labelSeq int
}

// New returns a fresh Mint with all counters at zero.
func New() *Mint { return &Mint{} }

// Var mints a unique local-variable name derived from its source name,
// e.g. "x" -> "x.u3".
func (m *Mint) Var(base string) string {
	m.varSeq++
	return fmt.Sprintf("%s.u%d", base, m.varSeq)
}

// Temp mints a fresh TAC temporary name, e.g. "temp.4".
func (m *Mint) Temp() string {
	m.tempSeq++
	return fmt.Sprintf("temp.%d", m.tempSeq)
}

// Label mints a fresh synthetic label with the given construct prefix
// (e.g. "while", "dowhile", "for", "switch"), e.g. "label_while.2".
func (m *Mint) Label(prefix string) string {
	m.labelSeq++
	return fmt.Sprintf("label_%s.%d", prefix, m.labelSeq)
}
