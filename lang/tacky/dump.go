package tacky

import (
	"fmt"
	"io"
)

// Dump writes a plain-text, one-instruction-per-line rendering of prog,
// for the driver's --tacky stop-at stage and for tests that want to assert
// on the IR shape without re-deriving it from the lowering pass's internals.
func Dump(w io.Writer, prog *Program) error {
	for _, tl := range prog.TopLevel {
		switch tl := tl.(type) {
		case *Function:
			fmt.Fprintf(w, "function %s global=%v params=%v\n", tl.Name, tl.Global, tl.Params)
			for _, instr := range tl.Body {
				fmt.Fprintf(w, "\t%v\n", instr)
			}
		case *StaticVar:
			fmt.Fprintf(w, "staticvar %s global=%v init=%d\n", tl.Name, tl.Global, tl.Init)
		}
	}
	return nil
}
