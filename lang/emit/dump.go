package emit

import (
	"fmt"
	"io"

	"github.com/mna/minicc/lang/codegen"
)

// DumpAsmIR writes a plain-text, one-instruction-per-line dump of prog's
// pre-emission pseudo-assembly, operands printed with %v. It lets
// --codegen stop-at runs and tests inspect the legalized IR without
// parsing generated AT&T text.
func DumpAsmIR(w io.Writer, prog *codegen.Program) error {
	for _, tl := range prog.TopLevel {
		switch tl := tl.(type) {
		case *codegen.Function:
			fmt.Fprintf(w, "function %s global=%v\n", tl.Name, tl.Global)
			for _, instr := range tl.Body {
				fmt.Fprintf(w, "\t%v\n", instr)
			}
		case *codegen.StaticVar:
			fmt.Fprintf(w, "staticvar %s global=%v init=%d\n", tl.Name, tl.Global, tl.Init)
		}
	}
	return nil
}
