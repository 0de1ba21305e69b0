package typecheck

import "github.com/dolthub/swiss"

// TypeKind distinguishes the two shapes a symbol's type can take.
type TypeKind int

const (
	IntKind TypeKind = iota
	FuncKind
)

// Type is either Int or Function(arity); Arity is meaningless for Int.
type Type struct {
	Kind  TypeKind
	Arity int
}

var IntType = Type{Kind: IntKind}

func FuncType(arity int) Type { return Type{Kind: FuncKind, Arity: arity} }

// InitKind distinguishes how a file-scope/static variable's initial value
// was resolved.
type InitKind int

const (
	// NoInitializer is an extern declaration with no initializer: the
	// variable is defined elsewhere.
	NoInitializer InitKind = iota
	// Tentative is a file-scope declaration with no initializer and no
	// extern: its value is zero unless another declaration initializes it.
	Tentative
	// Initial is a declaration with a constant-literal initializer.
	Initial
)

// InitialValue is the resolved initial-value classification of a static
// storage duration variable.
type InitialValue struct {
	Kind  InitKind
	Value int64 // meaningful only when Kind == Initial
}

// Attrs is implemented by the three attribute shapes a symbol can carry.
type Attrs interface{ attrsNode() }

// FuncAttr is attached to function symbols.
type FuncAttr struct {
	Defined bool
	Global  bool
}

func (*FuncAttr) attrsNode() {}

// StaticAttr is attached to symbols with static storage duration: file-scope
// variables and local statics/externs.
type StaticAttr struct {
	Init   InitialValue
	Global bool
}

func (*StaticAttr) attrsNode() {}

// LocalAttr is attached to ordinary (automatic storage duration) locals.
type LocalAttr struct{}

func (*LocalAttr) attrsNode() {}

// Symbol is one entry of the symbol table: a type plus the attributes that
// record its linkage, storage, and (for statics) initial value.
type Symbol struct {
	Type  Type
	Attrs Attrs
}

// Table is the symbol table built by the type checker and consulted by
// the emitter to decide how to reference each name, and by TAC lowering to
// enumerate static variables. It is backed by a swiss-table hash map, the
// same one the ahead-of-time compiler's teacher project uses for its own
// runtime map type, since lookups are by plain string equality; insertion
// order (needed for deterministic static-variable emission) is tracked
// separately since swiss.Map does not preserve it.
type Table struct {
	m     *swiss.Map[string, *Symbol]
	order []string
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{m: swiss.NewMap[string, *Symbol](64)}
}

// Get looks up name.
func (t *Table) Get(name string) (*Symbol, bool) { return t.m.Get(name) }

// Set installs or overwrites the entry for name.
func (t *Table) Set(name string, sym *Symbol) {
	if _, exists := t.m.Get(name); !exists {
		t.order = append(t.order, name)
	}
	t.m.Put(name, sym)
}

// Names returns every name ever installed, in first-insertion order.
func (t *Table) Names() []string { return t.order }
