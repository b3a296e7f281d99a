package ir

// Kind is the semantic tag of an IR statement. The front-end is expected to
// classify every statement; the CFG builder keys its structured heuristics
// on these tags.
type Kind string

const (
	KindAssign Kind = "assign"
	KindDecl   Kind = "decl"
	KindExpr   Kind = "expr"

	KindIf     Kind = "if"
	KindElseIf Kind = "else_if"
	KindElse   Kind = "else"
	KindWhile  Kind = "while"
	KindFor    Kind = "for"
	KindDo     Kind = "do"

	KindSwitch  Kind = "switch"
	KindCase    Kind = "case"
	KindDefault Kind = "default"

	KindBreak    Kind = "break"
	KindContinue Kind = "continue"
	KindReturn   Kind = "return"
	KindGoto     Kind = "goto"
	KindIfGoto   Kind = "if_goto"
	KindSwGoto   Kind = "switch_goto"
	KindLabel    Kind = "label"
	KindFunc     Kind = "func"

	// Synthetic brace markers inserted by front-ends to delimit bodies.
	KindBlockStart Kind = "block_start"
	KindBlockEnd   Kind = "block_end"
)

var kinds = map[Kind]bool{
	KindAssign: true, KindDecl: true, KindExpr: true,
	KindIf: true, KindElseIf: true, KindElse: true,
	KindWhile: true, KindFor: true, KindDo: true,
	KindSwitch: true, KindCase: true, KindDefault: true,
	KindBreak: true, KindContinue: true, KindReturn: true,
	KindGoto: true, KindIfGoto: true, KindSwGoto: true,
	KindLabel: true, KindFunc: true,
	KindBlockStart: true, KindBlockEnd: true,
}

// Valid reports whether k is one of the known statement kinds.
func (k Kind) Valid() bool {
	return kinds[k]
}

// Terminates reports whether a statement of this kind never falls through to
// the next statement in sequence.
func (k Kind) Terminates() bool {
	switch k {
	case KindReturn, KindBreak, KindContinue, KindGoto:
		return true
	}
	return false
}

// PtrOp classifies the pointer effect of a statement for the points-to
// analysis.
type PtrOp string

const (
	// PtrAlloc makes Dst point to the fresh allocation site Site.
	PtrAlloc PtrOp = "alloc"
	// PtrCopy makes Dst point to everything Src points to.
	PtrCopy PtrOp = "copy"
	// PtrLoad is Dst = Src.Field.
	PtrLoad PtrOp = "load"
	// PtrStore is Dst.Field = Src.
	PtrStore PtrOp = "store"
	// PtrUnsupported marks a construct the abstraction cannot model
	// (reflection, unchecked pointer arithmetic, ...). Its effect is
	// excluded and the analysis result is flagged approximate.
	PtrUnsupported PtrOp = "unsupported"
)

// PtrEffect describes how a statement manipulates pointers. Statements
// without pointer-relevant behavior carry no effect.
type PtrEffect struct {
	Op    PtrOp  `yaml:"op"`
	Dst   string `yaml:"dst,omitempty"`
	Src   string `yaml:"src,omitempty"`
	Field string `yaml:"field,omitempty"`
	Site  string `yaml:"site,omitempty"`
	Note  string `yaml:"note,omitempty"`
}

// Statement is a single IR statement. The IR is intentionally minimal: it
// preserves statement order, semantic tags, and def/use sets for the
// data-flow analyses, plus optional control metadata for CFG construction.
type Statement struct {
	ID   int    `yaml:"id"`
	Text string `yaml:"text"`
	Kind Kind   `yaml:"kind"`

	// Data-flow metadata.
	Defs []string `yaml:"defs,omitempty"`
	Uses []string `yaml:"uses,omitempty"`

	// Control metadata, consumed by the CFG builder.
	Cond    string   `yaml:"cond,omitempty"`
	Label   string   `yaml:"label,omitempty"`
	Target  string   `yaml:"target,omitempty"`
	Targets []string `yaml:"targets,omitempty"`

	// Synthetic marks front-end inserted statements (brace markers).
	Synthetic bool `yaml:"synthetic,omitempty"`

	// Pointer effect, when the statement is pointer-relevant.
	Ptr *PtrEffect `yaml:"ptr,omitempty"`
}
