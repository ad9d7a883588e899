package forge

// The AST is built once per parse and is immutable afterwards; only Fn
// values keep live references into subtrees (their body block).

// Node is anything with a source span.
type Node interface {
	Span() Span
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// UnaryOp enumerates prefix operators, including the mid-precedence
// input/clone/mirror forms.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
	OpInput
	OpClone
	OpMirror
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	case OpInput:
		return "input"
	case OpClone:
		return "clone"
	case OpMirror:
		return "mirror"
	}
	return "?"
}

// BinOp enumerates infix operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpAnd
	OpOr
	OpXor
	OpRange
	OpAs
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpRem:
		return "%"
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLess:
		return "<"
	case OpLessEq:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEq:
		return ">="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpRange:
		return ".."
	case OpAs:
		return "as"
	}
	return "?"
}

// ----- expressions -----

type NumberLit struct {
	Value float64
	Pos   Span
}

type StringLit struct {
	Value string
	Pos   Span
}

type CharLit struct {
	Value rune
	Pos   Span
}

type BoolLit struct {
	Value bool
	Pos   Span
}

type NullLit struct {
	Pos Span
}

type IdentExpr struct {
	Name string
	Pos  Span
}

type ListLit struct {
	Elems []Expr
	Pos   Span
}

// ListFill is the `[elem; count]` literal: count evaluated copies of elem.
type ListFill struct {
	Elem  Expr
	Count Expr
	Pos   Span
}

type MapPair struct {
	Key Expr
	Val Expr
}

type MapLit struct {
	Pairs []MapPair
	Pos   Span
}

// FnLit is the `|params| { ... }` function literal. Decl is the declaration
// span used for secondary diagnostic frames; it never changes after parse.
type FnLit struct {
	Params     []string
	ParamSpans []Span
	Body       *BlockStmt
	Decl       Span
}

type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
	OpSpan  Span
	Pos     Span
}

type BinaryExpr struct {
	Op     BinOp
	Left   Expr
	Right  Expr
	OpSpan Span
	Pos    Span
}

type CallExpr struct {
	Callee Expr
	Args   []Expr
	Pos    Span
}

type IndexExpr struct {
	Target Expr
	Index  Expr
	Pos    Span
}

// AssignOp enumerates the assignment operator family.
type AssignOp int

const (
	AsnSet AssignOp = iota // "="
	AsnAdd                 // "+="
	AsnSub                 // "-="
	AsnMul                 // "*="
	AsnDiv                 // "/="
	AsnRem                 // "%="
)

func (op AssignOp) String() string {
	switch op {
	case AsnSet:
		return "="
	case AsnAdd:
		return "+="
	case AsnSub:
		return "-="
	case AsnMul:
		return "*="
	case AsnDiv:
		return "/="
	case AsnRem:
		return "%="
	}
	return "?"
}

// binOp maps a compound assignment to the binary operator it applies.
func (op AssignOp) binOp() BinOp {
	switch op {
	case AsnAdd:
		return OpAdd
	case AsnSub:
		return OpSub
	case AsnMul:
		return OpMul
	case AsnDiv:
		return OpDiv
	default:
		return OpRem
	}
}

// LVal is a settable target: only identifiers and index expressions convert;
// the parser rejects every other form on the left of an assignment.
type LVal interface {
	Node
	lvalNode()
}

type LocalLVal struct {
	Name string
	Pos  Span
}

type IndexLVal struct {
	Target Expr
	Index  Expr
	Pos    Span
}

type AssignExpr struct {
	Target LVal
	Op     AssignOp
	Value  Expr
	OpSpan Span
	Pos    Span
}

// ----- statements -----

type VarDeclStmt struct {
	Name     string
	NameSpan Span
	Init     Expr
	Pos      Span
}

type ExprStmt struct {
	E   Expr
	Pos Span
}

type PrintStmt struct {
	E   Expr
	Pos Span
}

type IfStmt struct {
	Cond Expr
	Then *BlockStmt
	Else *BlockStmt // nil when there is no else branch
	Pos  Span
}

type WhileStmt struct {
	Cond Expr
	Body *BlockStmt
	Pos  Span
}

type ForStmt struct {
	Name     string
	NameSpan Span
	Iter     Expr
	Body     *BlockStmt
	Pos      Span
}

type ReturnStmt struct {
	E   Expr // nil for a bare `return;`
	Pos Span
}

type BreakStmt struct {
	Pos Span
}

type ContinueStmt struct {
	Pos Span
}

type BlockStmt struct {
	Stmts []Stmt
	Pos   Span
}

// ----- span accessors and marker methods -----

func (e *NumberLit) Span() Span  { return e.Pos }
func (e *StringLit) Span() Span  { return e.Pos }
func (e *CharLit) Span() Span    { return e.Pos }
func (e *BoolLit) Span() Span    { return e.Pos }
func (e *NullLit) Span() Span    { return e.Pos }
func (e *IdentExpr) Span() Span  { return e.Pos }
func (e *ListLit) Span() Span    { return e.Pos }
func (e *ListFill) Span() Span   { return e.Pos }
func (e *MapLit) Span() Span     { return e.Pos }
func (e *FnLit) Span() Span      { return e.Decl }
func (e *UnaryExpr) Span() Span  { return e.Pos }
func (e *BinaryExpr) Span() Span { return e.Pos }
func (e *CallExpr) Span() Span   { return e.Pos }
func (e *IndexExpr) Span() Span  { return e.Pos }
func (e *AssignExpr) Span() Span { return e.Pos }

func (e *NumberLit) exprNode()  {}
func (e *StringLit) exprNode()  {}
func (e *CharLit) exprNode()    {}
func (e *BoolLit) exprNode()    {}
func (e *NullLit) exprNode()    {}
func (e *IdentExpr) exprNode()  {}
func (e *ListLit) exprNode()    {}
func (e *ListFill) exprNode()   {}
func (e *MapLit) exprNode()     {}
func (e *FnLit) exprNode()      {}
func (e *UnaryExpr) exprNode()  {}
func (e *BinaryExpr) exprNode() {}
func (e *CallExpr) exprNode()   {}
func (e *IndexExpr) exprNode()  {}
func (e *AssignExpr) exprNode() {}

func (l *LocalLVal) Span() Span { return l.Pos }
func (l *IndexLVal) Span() Span { return l.Pos }
func (l *LocalLVal) lvalNode()  {}
func (l *IndexLVal) lvalNode()  {}

func (s *VarDeclStmt) Span() Span  { return s.Pos }
func (s *ExprStmt) Span() Span     { return s.Pos }
func (s *PrintStmt) Span() Span    { return s.Pos }
func (s *IfStmt) Span() Span       { return s.Pos }
func (s *WhileStmt) Span() Span    { return s.Pos }
func (s *ForStmt) Span() Span      { return s.Pos }
func (s *ReturnStmt) Span() Span   { return s.Pos }
func (s *BreakStmt) Span() Span    { return s.Pos }
func (s *ContinueStmt) Span() Span { return s.Pos }
func (s *BlockStmt) Span() Span    { return s.Pos }

func (s *VarDeclStmt) stmtNode()  {}
func (s *ExprStmt) stmtNode()     {}
func (s *PrintStmt) stmtNode()    {}
func (s *IfStmt) stmtNode()       {}
func (s *WhileStmt) stmtNode()    {}
func (s *ForStmt) stmtNode()      {}
func (s *ReturnStmt) stmtNode()   {}
func (s *BreakStmt) stmtNode()    {}
func (s *ContinueStmt) stmtNode() {}
func (s *BlockStmt) stmtNode()    {}
