// Package compiler implements the single-pass compiler that turns source
// text into bytecode chunks. Expressions are parsed with a Pratt precedence
// table; there is no intermediate AST, code is emitted as the parse
// progresses. The package has no dependency on the runtime value
// representation, constant pools hold plain Go values (see Constant).
package compiler

import (
	"fmt"
	gotoken "go/token"
	"math"
	"strconv"

	"github.com/mna/nppc2/lang/scanner"
	"github.com/mna/nppc2/lang/token"
)

const (
	maxLocals    = 256
	maxUpvalues  = 256
	maxConstants = 256
	maxArgs      = 255
)

// Compile compiles a source buffer to the Funcode of its top-level script.
// The filename is used in error positions only. On failure it returns a
// scanner.ErrorList with one entry per compile error; panic-mode recovery
// skips to the next statement boundary after each error so that several
// errors can be reported in one pass.
func Compile(filename string, src []byte) (*Funcode, error) {
	c := comp{filename: filename}
	c.scan.Init(src)
	c.beginFunc(kindScript, "")
	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endFunc()
	if len(c.errs) > 0 {
		c.errs.Sort()
		return nil, c.errs.Err()
	}
	return fn, nil
}

type funcKind int8

const (
	kindScript funcKind = iota
	kindFunction
	kindMethod
	kindInitializer
)

// local is a variable declared in the function currently being compiled. The
// depth is the scope depth of the block where it was declared, or -1 while
// its initializer is still being compiled.
type local struct {
	name       string
	depth      int
	isCaptured bool
}

// upvalue records one captured variable of the function being compiled:
// either a local slot of the immediately enclosing function, or one of the
// enclosing function's own upvalues.
type upvalue struct {
	isLocal bool
	index   byte
}

// fcomp is one frame of the compiler stack, one per function being compiled
// (top-level script, nested functions, methods).
type fcomp struct {
	enclosing *fcomp
	fn        *Funcode
	kind      funcKind

	locals     [maxLocals]local
	localCount int
	upvalues   [maxUpvalues]upvalue
	scopeDepth int
}

// classComp tracks the class currently being compiled, to validate the use of
// 'this' and 'super'.
type classComp struct {
	enclosing     *classComp
	hasSuperclass bool
}

type comp struct {
	filename string
	scan     scanner.Scanner

	cur, prev token.Token
	errs      scanner.ErrorList
	panicMode bool

	fn  *fcomp
	cls *classComp
}

// beginFunc pushes a new compiler frame for a function of the given kind.
// Slot 0 of every function is reserved for the callee itself; in methods and
// initializers it is named "this" so that the receiver resolves like a local.
func (c *comp) beginFunc(kind funcKind, name string) {
	f := &fcomp{
		enclosing: c.fn,
		fn:        &Funcode{Name: name},
		kind:      kind,
	}
	slot0 := &f.locals[0]
	f.localCount = 1
	slot0.depth = 0
	if kind == kindMethod || kind == kindInitializer {
		slot0.name = "this"
	}
	c.fn = f
}

// endFunc emits the implicit return, pops the current compiler frame and
// returns the completed Funcode.
func (c *comp) endFunc() *Funcode {
	c.emitReturn()
	fn := c.fn.fn
	c.fn = c.fn.enclosing
	return fn
}

// ---- token handling and error reporting

func (c *comp) advance() {
	c.prev = c.cur
	for {
		c.cur = c.scan.Scan()
		if c.cur.Kind != token.ILLEGAL {
			return
		}
		c.errorAt(c.cur, c.cur.Lit)
	}
}

func (c *comp) consume(k token.Kind, msg string) {
	if c.cur.Kind == k {
		c.advance()
		return
	}
	c.errorAt(c.cur, msg)
}

func (c *comp) check(k token.Kind) bool { return c.cur.Kind == k }

func (c *comp) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *comp) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	switch tok.Kind {
	case token.EOF:
		msg = "at end: " + msg
	case token.ILLEGAL:
		// the message already describes the lexical error
	default:
		msg = fmt.Sprintf("at %q: %s", tok.Lexeme, msg)
	}
	c.errs.Add(gotoken.Position{Filename: c.filename, Line: tok.Line}, msg)
}

func (c *comp) error(msg string)          { c.errorAt(c.prev, msg) }
func (c *comp) errorAtCurrent(msg string) { c.errorAt(c.cur, msg) }

// synchronize skips tokens to the next statement boundary after an error, so
// compilation can resume and report further errors.
func (c *comp) synchronize() {
	c.panicMode = false
	for c.cur.Kind != token.EOF {
		if c.prev.Kind == token.SEMI {
			return
		}
		switch c.cur.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR,
			token.IF, token.WHILE, token.RETURN:
			return
		}
		c.advance()
	}
}

// ---- emit contract

func (c *comp) chunk() *Chunk { return &c.fn.fn.Chunk }

func (c *comp) emitByte(b byte) { c.chunk().write(b, c.prev.Line) }

func (c *comp) emitOp(op Opcode, operands ...byte) {
	c.emitByte(byte(op))
	for _, b := range operands {
		c.emitByte(b)
	}
}

func (c *comp) makeConstant(v Constant) byte {
	ix, ok := c.chunk().addConstant(v)
	if !ok {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(ix)
}

// emitConstantOp emits op followed by the pool index of v.
func (c *comp) emitConstantOp(op Opcode, v Constant) {
	c.emitOp(op, c.makeConstant(v))
}

// emitJump emits a jump with a 16-bit placeholder offset and returns the
// offset of the placeholder for patchJump.
func (c *comp) emitJump(op Opcode) int {
	c.emitOp(op, 0xff, 0xff)
	return len(c.chunk().Code) - 2
}

// patchJump back-patches the 16-bit big-endian offset of a forward jump to
// land on the next instruction to be emitted.
func (c *comp) patchJump(at int) {
	jump := len(c.chunk().Code) - at - 2
	if jump > math.MaxInt16 {
		c.error("Too much code to jump over.")
	}
	c.chunk().Code[at] = byte(jump >> 8)
	c.chunk().Code[at+1] = byte(jump)
}

// emitLoop emits a backwards JUMP to loopStart. The offset is signed, the
// machine adds it to the instruction pointer.
func (c *comp) emitLoop(loopStart int) {
	offset := loopStart - (len(c.chunk().Code) + 3)
	if offset < math.MinInt16 {
		c.error("Loop body too large.")
	}
	c.emitOp(JUMP, byte(uint16(int16(offset))>>8), byte(uint16(int16(offset))))
}

// emitReturn emits the implicit return: initializers return the receiver in
// slot 0, everything else returns null.
func (c *comp) emitReturn() {
	if c.fn.kind == kindInitializer {
		c.emitOp(LOCAL, 0, 0)
	} else {
		c.emitConstantOp(BOOL, "NULL")
	}
	c.emitOp(RETURN)
}

// ---- variable resolution

func (c *comp) identifierConstant(name string) byte {
	return c.makeConstant(name)
}

func (c *comp) addLocal(name string) {
	if c.fn.localCount == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.fn.locals[c.fn.localCount] = local{name: name, depth: -1}
	c.fn.localCount++
}

// declareVariable records a local declaration in the current scope; globals
// are late-bound and need no declaration.
func (c *comp) declareVariable() {
	if c.fn.scopeDepth == 0 {
		return
	}
	name := c.prev.Lit
	for i := c.fn.localCount - 1; i >= 0; i-- {
		l := &c.fn.locals[i]
		if l.depth != -1 && l.depth < c.fn.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *comp) parseVariable(errMsg string) byte {
	c.consume(token.IDENT, errMsg)
	c.declareVariable()
	if c.fn.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.prev.Lit)
}

func (c *comp) markInitialized() {
	if c.fn.scopeDepth == 0 {
		return
	}
	c.fn.locals[c.fn.localCount-1].depth = c.fn.scopeDepth
}

func (c *comp) defineVariable(global byte) {
	if c.fn.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOp(DEFINE_GLOBAL, global)
}

func (c *comp) resolveLocal(f *fcomp, name string) int {
	for i := f.localCount - 1; i >= 0; i-- {
		l := &f.locals[i]
		if l.name == name {
			if l.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *comp) addUpvalue(f *fcomp, index byte, isLocal bool) int {
	n := f.fn.UpvalueCount
	for i := 0; i < n; i++ {
		uv := &f.upvalues[i]
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if n == maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	f.upvalues[n] = upvalue{isLocal: isLocal, index: index}
	f.fn.UpvalueCount++
	return n
}

// resolveUpvalue walks the enclosing compiler frames looking for name. The
// frame that owns it as a local records a direct capture and marks the local
// captured; intermediate frames chain through their own upvalues.
func (c *comp) resolveUpvalue(f *fcomp, name string) int {
	if f.enclosing == nil {
		return -1
	}
	if slot := c.resolveLocal(f.enclosing, name); slot != -1 {
		f.enclosing.locals[slot].isCaptured = true
		return c.addUpvalue(f, byte(slot), true)
	}
	if ix := c.resolveUpvalue(f.enclosing, name); ix != -1 {
		return c.addUpvalue(f, byte(ix), false)
	}
	return -1
}

// namedVariable emits the load of name, or its store when the expression is
// an assignment target.
func (c *comp) namedVariable(name string, canAssign bool) {
	var op Opcode
	var arg byte
	if slot := c.resolveLocal(c.fn, name); slot != -1 {
		op, arg = LOCAL, byte(slot)
	} else if ix := c.resolveUpvalue(c.fn, name); ix != -1 {
		op, arg = UPVALUE, byte(ix)
	} else {
		op, arg = GLOBAL, c.identifierConstant(name)
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOp(op, arg, 1)
	} else {
		c.emitOp(op, arg, 0)
	}
}

// ---- scopes

func (c *comp) beginScope() { c.fn.scopeDepth++ }

// endScope discards the locals of the scope being left, closing the upvalue
// of any local that was captured.
func (c *comp) endScope() {
	c.fn.scopeDepth--
	for c.fn.localCount > 0 && c.fn.locals[c.fn.localCount-1].depth > c.fn.scopeDepth {
		if c.fn.locals[c.fn.localCount-1].isCaptured {
			c.emitOp(CLOSE_UPVALUE)
		} else {
			c.emitOp(POP)
		}
		c.fn.localCount--
	}
}

// ---- expressions (Pratt parser)

type precedence int8

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseRule struct {
	prefix func(*comp, bool)
	infix  func(*comp, bool)
	prec   precedence
}

var rules map[token.Kind]parseRule

func init() {
	// initialized here to break the declaration cycle through the grouping
	// and call rules
	rules = map[token.Kind]parseRule{
		token.LPAREN: {prefix: (*comp).grouping, infix: (*comp).call, prec: precCall},
		token.DOT:    {infix: (*comp).dot, prec: precCall},
		token.MINUS:  {prefix: (*comp).unary, infix: (*comp).binary, prec: precTerm},
		token.PLUS:   {infix: (*comp).binary, prec: precTerm},
		token.SLASH:  {infix: (*comp).binary, prec: precFactor},
		token.STAR:   {infix: (*comp).binary, prec: precFactor},
		token.BANG:   {prefix: (*comp).unary},
		token.BANGEQ: {infix: (*comp).binary, prec: precEquality},
		token.EQEQ:   {infix: (*comp).binary, prec: precEquality},
		token.GT:     {infix: (*comp).binary, prec: precComparison},
		token.GE:     {infix: (*comp).binary, prec: precComparison},
		token.LT:     {infix: (*comp).binary, prec: precComparison},
		token.LE:     {infix: (*comp).binary, prec: precComparison},
		token.IDENT:  {prefix: (*comp).variable},
		token.STRING: {prefix: (*comp).str},
		token.NUMBER: {prefix: (*comp).number},
		token.AND:    {infix: (*comp).and, prec: precAnd},
		token.OR:     {infix: (*comp).or, prec: precOr},
		token.FALSE:  {prefix: (*comp).literal},
		token.NULL:   {prefix: (*comp).literal},
		token.TRUE:   {prefix: (*comp).literal},
		token.SUPER:  {prefix: (*comp).super},
		token.THIS:   {prefix: (*comp).this},
	}
}

func (c *comp) parsePrecedence(prec precedence) {
	c.advance()
	rule := rules[c.prev.Kind]
	if rule.prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for prec <= rules[c.cur.Kind].prec {
		c.advance()
		rules[c.prev.Kind].infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.error("Invalid assignment target.")
	}
}

func (c *comp) expression() { c.parsePrecedence(precAssignment) }

func (c *comp) grouping(bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *comp) number(bool) {
	f, err := strconv.ParseFloat(c.prev.Lit, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstantOp(CONSTANT, f)
}

func (c *comp) str(bool) {
	c.emitConstantOp(CONSTANT, c.prev.Lit)
}

// literal compiles true, false and null. All three are encoded as BOOL with a
// four-character selector constant.
func (c *comp) literal(bool) {
	switch c.prev.Kind {
	case token.TRUE:
		c.emitConstantOp(BOOL, "TRUE")
	case token.FALSE:
		c.emitConstantOp(BOOL, "FALS")
	case token.NULL:
		c.emitConstantOp(BOOL, "NULL")
	}
}

func (c *comp) variable(canAssign bool) {
	c.namedVariable(c.prev.Lit, canAssign)
}

func (c *comp) unary(bool) {
	op := c.prev.Kind
	c.parsePrecedence(precUnary)
	switch op {
	case token.MINUS:
		c.emitOp(UNARY)
	case token.BANG:
		c.emitConstantOp(COMPARE, "!")
	}
}

// binary compiles the infix arithmetic and comparison operators. The machine
// only knows "=", ">" and "<", so the negated forms compile to the base
// comparison followed by COMPARE "!".
func (c *comp) binary(bool) {
	op := c.prev.Kind
	c.parsePrecedence(rules[op].prec + 1)

	switch op {
	case token.PLUS:
		c.emitConstantOp(BINARY, "+")
	case token.MINUS:
		c.emitConstantOp(BINARY, "-")
	case token.STAR:
		c.emitConstantOp(BINARY, "*")
	case token.SLASH:
		c.emitConstantOp(BINARY, "/")
	case token.EQEQ:
		c.emitConstantOp(COMPARE, "=")
	case token.BANGEQ:
		c.emitConstantOp(COMPARE, "=")
		c.emitConstantOp(COMPARE, "!")
	case token.GT:
		c.emitConstantOp(COMPARE, ">")
	case token.GE:
		c.emitConstantOp(COMPARE, "<")
		c.emitConstantOp(COMPARE, "!")
	case token.LT:
		c.emitConstantOp(COMPARE, "<")
	case token.LE:
		c.emitConstantOp(COMPARE, ">")
		c.emitConstantOp(COMPARE, "!")
	}
}

func (c *comp) and(bool) {
	end := c.emitJump(JUMP_IF_FALSE)
	c.emitOp(POP)
	c.parsePrecedence(precAnd)
	c.patchJump(end)
}

func (c *comp) or(bool) {
	elseJump := c.emitJump(JUMP_IF_FALSE)
	endJump := c.emitJump(JUMP)
	c.patchJump(elseJump)
	c.emitOp(POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *comp) call(bool) {
	argc := c.argumentList()
	c.emitOp(CALL, argc)
}

func (c *comp) dot(canAssign bool) {
	c.consume(token.IDENT, "Expect property name after '.'.")
	name := c.identifierConstant(c.prev.Lit)

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOp(SET_PROPERTY, name)
	} else if c.match(token.LPAREN) {
		argc := c.argumentList()
		c.emitOp(INVOKE, name, argc)
	} else {
		c.emitOp(GET_PROPERTY, name)
	}
}

func (c *comp) this(bool) {
	if c.cls == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *comp) super(bool) {
	if c.cls == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.cls.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENT, "Expect superclass method name.")
	name := c.identifierConstant(c.prev.Lit)

	c.namedVariable("this", false)
	if c.match(token.LPAREN) {
		argc := c.argumentList()
		c.namedVariable("super", false)
		c.emitOp(SUPER_INVOKE, name, argc)
	} else {
		c.namedVariable("super", false)
		c.emitOp(GET_SUPER, name)
	}
}

func (c *comp) argumentList() byte {
	var argc int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argc == maxArgs {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(argc)
}

// ---- statements

func (c *comp) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *comp) statement() {
	switch {
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *comp) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *comp) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitConstantOp(BOOL, "NULL")
	}
	c.consume(token.SEMI, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *comp) expressionStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after expression.")
	c.emitOp(POP)
}

func (c *comp) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(JUMP_IF_FALSE)
	c.emitOp(POP)
	c.statement()
	elseJump := c.emitJump(JUMP)
	c.patchJump(thenJump)
	c.emitOp(POP)
	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *comp) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(JUMP_IF_FALSE)
	c.emitOp(POP)
	c.statement()
	c.emitLoop(loopStart)
	c.patchJump(exitJump)
	c.emitOp(POP)
}

func (c *comp) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")
	switch {
	case c.match(token.SEMI):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.match(token.SEMI) {
		c.expression()
		c.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = c.emitJump(JUMP_IF_FALSE)
		c.emitOp(POP)
	}

	if !c.match(token.RPAREN) {
		bodyJump := c.emitJump(JUMP)
		incStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(POP)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")
		c.emitLoop(loopStart)
		loopStart = incStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)
	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(POP)
	}
	c.endScope()
}

func (c *comp) returnStatement() {
	if c.fn.kind == kindScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.SEMI) {
		c.emitReturn()
		return
	}
	if c.fn.kind == kindInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.SEMI, "Expect ';' after return value.")
	c.emitOp(RETURN)
}

func (c *comp) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(kindFunction)
	c.defineVariable(global)
}

// function compiles a function body (parameters and block) in a new compiler
// frame and emits the CLOSURE instruction with its capture list in the
// enclosing function.
func (c *comp) function(kind funcKind) {
	c.beginFunc(kind, c.prev.Lit)
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			c.fn.fn.Arity++
			if c.fn.fn.Arity > maxArgs {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			cix := c.parseVariable("Expect parameter name.")
			c.defineVariable(cix)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	upvalues := c.fn.upvalues
	fn := c.endFunc()
	c.emitConstantOp(CLOSURE, fn)
	for i := 0; i < fn.UpvalueCount; i++ {
		var isLocal byte
		if upvalues[i].isLocal {
			isLocal = 1
		}
		c.emitByte(isLocal)
		c.emitByte(upvalues[i].index)
	}
}

func (c *comp) method() {
	c.consume(token.IDENT, "Expect method name.")
	name := c.identifierConstant(c.prev.Lit)
	kind := kindMethod
	if c.prev.Lit == "init" {
		kind = kindInitializer
	}
	c.function(kind)
	c.emitOp(METHOD, name)
}

func (c *comp) classDeclaration() {
	c.consume(token.IDENT, "Expect class name.")
	className := c.prev.Lit
	name := c.identifierConstant(className)
	c.declareVariable()

	c.emitOp(CLASS, name)
	c.defineVariable(name)

	c.cls = &classComp{enclosing: c.cls}

	if c.match(token.LT) {
		c.consume(token.IDENT, "Expect superclass name.")
		c.variable(false)
		if className == c.prev.Lit {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0)

		c.namedVariable(className, false)
		c.emitOp(INHERIT)
		c.cls.hasSuperclass = true
	}

	c.namedVariable(className, false)
	c.consume(token.LBRACE, "Expect '{' before class body.")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "Expect '}' after class body.")
	c.emitOp(POP)

	if c.cls.hasSuperclass {
		c.endScope()
	}
	c.cls = c.cls.enclosing
}
