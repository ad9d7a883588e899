// interpreter.go: the public entry points of the Forge runtime.
//
// Evaluation targets one of two well-known environments:
//   - Core holds built-ins and registered natives.
//   - Global is the persistent program/REPL state, a child of Core.
//
// EvalSource runs in a fresh throwaway child of Global, so declarations made
// during the run do not leak; EvalPersistentSource runs in Global itself,
// which is what the REPL wants. Both return (Value, error): the Value is the
// result of the last expression statement of the unit, and the error is a
// *ParseFailure or *RuntimeError to be rendered with Render.
package forge

import (
	"bufio"
	"io"
	"os"
)

type Interpreter struct {
	Core   *Env
	Global *Env

	// Stdout receives print output and input prompts.
	Stdout io.Writer

	// ReadLine is the host's blocking read source for the input operator.
	// The default reads a line from os.Stdin.
	ReadLine func() (string, error)
}

// NewInterpreter creates an interpreter with the core natives installed and
// an empty global scope.
func NewInterpreter() *Interpreter {
	ip := &Interpreter{
		Core:   NewEnv(nil),
		Stdout: os.Stdout,
	}
	ip.Global = NewEnv(ip.Core)
	stdin := bufio.NewReader(os.Stdin)
	ip.ReadLine = func() (string, error) { return stdin.ReadString('\n') }
	installCoreNatives(ip)
	return ip
}

// EvalSource parses and evaluates src in a fresh child of Global.
func (ip *Interpreter) EvalSource(src string) (Value, error) {
	return ip.evalSourceIn(src, NewEnv(ip.Global))
}

// EvalPersistentSource parses and evaluates src in Global itself, so
// declarations and assignments persist across calls.
func (ip *Interpreter) EvalPersistentSource(src string) (Value, error) {
	return ip.evalSourceIn(src, ip.Global)
}

func (ip *Interpreter) evalSourceIn(src string, env *Env) (Value, error) {
	stmts, errs := Parse(src)
	if len(errs) > 0 {
		return Null, &ParseFailure{Errs: errs}
	}
	return ip.EvalProgram(stmts, env)
}

// EvalProgram evaluates an already-parsed unit in the given environment.
// A RuntimeError aborts the unit and is returned; the environment keeps
// whatever state was reached before the failure.
func (ip *Interpreter) EvalProgram(stmts []Stmt, env *Env) (v Value, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch sig := r.(type) {
		case *RuntimeError:
			v, err = Null, sig
		case returnSig:
			v, err = Null, &RuntimeError{Kind: ErrType, Span: sig.sp, Msg: "'return' outside of a function"}
		case breakSig:
			v, err = Null, &RuntimeError{Kind: ErrType, Span: sig.sp, Msg: "'break' outside of a loop"}
		case continueSig:
			v, err = Null, &RuntimeError{Kind: ErrType, Span: sig.sp, Msg: "'continue' outside of a loop"}
		default:
			panic(r)
		}
	}()
	for _, s := range stmts {
		v = ip.execStmt(s, env)
	}
	return v, nil
}
