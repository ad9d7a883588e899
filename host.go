// host.go: the boundary the evaluator calls into for host-supplied behavior.
//
// The embedding application provides Custom value payloads with a capability
// table, and native callbacks registered as function values that go through
// the same call protocol (including arity checking) as user-defined
// functions. Host callbacks run synchronously and may re-enter the
// evaluator; the core provides no reentrancy guard.
package forge

// NativeImpl is a host callback. A returned *RuntimeError is propagated
// as-is; any other non-nil error becomes a HostError at the call site.
type NativeImpl func(ip *Interpreter, args []Value) (Value, error)

// CustomOps is the operation table for a kind of Custom value. Eq and
// Display are required for a Custom value to participate in equality and
// printing; Iter, Coerce, and Call are optional capabilities.
type CustomOps struct {
	// Name appears in diagnostics as the value's type name.
	Name string

	// Eq compares two payloads of this kind.
	Eq func(a, b interface{}) bool

	// Display renders the payload for print/str.
	Display func(p interface{}) string

	// Iter, when set, makes the value usable in a for loop. The returned
	// function yields successive elements and reports false when exhausted.
	Iter func(p interface{}) func() (Value, bool)

	// Coerce, when set, converts the payload so it can participate in an
	// operator the core evaluates. Returning false declines.
	Coerce func(p interface{}) (Value, bool)

	// Call, when set, makes the value callable with exactly Arity arguments.
	Call  func(ip *Interpreter, p interface{}, args []Value) (Value, error)
	Arity int
}

// RegisterNative installs a host callback into the Core environment as a
// function value taking exactly arity arguments (zero is allowed).
func (ip *Interpreter) RegisterNative(name string, arity int, impl NativeImpl) {
	ip.Core.Define(name, FnVal(&Fn{Native: name, Arity: arity, Impl: impl}))
}
