package exec

import (
	"runtime"
	"strings"
)

// A Trap represents a WASM trap.
type Trap string

func (t Trap) Error() string {
	return string(t)
}

// TrapIntegerOverflow indicates an integer overflow.
var TrapIntegerOverflow = Trap("integer overflow")

// TrapIntegerDivideByZero indicates an attempt to divide by zero.
var TrapIntegerDivideByZero = Trap("integer divide by zero")

// TrapUnreachable indicates execution of unreachable code.
var TrapUnreachable = Trap("unreachable")

// TranslateRuntimeError is a utility function that translates between Go runtime errors and
// WASM traps.
func TranslateRuntimeError(err runtime.Error) (Trap, bool) {
	switch {
	case err == nil:
		return "", false
	case strings.HasPrefix(err.Error(), "runtime error: integer divide by zero"):
		return TrapIntegerDivideByZero, true
	default:
		return "", false
	}
}

// RecoverTrap converts the result of recover() into a trap. Values that are neither traps
// nor runtime errors that correspond to traps are re-panicked. It should be called like so:
//
//	defer func() { err = exec.RecoverTrap(recover(), err) }()
func RecoverTrap(x interface{}, err error) error {
	switch x := x.(type) {
	case nil:
		return err
	case Trap:
		return x
	case runtime.Error:
		if trap, ok := TranslateRuntimeError(x); ok {
			return trap
		}
	}
	panic(x)
}
