// Package ops is the calculator's operation registry: a fixed table mapping
// menu selectors to operand kinds, domain checks and compute functions.
package ops

import (
	"errors"
	"fmt"
	"math"
)

// Selector identifies a menu entry.
type Selector int

const (
	Add Selector = iota + 1
	Subtract
	Multiply
	Divide
	Power
	SquareRoot
	Modulo
	Exit
)

// OperandKind determines how many operands of which numeric kind an operation reads.
type OperandKind int

const (
	NoOperands OperandKind = iota
	RealPair
	RealSingle
	IntegerPair
)

func (k OperandKind) String() string {
	switch k {
	case NoOperands:
		return "none"
	case RealPair:
		return "real pair"
	case RealSingle:
		return "real"
	case IntegerPair:
		return "integer pair"
	default:
		return fmt.Sprintf("OperandKind(%d)", int(k))
	}
}

// Operands holds the values read for one operation. Real operations use A
// and B (B is ignored by single-operand operations); integer operations use
// IA and IB.
type Operands struct {
	A, B   float64
	IA, IB int64
}

// Result is the outcome of Compute. Integer is set for integer operations,
// in which case Int holds the value; otherwise Real does.
type Result struct {
	Integer bool
	Real    float64
	Int     int64
}

var (
	ErrUnknownSelector  = errors.New("unknown selector")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrNegativeRadicand = errors.New("square root of negative number")
	ErrModuloByZero     = errors.New("modulo by zero")
)

// DomainError reports an operand that violates an operation's precondition.
type DomainError struct {
	Op  Selector
	Err error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Operation is an immutable descriptor for one selector.
type Operation struct {
	Selector Selector
	Name     string
	Symbol   string
	Kind     OperandKind

	check   func(Operands) error // nil --> unrestricted
	real    func(Operands) float64
	integer func(Operands) int64
}

// AcceptsAns reports whether the previous result may stand in for the first operand.
func (op Operation) AcceptsAns() bool {
	return op.Kind == RealPair
}

// Label is the menu text for the operation, e.g. "Add (+)".
func (op Operation) Label() string {
	if op.Symbol == "" {
		return op.Name
	}
	return fmt.Sprintf("%s (%s)", op.Name, op.Symbol)
}

var table = [...]Operation{
	{Selector: Add, Name: "Add", Symbol: "+", Kind: RealPair,
		real: func(o Operands) float64 { return o.A + o.B }},
	{Selector: Subtract, Name: "Subtract", Symbol: "-", Kind: RealPair,
		real: func(o Operands) float64 { return o.A - o.B }},
	{Selector: Multiply, Name: "Multiply", Symbol: "*", Kind: RealPair,
		real: func(o Operands) float64 { return o.A * o.B }},
	{Selector: Divide, Name: "Divide", Symbol: "/", Kind: RealPair,
		check: func(o Operands) error {
			if o.B == 0 {
				return ErrDivisionByZero
			}
			return nil
		},
		real: func(o Operands) float64 { return o.A / o.B }},
	{Selector: Power, Name: "Power", Symbol: "^", Kind: RealPair,
		real: func(o Operands) float64 { return math.Pow(o.A, o.B) }},
	{Selector: SquareRoot, Name: "Square Root", Symbol: "√", Kind: RealSingle,
		check: func(o Operands) error {
			if o.A < 0 {
				return ErrNegativeRadicand
			}
			return nil
		},
		real: func(o Operands) float64 { return math.Sqrt(o.A) }},
	{Selector: Modulo, Name: "Modulo", Symbol: "%", Kind: IntegerPair,
		check: func(o Operands) error {
			if o.IB == 0 {
				return ErrModuloByZero
			}
			return nil
		},
		integer: func(o Operands) int64 { return o.IA % o.IB }},
	{Selector: Exit, Name: "Exit", Kind: NoOperands},
}

func (s Selector) String() string {
	if op, ok := Lookup(s); ok {
		return op.Name
	}
	return fmt.Sprintf("Selector(%d)", int(s))
}

// Lookup returns the operation for a selector.
func Lookup(s Selector) (Operation, bool) {
	if s < Add || s > Exit {
		return Operation{}, false
	}
	return table[s-Add], true
}

// Resolve maps a raw menu number to its operation.
func Resolve(n int64) (Operation, error) {
	if n < int64(Add) || n > int64(Exit) {
		return Operation{}, fmt.Errorf("%w: %d", ErrUnknownSelector, n)
	}
	op, _ := Lookup(Selector(n))
	return op, nil
}

// Operations returns every operation in menu order.
func Operations() []Operation {
	return append([]Operation(nil), table[:]...)
}

// ValidateDomain checks the operation's precondition against the operands.
// It returns a *DomainError on violation.
func ValidateDomain(op Operation, in Operands) error {
	if op.check == nil {
		return nil
	}
	if err := op.check(in); err != nil {
		return &DomainError{Op: op.Selector, Err: err}
	}
	return nil
}

// Compute applies the operation. The operands must already have passed
// ValidateDomain. Exit computes nothing and yields a zero Result.
func Compute(op Operation, in Operands) Result {
	switch {
	case op.integer != nil:
		return Result{Integer: true, Int: op.integer(in)}
	case op.real != nil:
		return Result{Real: op.real(in)}
	default:
		return Result{}
	}
}
