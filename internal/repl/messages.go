package repl

import (
	"errors"

	"github.com/comalice/calcx/internal/ops"
)

// User-visible protocol text.
const (
	separator = "-----------------------------"

	msgPrevious     = "Previous result: %.2f\n"
	msgSelect       = "Select option: "
	msgAnsOffer     = "Use previous result (Ans=%.2f) as first number? (y/n): "
	msgFirstNumber  = "Enter first number: "
	msgSecondNumber = "Enter second number: "
	msgNumber       = "Enter number: "
	msgFirstInt     = "Enter first integer: "
	msgSecondInt    = "Enter second integer: "
	msgRealResult   = "Result: %.2f\n"
	msgIntResult    = "Result: %d\n"
	msgContinue     = "Do you want to perform another operation? (y/n): "
	msgGoodbye      = "Exiting... Goodbye!"

	msgInvalidOption = "Invalid option. Try again."
	msgInvalidNumber = "Invalid number."

	msgDivisionByZero   = "Cannot divide by zero."
	msgNegativeRadicand = "Cannot take square root of negative number."
	msgModuloByZero     = "Cannot take modulo by zero."
)

// domainMessage maps a domain error to its single-line message.
func domainMessage(err error) string {
	switch {
	case errors.Is(err, ops.ErrDivisionByZero):
		return msgDivisionByZero
	case errors.Is(err, ops.ErrNegativeRadicand):
		return msgNegativeRadicand
	case errors.Is(err, ops.ErrModuloByZero):
		return msgModuloByZero
	default:
		return err.Error()
	}
}
