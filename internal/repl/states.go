package repl

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/comalice/calcx"
	"github.com/comalice/calcx/internal/chart"
	"github.com/comalice/calcx/internal/operand"
	"github.com/comalice/calcx/internal/ops"
)

func (l *Loop) bindings() chart.Bindings {
	return chart.Bindings{
		Activities: map[string]calcx.Activity{
			"prompting":       l.prompt,
			"readingSelector": l.readSelector,
			"ansOffer":        l.offerAns,
			"readingOperands": l.readOperands,
			"validating":      l.validate,
			"dispatching":     l.dispatch,
			"displaying":      l.display,
			"askContinue":     l.askContinue,
		},
		Entry: map[string]calcx.Action{
			"resetPending": func(ctx context.Context, evt *calcx.Event, from, to calcx.StateID) error {
				l.pending = pending{}
				return nil
			},
		},
		Guards: map[string]calcx.Guard{
			"ansEligible": func(ctx context.Context, evt *calcx.Event, from, to calcx.StateID) (bool, error) {
				prev, _ := l.session.Current()
				return l.pending.op.AcceptsAns() && prev != 0, nil
			},
			"continuing": func(ctx context.Context, evt *calcx.Event, from, to calcx.StateID) (bool, error) {
				_, cont := l.session.Current()
				return cont, nil
			},
		},
	}
}

func (l *Loop) prompt(ctx context.Context) (calcx.Event, error) {
	prev, _ := l.session.Current()
	l.out.println(separator)
	l.out.printf(msgPrevious, prev)
	for _, op := range ops.Operations() {
		l.out.printf("%d. %s\n", int(op.Selector), op.Label())
	}
	l.out.print(msgSelect)
	return l.emit("shown")
}

func (l *Loop) readSelector(ctx context.Context) (calcx.Event, error) {
	n, err := l.in.ReadInteger()
	if err != nil {
		return l.inputFailed("readSelector", err, msgInvalidOption)
	}
	op, err := ops.Resolve(n)
	if err != nil {
		if rerr := l.in.Resync(); rerr != nil {
			return calcx.Event{}, rerr
		}
		return l.inputFailed("readSelector", err, msgInvalidOption)
	}

	l.pending.op = op
	if op.Selector == ops.Exit {
		l.session.RequestExit()
		l.out.println(msgGoodbye)
		return l.emit("exit")
	}
	return l.emit("selected")
}

func (l *Loop) offerAns(ctx context.Context) (calcx.Event, error) {
	prev, _ := l.session.Current()
	l.out.printf(msgAnsOffer, prev)
	c, err := l.in.ReadChoice()
	if err != nil {
		return l.inputFailed("offerAns", err, "")
	}
	if c == 'y' || c == 'Y' {
		l.pending.useAns = true
		l.pending.operands.A = prev
	}
	return l.emit("answered")
}

func (l *Loop) readOperands(ctx context.Context) (calcx.Event, error) {
	in := &l.pending.operands
	var err error
	switch l.pending.op.Kind {
	case ops.RealPair:
		if !l.pending.useAns {
			in.A, err = l.askReal(msgFirstNumber)
		}
		if err == nil {
			in.B, err = l.askReal(msgSecondNumber)
		}
	case ops.RealSingle:
		in.A, err = l.askReal(msgNumber)
	case ops.IntegerPair:
		in.IA, err = l.askInteger(msgFirstInt)
		if err == nil {
			in.IB, err = l.askInteger(msgSecondInt)
		}
	}
	if err != nil {
		return l.inputFailed("readOperands", err, msgInvalidNumber)
	}
	return l.emit("read")
}

func (l *Loop) askReal(prompt string) (float64, error) {
	l.out.print(prompt)
	return l.in.ReadReal()
}

func (l *Loop) askInteger(prompt string) (int64, error) {
	l.out.print(prompt)
	return l.in.ReadInteger()
}

func (l *Loop) validate(ctx context.Context) (calcx.Event, error) {
	if err := ops.ValidateDomain(l.pending.op, l.pending.operands); err != nil {
		l.out.println(domainMessage(err))
		l.log.WithFields(logrus.Fields{
			"function":  "validate",
			"operation": l.pending.op.Name,
			"error":     err.Error(),
		}).Info("Operands rejected by domain check")
		return l.emit("invalid")
	}
	return l.emit("valid")
}

func (l *Loop) dispatch(ctx context.Context) (calcx.Event, error) {
	l.pending.result = ops.Compute(l.pending.op, l.pending.operands)
	return l.emit("computed")
}

func (l *Loop) display(ctx context.Context) (calcx.Event, error) {
	res := l.pending.result
	l.out.println(separator)
	if res.Integer {
		l.out.printf(msgIntResult, res.Int)
	} else {
		l.out.printf(msgRealResult, res.Real)
		l.session.RecordSuccess(res.Real)
	}
	l.out.println(separator)

	l.log.WithFields(logrus.Fields{
		"function":  "display",
		"operation": l.pending.op.Name,
		"use_ans":   l.pending.useAns,
	}).Debug("Computation completed")
	return l.emit("shown")
}

func (l *Loop) askContinue(ctx context.Context) (calcx.Event, error) {
	l.out.print(msgContinue)
	c, err := l.in.ReadChoice()
	if err != nil {
		return l.inputFailed("askContinue", err, "")
	}
	// Anything but an explicit no continues.
	l.session.SetContinue(c != 'n' && c != 'N')
	return l.emit("answered")
}

// inputFailed maps a read failure to its chart event: end of input
// terminates, malformed input is reported and rejected, anything else is an
// I/O error that stops the loop.
func (l *Loop) inputFailed(function string, err error, msg string) (calcx.Event, error) {
	entry := l.log.WithFields(logrus.Fields{
		"function": function,
		"error":    err.Error(),
	})
	switch {
	case errors.Is(err, io.EOF):
		entry.Info("Input closed")
		return l.emit("endOfInput")
	case errors.Is(err, operand.ErrMalformedNumber), errors.Is(err, ops.ErrUnknownSelector):
		l.out.println(msg)
		entry.Info("Input rejected")
		return l.emit("rejected")
	default:
		return calcx.Event{}, err
	}
}
