// Package repl implements the interactive calculator loop.
//
// The loop is a chart (chart.yaml) whose states prompt, read, validate,
// compute and display. Each iteration starts in prompting with fresh pending
// input; only a completed real-valued computation touches the session's
// previous result, and only the Exit selector, a "n" answer or the end of
// input leads to the final state.
package repl

import (
	"context"
	_ "embed"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/comalice/calcx"
	"github.com/comalice/calcx/internal/chart"
	"github.com/comalice/calcx/internal/operand"
	"github.com/comalice/calcx/internal/ops"
)

//go:embed chart.yaml
var chartYAML []byte

// LoadChart parses the loop's chart definition.
func LoadChart() (chart.Config, error) {
	cfg, err := chart.Parse(chartYAML)
	if err != nil {
		return chart.Config{}, fmt.Errorf("calculator chart: %w", err)
	}
	return cfg, nil
}

// pending is the input of one iteration. It is discarded on every entry to prompting.
type pending struct {
	op       ops.Operation
	useAns   bool
	operands ops.Operands
	result   ops.Result
}

// Loop is a calculator session bound to one input and one output stream.
type Loop struct {
	in      *operand.Reader
	out     *printer
	session *calcx.Session
	logger  *logrus.Logger
	log     *logrus.Entry
	chart   *chart.Chart
	pending pending
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for diagnostics. Defaults to the logrus standard logger.
func WithLogger(l *logrus.Logger) Option {
	return func(loop *Loop) {
		loop.logger = l
	}
}

// WithSession runs the loop against an existing session.
func WithSession(s *calcx.Session) Option {
	return func(loop *Loop) {
		loop.session = s
	}
}

// New creates a loop reading from in and writing the protocol to out.
func New(in io.Reader, out io.Writer, opts ...Option) (*Loop, error) {
	l := &Loop{
		in:  operand.NewReader(in),
		out: &printer{w: out},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.session == nil {
		l.session = calcx.NewSession()
	}
	if l.logger == nil {
		l.logger = logrus.StandardLogger()
	}
	l.log = l.logger.WithFields(logrus.Fields{
		"session": l.session.ID(),
	})

	cfg, err := LoadChart()
	if err != nil {
		return nil, err
	}
	c, err := chart.Bind(cfg, l.bindings(), calcx.WithTransitionHook(l.traceTransition))
	if err != nil {
		return nil, fmt.Errorf("bind calculator chart: %w", err)
	}
	l.chart = c
	return l, nil
}

// Run drives the loop until the user exits or the input ends.
func (l *Loop) Run(ctx context.Context) error {
	l.log.WithFields(logrus.Fields{
		"function": "Run",
	}).Info("Calculator session started")

	if err := l.chart.Machine().Run(ctx); err != nil {
		l.log.WithFields(logrus.Fields{
			"function": "Run",
			"state":    l.State(),
			"error":    err.Error(),
		}).Error("Calculator loop stopped")
		return err
	}

	prev, _ := l.session.Current()
	l.log.WithFields(logrus.Fields{
		"function":        "Run",
		"previous_result": prev,
	}).Info("Calculator session ended")
	return nil
}

// Session returns the loop's session.
func (l *Loop) Session() *calcx.Session {
	return l.session
}

// State returns the name of the active chart state, or "" before Run.
func (l *Loop) State() string {
	if s := l.chart.Machine().Current(); s != nil {
		return s.Name
	}
	return ""
}

func (l *Loop) traceTransition(from, to *calcx.State, evt calcx.Event) {
	l.log.WithFields(logrus.Fields{
		"function": "traceTransition",
		"from":     from.Name,
		"to":       to.Name,
		"event":    l.chart.EventName(evt.ID),
	}).Debug("State transition")
}

// emit returns the named chart event, or the first output error if writing
// the protocol failed.
func (l *Loop) emit(name string) (calcx.Event, error) {
	if l.out.err != nil {
		return calcx.Event{}, fmt.Errorf("write output: %w", l.out.err)
	}
	return l.chart.Event(name), nil
}

// printer writes protocol text and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(s string) {
	p.printf("%s\n", s)
}

func (p *printer) print(s string) {
	p.printf("%s", s)
}
