// Package benchmarks provides end-to-end calculator session benchmarks.
package benchmarks

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/comalice/calcx/internal/ops"
	"github.com/comalice/calcx/internal/repl"
)

func BenchmarkSession(b *testing.B) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	input := GenSessionInput(100)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		loop, err := repl.New(strings.NewReader(input), io.Discard, repl.WithLogger(logger))
		if err != nil {
			b.Fatal(err)
		}
		if err := loop.Run(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompute(b *testing.B) {
	for _, op := range ops.Operations() {
		if op.Selector == ops.Exit {
			continue
		}
		in := ops.Operands{A: 12.5, B: 3, IA: 17, IB: 5}
		b.Run(op.Name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if err := ops.ValidateDomain(op, in); err != nil {
					b.Fatal(err)
				}
				_ = ops.Compute(op, in)
			}
		})
	}
}
