// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"context"
	"fmt"
	"strings"

	"github.com/comalice/calcx"
	"github.com/comalice/calcx/internal/chart"
)

// GenFlatConfig creates a flat chart with n states cycling via "tick" events.
func GenFlatConfig(n int) chart.Config {
	if n < 1 {
		n = 1
	}
	config := chart.Config{
		ID:      fmt.Sprintf("flat_%d", n),
		Initial: "s0",
		States:  make([]chart.StateConfig, 0, n),
	}
	for i := 0; i < n; i++ {
		target := fmt.Sprintf("s%d", (i+1)%n)
		config.States = append(config.States, chart.StateConfig{
			ID: fmt.Sprintf("s%d", i),
			On: map[string][]chart.TransitionConfig{
				"tick": {{Target: target}},
			},
		})
	}
	return config
}

// BindIdle binds cfg with activities that are never run; machines built this
// way are driven with Send.
func BindIdle(cfg chart.Config) (*chart.Chart, error) {
	idle := func(ctx context.Context) (calcx.Event, error) {
		return calcx.Event{}, nil
	}
	activities := make(map[string]calcx.Activity, len(cfg.States))
	for _, s := range cfg.States {
		activities[s.ID] = idle
	}
	return chart.Bind(cfg, chart.Bindings{Activities: activities})
}

// GenSessionInput builds calculator input that runs iterations computations,
// chaining Ans where offered, and then exits.
func GenSessionInput(iterations int) string {
	var sb strings.Builder
	sb.WriteString("1\n1\n1\ny\n")
	for i := 1; i < iterations; i++ {
		switch i % 3 {
		case 0:
			sb.WriteString("1\ny\n2\ny\n")
		case 1:
			sb.WriteString("3\ny\n1.5\ny\n")
		default:
			sb.WriteString("7\n17\n5\ny\n")
		}
	}
	sb.WriteString("8\n")
	return sb.String()
}
