package rengine

import "fmt"

// ANSI colors & styles
const (
	colorReset  = "\033[0m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	bold        = "\033[1m"
)

// Stats returns the engine's current discrimination-network node counts.
func (e *Engine) Stats() (alphaNodes, betaJoins, betaNegations, betaExists, betaRoots, terminals, alphaFacts int) {
	s := e.net.Stats()
	return s.AlphaNodes, s.BetaJoins, s.BetaNegations, s.BetaExists, s.BetaRoots, s.Terminals, s.AlphaFacts
}

// DisplayStats prints the engine's network shape and working memory size in
// a formatted, human-readable way. A helper for examples, demos and
// debugging, not used by the engine itself. Gated on config.EnableStats
// (§6 "enable_stats"); Stats() itself remains callable either way.
func (e *Engine) DisplayStats() {
	if !e.config.EnableStats {
		fmt.Println("(stats disabled: set EngineConfig.EnableStats to see network shape)")
		return
	}
	title := func(text string) {
		fmt.Printf("\n%s%s=== %s ===%s\n\n", bold, colorBlue, text, colorReset)
	}
	section := func(text string) {
		fmt.Printf("%s%s%s\n", bold, text, colorReset)
	}
	kv := func(label string, value any) {
		fmt.Printf("  %s%-18s%s: %v\n", colorCyan, label, colorReset, value)
	}

	title("Network Shape")
	s := e.net.Stats()
	section("Nodes:")
	kv("Alpha nodes", s.AlphaNodes)
	kv("Beta roots", s.BetaRoots)
	kv("Beta joins", s.BetaJoins)
	kv("Beta negations", s.BetaNegations)
	kv("Beta exists", s.BetaExists)
	kv("Terminals", s.Terminals)

	section("\nWorking memory:")
	kv("Alpha facts", s.AlphaFacts)
	kv("Live facts", e.WorkingMemorySize())
	kv("Loaded rules", len(e.rules))

	fmt.Println()
}

// DisplayFireReport prints a FireReport's summary in the same style.
func DisplayFireReport(report *FireReport) {
	title := func(text string) {
		fmt.Printf("\n%s%s=== %s ===%s\n\n", bold, colorBlue, text, colorReset)
	}
	kv := func(label string, value any) {
		fmt.Printf("  %s%-18s%s: %v\n", colorCyan, label, colorReset, value)
	}

	title("Fire Report")
	kv("Cycles", report.Cycles)
	kv("Rules fired", fmt.Sprintf("%s%d%s", colorGreen, report.RulesFired, colorReset))
	kv("Activations withdrawn", fmt.Sprintf("%s%d%s", colorYellow, report.ActivationsWithdrawn, colorReset))
	if len(report.Warnings) > 0 {
		kv("Warnings", fmt.Sprintf("%s%d%s", colorRed, len(report.Warnings), colorReset))
		for _, w := range report.Warnings {
			fmt.Printf("    - %s\n", w)
		}
	}
	fmt.Println()
}
