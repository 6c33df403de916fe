package console

import (
	"fmt"
	"io"
	"strings"

	"mlflow-artifact-uploader/internal/config"
	"mlflow-artifact-uploader/internal/core/domain"
	"mlflow-artifact-uploader/internal/core/services"
)

var rule = strings.Repeat("=", 80)

// Printer writes human-readable progress. It also satisfies ports.Reporter.
type Printer struct {
	out     io.Writer
	started bool
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Banner prints a section title between two rules, separated from any
// previous output by a blank line.
func (p *Printer) Banner(title string) {
	if p.started {
		p.printf("\n")
	}
	p.started = true
	p.printf("%s\n%s\n%s\n", rule, strings.ToUpper(title), rule)
}

func (p *Printer) Config(cfg *config.Config) {
	p.printf("\n[CONFIGURATION]\n")
	p.printf("  - Tracking URI: %s\n", cfg.Tracking.URI)
	p.printf("  - Host Header: %s\n", cfg.Tracking.HostHeader)
	p.printf("  - Experiment: %s\n", cfg.Attach.ExperimentName)
	p.printf("  - Models dir: %s\n", cfg.Attach.ModelsDir)
	if cfg.Tracking.InsecureTLS {
		p.printf("  - TLS verification: disabled\n")
	}
}

func (p *Printer) Runs(exp *domain.Experiment, runs []*domain.Run) {
	p.printf("\n✓ Experiment found: %s (ID: %s)\n", exp.Name, exp.ID)
	p.printf("✓ Runs found: %d\n", len(runs))
	for i, r := range runs {
		p.printf("  %d. %s (ID: %s)\n", i+1, r.Name, r.ID)
	}
}

// Fatal reports an error that stops the whole invocation.
func (p *Printer) Fatal(err error) {
	p.printf("\n✗ %s\n", describeError(err))
}

func (p *Printer) Summary(s *services.Summary) {
	p.printf("\nAttached: %d, skipped: %d, failed: %d, artifacts uploaded: %d\n",
		s.Attached, s.Skipped, s.Failed, s.Artifacts)
}

func (p *Printer) Verification(results []services.RunArtifacts) {
	for _, r := range results {
		p.printf("\n[%s]\n", r.Run.Name)
		if len(r.Files) == 0 {
			p.printf("  - no artifacts\n")
			continue
		}
		p.printf("  - artifacts: %d\n", len(r.Files))
		for _, f := range r.Files {
			p.printf("    - %s\n", f.Path)
		}
	}
}

func (p *Printer) VerificationFailed(err error) {
	p.printf("\n✗ Verification failed: %v\n", err)
}
