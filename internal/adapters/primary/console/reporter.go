package console

import (
	"mlflow-artifact-uploader/internal/core/domain"
	ports "mlflow-artifact-uploader/internal/core/ports/output"
)

var _ ports.Reporter = (*Printer)(nil)

func (p *Printer) RunStarted(run *domain.Run) {
	p.printf("\n[%s]\n", run.Name)
}

func (p *Printer) MetadataMissing(run *domain.Run, path string) {
	p.printf("  ⚠ Metadata not found: %s\n", path)
}

func (p *Printer) ArtifactLogged(run *domain.Run, kind domain.ArtifactKind) {
	if kind == domain.ArtifactModel {
		p.printf("  ✓ Model (pickle) logged\n")
		return
	}
	p.printf("  ✓ %s logged\n", kind.FileName)
}

func (p *Printer) RunFailed(run *domain.Run, err error) {
	p.printf("  ✗ %s\n", describeError(err))
}
