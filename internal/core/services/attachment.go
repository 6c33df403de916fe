package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"mlflow-artifact-uploader/internal/core/domain"
	ports "mlflow-artifact-uploader/internal/core/ports/output"
)

type SkipReason string

const (
	SkipUnmatched  SkipReason = "unmatched"
	SkipNoMetadata SkipReason = "no_metadata"
)

// RunResult is the outcome of attaching artifacts to one run.
type RunResult struct {
	Run      *domain.Run
	Family   domain.ModelFamily
	Skipped  SkipReason
	Uploaded []domain.ArtifactKind
	Err      error
}

// Summary totals one pass of AttachAll. It is for console output only.
type Summary struct {
	Attached  int
	Skipped   int
	Failed    int
	Artifacts int
	Results   []*RunResult
}

type AttachmentOptions struct {
	// Families is matched in order; nil means domain.DefaultFamilies.
	Families []domain.ModelFamily
	// ResumeRun marks each touched run RUNNING and then FINISHED or FAILED.
	ResumeRun bool
}

// AttachmentService uploads the supplementary artifacts of each run.
type AttachmentService struct {
	tracking  ports.TrackingClient
	store     ports.ModelStore
	workDir   ports.WorkDir
	reporter  ports.Reporter
	families  []domain.ModelFamily
	resumeRun bool
}

func NewAttachmentService(
	tracking ports.TrackingClient,
	store ports.ModelStore,
	workDir ports.WorkDir,
	reporter ports.Reporter,
	opts AttachmentOptions,
) *AttachmentService {
	if reporter == nil {
		reporter = ports.NopReporter{}
	}
	families := opts.Families
	if families == nil {
		families = domain.DefaultFamilies
	}
	return &AttachmentService{
		tracking:  tracking,
		store:     store,
		workDir:   workDir,
		reporter:  reporter,
		families:  families,
		resumeRun: opts.ResumeRun,
	}
}

// AttachAll processes runs one after another. A failing run is logged and
// the loop moves on; nothing already uploaded is rolled back.
func (s *AttachmentService) AttachAll(ctx context.Context, runs []*domain.Run) *Summary {
	summary := &Summary{}
	for _, run := range runs {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("artifact attachment interrupted")
			break
		}

		s.reporter.RunStarted(run)
		res, err := s.AttachRun(ctx, run)
		switch {
		case err != nil:
			res.Err = err
			summary.Failed++
			s.reporter.RunFailed(run, err)
			log.WithError(err).WithFields(log.Fields{
				"run_id":   run.ID,
				"run_name": run.Name,
				"uploaded": len(res.Uploaded),
			}).Error("attach artifacts failed")
		case res.Skipped != "":
			summary.Skipped++
		default:
			summary.Attached++
		}
		summary.Artifacts += len(res.Uploaded)
		summary.Results = append(summary.Results, res)
	}
	return summary
}

// AttachRun never returns a nil result.
func (s *AttachmentService) AttachRun(ctx context.Context, run *domain.Run) (*RunResult, error) {
	res := &RunResult{Run: run}
	logger := log.WithFields(log.Fields{"run_id": run.ID, "run_name": run.Name})

	family, ok := domain.ClassifyRun(run.Name, s.families)
	if !ok {
		res.Skipped = SkipUnmatched
		logger.Debug("run name matches no model family")
		return res, nil
	}
	res.Family = family

	md, err := s.store.LoadMetadata(family)
	if err != nil {
		if errors.Is(err, domain.ErrMetadataNotFound) {
			res.Skipped = SkipNoMetadata
			path := s.store.MetadataPath(family)
			s.reporter.MetadataMissing(run, path)
			logger.WithField("path", path).Warn("model metadata not found")
			return res, nil
		}
		return res, err
	}

	if s.resumeRun {
		if err := s.tracking.UpdateRunStatus(ctx, run.ID, domain.RunStatusRunning); err != nil {
			return res, fmt.Errorf("resume run: %w", err)
		}
	}

	err = s.upload(ctx, run, family, md, res)

	if s.resumeRun {
		status := domain.RunStatusFinished
		if err != nil {
			status = domain.RunStatusFailed
		}
		if endErr := s.tracking.UpdateRunStatus(ctx, run.ID, status); endErr != nil {
			err = errors.Join(err, fmt.Errorf("end run: %w", endErr))
		}
	}

	if err == nil {
		logger.WithField("artifacts", len(res.Uploaded)).Info("artifacts attached")
	}
	return res, err
}

type artifactBuilder struct {
	kind  domain.ArtifactKind
	build func(*domain.Metadata) ([]byte, error)
}

var metadataArtifacts = []artifactBuilder{
	{kind: domain.ArtifactModelInfo, build: buildModelInfo},
	{kind: domain.ArtifactRequirements, build: buildRequirements},
	{kind: domain.ArtifactMetrics, build: buildMetricsCSV},
	{kind: domain.ArtifactModelConfig, build: buildModelConfig},
}

func (s *AttachmentService) upload(ctx context.Context, run *domain.Run, family domain.ModelFamily, md *domain.Metadata, res *RunResult) error {
	for _, a := range metadataArtifacts {
		data, err := a.build(md)
		if err != nil {
			return fmt.Errorf("build %s: %w", a.kind.FileName, err)
		}
		local, err := s.workDir.Write(run.ID, a.kind.FileName, data)
		if err != nil {
			return err
		}
		if err := s.log(ctx, run, local, a.kind, res); err != nil {
			return err
		}
	}

	if !s.store.ModelExists(family) {
		return nil
	}
	local, err := s.workDir.Copy(run.ID, domain.ArtifactModel.FileName, s.store.ModelPath(family))
	if err != nil {
		return err
	}
	return s.log(ctx, run, local, domain.ArtifactModel, res)
}

func (s *AttachmentService) log(ctx context.Context, run *domain.Run, local string, kind domain.ArtifactKind, res *RunResult) error {
	if err := s.tracking.LogArtifact(ctx, run, local, kind.Label); err != nil {
		return fmt.Errorf("log %s: %w", kind.Path(), err)
	}
	res.Uploaded = append(res.Uploaded, kind)
	s.reporter.ArtifactLogged(run, kind)
	return nil
}
