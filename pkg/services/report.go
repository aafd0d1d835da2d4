package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/blueprint"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
	"github.com/ekaya-inc/ekaya-discovery/pkg/render"
	"github.com/ekaya-inc/ekaya-discovery/pkg/wizard"
)

// Report is the summary view of one session's record.
type Report struct {
	Record    models.DiscoveryRecord `json:"record"`
	Blueprint blueprint.Blueprint    `json:"blueprint"`
	Gaps      []models.ValidationGap `json:"gaps"`
}

// ReportService derives summaries and diagrams for live sessions.
type ReportService interface {
	// Report derives the blueprint and gaps of the session's record.
	Report(id string) (*Report, error)

	// Diagram renders one diagram of the session's record. It returns a nil
	// graphic without calling the renderer when the diagram has nothing to draw.
	Diagram(ctx context.Context, id string, kind blueprint.DiagramKind) (*render.Graphic, error)
}

type reportService struct {
	sessions SessionLookup
	renderer render.Renderer
	metrics  *Metrics
	logger   *zap.Logger
}

// NewReportService creates a new report service.
func NewReportService(sessions SessionLookup, renderer render.Renderer, metrics *Metrics, logger *zap.Logger) ReportService {
	return &reportService{
		sessions: sessions,
		renderer: renderer,
		metrics:  metrics,
		logger:   logger.Named("report"),
	}
}

var _ ReportService = (*reportService)(nil)

func (s *reportService) Report(id string) (*Report, error) {
	sess, err := s.sessions.Session(id)
	if err != nil {
		return nil, err
	}

	rec := sess.Record()
	gaps := models.Gaps(rec)
	if gaps == nil {
		gaps = []models.ValidationGap{}
	}
	return &Report{
		Record:    rec,
		Blueprint: blueprint.Derive(rec),
		Gaps:      gaps,
	}, nil
}

func (s *reportService) Diagram(ctx context.Context, id string, kind blueprint.DiagramKind) (*render.Graphic, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("diagram kind %q: %w", kind, apperrors.ErrNotFound)
	}

	sess, err := s.sessions.Session(id)
	if err != nil {
		return nil, err
	}

	doc := blueprint.Derive(sess.Record()).Document(kind)
	if doc == "" {
		return nil, nil
	}

	busy := sess.Busy()
	if !busy.TryAcquire(wizard.ActionRender) {
		return nil, fmt.Errorf("render: %w", apperrors.ErrBusy)
	}
	defer busy.Release(wizard.ActionRender)

	graphic, err := s.renderer.Render(ctx, doc)
	if err != nil {
		s.metrics.failure(CollaboratorRender)
		s.logger.Warn("Diagram render failed",
			zap.String("session_id", id),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return nil, err
	}
	return graphic, nil
}
