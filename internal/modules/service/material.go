package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sitedash-io/sitedash/internal/config"
	mq "github.com/sitedash-io/sitedash/internal/infra/queue"
	"github.com/sitedash-io/sitedash/internal/modules/model"
	"github.com/sitedash-io/sitedash/internal/modules/repo"
	"github.com/sitedash-io/sitedash/internal/pkg/metrics"
)

type MaterialService interface {
	ListByProject(ctx context.Context, projectID string) ([]model.Material, error)
	// RecordDispatch adds a dispatched quantity against an item, creating
	// the row on first dispatch. Dispatched totals only ever grow.
	RecordDispatch(ctx context.Context, in RecordDispatchInput) (*model.Material, error)
}

type materialService struct {
	materials repo.MaterialRepo
	projects  repo.ProjectRepo
	publisher *mq.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewMaterialService(materials repo.MaterialRepo, projects repo.ProjectRepo, publisher *mq.Publisher, cfg *config.Config, log *zap.Logger) MaterialService {
	return &materialService{
		materials: materials,
		projects:  projects,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

func (s *materialService) ListByProject(ctx context.Context, projectID string) ([]model.Material, error) {
	if projectID == "" {
		return nil, validationErr("project id is empty")
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.materials.ListByProject(ctx, projectID)
}

type RecordDispatchInput struct {
	ProjectID string `json:"project_id"`
	Item      string `json:"item"`
	Quantity  any    `json:"quantity"`
	// Required and Unit only apply when the dispatch creates the item row;
	// on existing rows Required is updated only when positive.
	Required any    `json:"required"`
	Unit     string `json:"unit"`
}

func (s *materialService) RecordDispatch(ctx context.Context, in RecordDispatchInput) (*model.Material, error) {
	if in.ProjectID == "" || in.Item == "" {
		return nil, validationErr("project id and item are required")
	}
	qty := metrics.CoerceNumber(in.Quantity)
	if qty <= 0 {
		return nil, validationErr("dispatch quantity must be positive")
	}
	if _, err := s.projects.Get(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	m, err := s.materials.Get(ctx, in.ProjectID, in.Item)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		m = &model.Material{
			ProjectID:  in.ProjectID,
			Item:       in.Item,
			Required:   metrics.CoerceNumber(in.Required),
			Dispatched: qty,
			Unit:       in.Unit,
		}
		if err := s.materials.Create(ctx, m); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		m.Dispatched += qty
		if r := metrics.CoerceNumber(in.Required); r > 0 {
			m.Required = r
		}
		if in.Unit != "" {
			m.Unit = in.Unit
		}
		if err := s.materials.Update(ctx, m); err != nil {
			return nil, err
		}
	}

	publishChange(ctx, s.publisher, s.cfg, s.log, model.EventDispatchRecorded, in.ProjectID, m)
	return m, nil
}
