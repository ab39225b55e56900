package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sitedash-io/sitedash/internal/config"
	mq "github.com/sitedash-io/sitedash/internal/infra/queue"
	"github.com/sitedash-io/sitedash/internal/modules/model"
)

// publishChange emits a change event best-effort. A nil publisher (broker
// disabled) and a publish failure are both non-fatal: the mutation already
// landed in the store and consumers are advisory.
func publishChange(ctx context.Context, p *mq.Publisher, cfg *config.Config, log *zap.Logger, kind, projectID string, payload any) {
	if p == nil {
		return
	}
	ev := model.NewChangeEvent(kind, projectID, payload)
	if err := p.PublishJSON(ctx, cfg.RabbitMQ.Exchange, kind, ev); err != nil {
		log.Warn("publish change event failed",
			zap.String("kind", kind),
			zap.String("project_id", projectID),
			zap.Error(err))
	}
}
