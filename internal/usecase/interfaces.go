package usecase

import (
	"context"
	"time"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/entity"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/acuity"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/mailchimp"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/pixel"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/thanksio"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/queue"
)

type RecordRepositoryInterface interface {
	UpsertByHash(ctx context.Context, record *entity.IdentityRecord) error
	FindByIDs(ctx context.Context, ids []string) ([]*entity.IdentityRecord, error)
	FindByHashes(ctx context.Context, cid string, hashes []string) ([]*entity.IdentityRecord, error)
	FindEnrichmentCandidates(ctx context.Context, cid string, limit int) ([]*entity.IdentityRecord, error)
	FindDueForChannel(ctx context.Context, cid, channel string, limit int) ([]*entity.IdentityRecord, error)
	SaveEnrichment(ctx context.Context, record *entity.IdentityRecord) error
	MarkEnrichmentFailed(ctx context.Context, id string, attempts int, lastError string) error
	StampChannelSync(ctx context.Context, id, channel string, at time.Time) error
}

type WatermarkRepositoryInterface interface {
	Get(ctx context.Context, cid string) (*entity.Watermark, error)
	Advance(ctx context.Context, cid string, lastSyncedAt time.Time, count int64) error
}

type TenantRepositoryInterface interface {
	ListActive(ctx context.Context) ([]*entity.Tenant, error)
	FindByCID(ctx context.Context, cid string) (*entity.Tenant, error)
}

type PixelGateway interface {
	FetchEvents(ctx context.Context, cid string, since *time.Time) ([]pixel.VisitorEvent, error)
}

type ResolverGateway interface {
	EnrichByHash(ctx context.Context, hash string) (*acuity.Identity, error)
}

type EmailChannelGateway interface {
	UpsertContact(ctx context.Context, input mailchimp.UpsertContactInput) error
}

type NoteChannelGateway interface {
	SendNote(ctx context.Context, input thanksio.NoteInput) error
}

type QueueProducerInterface interface {
	PublishEnrichment(ctx context.Context, payload queue.EnrichmentPayload) error
}
