package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/entity"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/acuity"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/mailchimp"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/pixel"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/thanksio"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/queue"
)

// MockRecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) UpsertByHash(ctx context.Context, record *entity.IdentityRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.IdentityRecord, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.IdentityRecord), args.Error(1)
}

func (m *MockRecordRepository) FindByHashes(ctx context.Context, cid string, hashes []string) ([]*entity.IdentityRecord, error) {
	args := m.Called(ctx, cid, hashes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.IdentityRecord), args.Error(1)
}

func (m *MockRecordRepository) FindEnrichmentCandidates(ctx context.Context, cid string, limit int) ([]*entity.IdentityRecord, error) {
	args := m.Called(ctx, cid, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.IdentityRecord), args.Error(1)
}

func (m *MockRecordRepository) FindDueForChannel(ctx context.Context, cid, channel string, limit int) ([]*entity.IdentityRecord, error) {
	args := m.Called(ctx, cid, channel, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.IdentityRecord), args.Error(1)
}

func (m *MockRecordRepository) SaveEnrichment(ctx context.Context, record *entity.IdentityRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) MarkEnrichmentFailed(ctx context.Context, id string, attempts int, lastError string) error {
	args := m.Called(ctx, id, attempts, lastError)
	return args.Error(0)
}

func (m *MockRecordRepository) StampChannelSync(ctx context.Context, id, channel string, at time.Time) error {
	args := m.Called(ctx, id, channel, at)
	return args.Error(0)
}

// MockWatermarkRepository
type MockWatermarkRepository struct {
	mock.Mock
}

func (m *MockWatermarkRepository) Get(ctx context.Context, cid string) (*entity.Watermark, error) {
	args := m.Called(ctx, cid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Watermark), args.Error(1)
}

func (m *MockWatermarkRepository) Advance(ctx context.Context, cid string, lastSyncedAt time.Time, count int64) error {
	args := m.Called(ctx, cid, lastSyncedAt, count)
	return args.Error(0)
}

// MockTenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) ListActive(ctx context.Context) ([]*entity.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByCID(ctx context.Context, cid string) (*entity.Tenant, error) {
	args := m.Called(ctx, cid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tenant), args.Error(1)
}

// MockPixelGateway
type MockPixelGateway struct {
	mock.Mock
}

func (m *MockPixelGateway) FetchEvents(ctx context.Context, cid string, since *time.Time) ([]pixel.VisitorEvent, error) {
	args := m.Called(ctx, cid, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pixel.VisitorEvent), args.Error(1)
}

// MockResolverGateway
type MockResolverGateway struct {
	mock.Mock
}

func (m *MockResolverGateway) EnrichByHash(ctx context.Context, hash string) (*acuity.Identity, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*acuity.Identity), args.Error(1)
}

// MockEmailChannelGateway
type MockEmailChannelGateway struct {
	mock.Mock
}

func (m *MockEmailChannelGateway) UpsertContact(ctx context.Context, input mailchimp.UpsertContactInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

// MockNoteChannelGateway
type MockNoteChannelGateway struct {
	mock.Mock
}

func (m *MockNoteChannelGateway) SendNote(ctx context.Context, input thanksio.NoteInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishEnrichment(ctx context.Context, payload queue.EnrichmentPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
