package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/entity"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/pixel"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/usecase"
)

func activeTenant(cid string) *entity.Tenant {
	return &entity.Tenant{CID: cid, Name: "Tenant " + cid, Status: entity.TenantActive}
}

func eventAt(hash string, ts time.Time) pixel.VisitorEvent {
	return pixel.VisitorEvent{
		Hash:      hash,
		URL:       "https://example.com/listing/42",
		Timestamp: pixel.EventTimestamp(ts.Format(time.RFC3339)),
		Session:   "sess-1",
	}
}

// O watermark final é o MAIOR timestamp visto, não o do último evento:
// o feed entrega fora de ordem [t5, t3, t8] e o cursor termina em t8
func TestPixelSyncWatermarkIsMaxSeen(t *testing.T) {
	ctx := context.Background()
	mockTenants := new(MockTenantRepository)
	mockRecords := new(MockRecordRepository)
	mockWatermarks := new(MockWatermarkRepository)
	mockPixel := new(MockPixelGateway)
	mockQueue := new(MockQueueProducer)

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	t5 := base.Add(5 * time.Minute)
	t3 := base.Add(3 * time.Minute)
	t8 := base.Add(8 * time.Minute)

	mockTenants.On("ListActive", ctx).Return([]*entity.Tenant{activeTenant("cid001")}, nil)
	mockWatermarks.On("Get", ctx, "cid001").Return(&entity.Watermark{CID: "cid001", LastSyncedAt: base}, nil)
	mockPixel.On("FetchEvents", ctx, "cid001", mock.Anything).Return([]pixel.VisitorEvent{
		eventAt("5d41402abc4b2a76b9719d911017c592", t5),
		eventAt("6d41402abc4b2a76b9719d911017c593", t3),
		eventAt("7d41402abc4b2a76b9719d911017c594", t8),
	}, nil)
	mockRecords.On("UpsertByHash", ctx, mock.Anything).Return(nil)
	mockQueue.On("PublishEnrichment", ctx, mock.Anything).Return(nil)
	mockWatermarks.On("Advance", ctx, "cid001", t8, int64(3)).Return(nil)

	uc := usecase.NewPixelSyncUseCase(mockTenants, mockRecords, mockWatermarks, mockPixel, mockQueue)

	stats, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 3, stats.RecordsUpserted)
	assert.Equal(t, 1, stats.TenantsProcessed)
	mockWatermarks.AssertExpectations(t)
}

// Primeiro sync (sem watermark): busca tudo, since=nil
func TestPixelSyncFirstSyncFetchesEverything(t *testing.T) {
	ctx := context.Background()
	mockTenants := new(MockTenantRepository)
	mockRecords := new(MockRecordRepository)
	mockWatermarks := new(MockWatermarkRepository)
	mockPixel := new(MockPixelGateway)

	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	mockTenants.On("ListActive", ctx).Return([]*entity.Tenant{activeTenant("cid001")}, nil)
	mockWatermarks.On("Get", ctx, "cid001").Return(nil, nil)
	mockPixel.On("FetchEvents", ctx, "cid001", (*time.Time)(nil)).Return([]pixel.VisitorEvent{
		eventAt("5d41402abc4b2a76b9719d911017c592", ts),
	}, nil)
	mockRecords.On("UpsertByHash", ctx, mock.Anything).Return(nil)
	mockWatermarks.On("Advance", ctx, "cid001", ts, int64(1)).Return(nil)

	uc := usecase.NewPixelSyncUseCase(mockTenants, mockRecords, mockWatermarks, mockPixel, nil)

	stats, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.RecordsUpserted)
	mockPixel.AssertCalled(t, "FetchEvents", ctx, "cid001", (*time.Time)(nil))
}

// Rodada sem eventos: nada upserted e o watermark NÃO avança
func TestPixelSyncEmptyFeedLeavesWatermark(t *testing.T) {
	ctx := context.Background()
	mockTenants := new(MockTenantRepository)
	mockRecords := new(MockRecordRepository)
	mockWatermarks := new(MockWatermarkRepository)
	mockPixel := new(MockPixelGateway)

	mockTenants.On("ListActive", ctx).Return([]*entity.Tenant{activeTenant("cid001")}, nil)
	mockWatermarks.On("Get", ctx, "cid001").Return(nil, nil)
	mockPixel.On("FetchEvents", ctx, "cid001", mock.Anything).Return([]pixel.VisitorEvent{}, nil)

	uc := usecase.NewPixelSyncUseCase(mockTenants, mockRecords, mockWatermarks, mockPixel, nil)

	stats, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, stats.RecordsUpserted)
	mockWatermarks.AssertNotCalled(t, "Advance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Evento sem hash é pulado, o restante do batch segue
func TestPixelSyncSkipsBlankHash(t *testing.T) {
	ctx := context.Background()
	mockTenants := new(MockTenantRepository)
	mockRecords := new(MockRecordRepository)
	mockWatermarks := new(MockWatermarkRepository)
	mockPixel := new(MockPixelGateway)

	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	mockTenants.On("ListActive", ctx).Return([]*entity.Tenant{activeTenant("cid001")}, nil)
	mockWatermarks.On("Get", ctx, "cid001").Return(nil, nil)
	mockPixel.On("FetchEvents", ctx, "cid001", mock.Anything).Return([]pixel.VisitorEvent{
		{Hash: "   ", Timestamp: pixel.EventTimestamp(ts.Format(time.RFC3339))},
		eventAt("5d41402abc4b2a76b9719d911017c592", ts),
	}, nil)
	mockRecords.On("UpsertByHash", ctx, mock.Anything).Return(nil)
	mockWatermarks.On("Advance", ctx, "cid001", ts, int64(1)).Return(nil)

	uc := usecase.NewPixelSyncUseCase(mockTenants, mockRecords, mockWatermarks, mockPixel, nil)

	stats, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.RecordsUpserted)
	mockRecords.AssertNumberOfCalls(t, "UpsertByHash", 1)
}

// A falha de um tenant não derruba o loop dos demais
func TestPixelSyncTenantFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	mockTenants := new(MockTenantRepository)
	mockRecords := new(MockRecordRepository)
	mockWatermarks := new(MockWatermarkRepository)
	mockPixel := new(MockPixelGateway)

	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	mockTenants.On("ListActive", ctx).Return([]*entity.Tenant{
		activeTenant("cid-broken"),
		activeTenant("cid-ok"),
	}, nil)
	mockWatermarks.On("Get", ctx, "cid-broken").Return(nil, nil)
	mockPixel.On("FetchEvents", ctx, "cid-broken", mock.Anything).Return(nil, errors.New("connection refused"))

	mockWatermarks.On("Get", ctx, "cid-ok").Return(nil, nil)
	mockPixel.On("FetchEvents", ctx, "cid-ok", mock.Anything).Return([]pixel.VisitorEvent{
		eventAt("5d41402abc4b2a76b9719d911017c592", ts),
	}, nil)
	mockRecords.On("UpsertByHash", ctx, mock.Anything).Return(nil)
	mockWatermarks.On("Advance", ctx, "cid-ok", ts, int64(1)).Return(nil)

	uc := usecase.NewPixelSyncUseCase(mockTenants, mockRecords, mockWatermarks, mockPixel, nil)

	stats, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.TenantsFailed)
	assert.Equal(t, 1, stats.TenantsProcessed)
	assert.Equal(t, 1, stats.RecordsUpserted)
}

// Fila fora do ar não aborta a ingestão (o sweep agendado cobre depois)
func TestPixelSyncQueueFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	mockTenants := new(MockTenantRepository)
	mockRecords := new(MockRecordRepository)
	mockWatermarks := new(MockWatermarkRepository)
	mockPixel := new(MockPixelGateway)
	mockQueue := new(MockQueueProducer)

	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	mockTenants.On("ListActive", ctx).Return([]*entity.Tenant{activeTenant("cid001")}, nil)
	mockWatermarks.On("Get", ctx, "cid001").Return(nil, nil)
	mockPixel.On("FetchEvents", ctx, "cid001", mock.Anything).Return([]pixel.VisitorEvent{
		eventAt("5d41402abc4b2a76b9719d911017c592", ts),
	}, nil)
	mockRecords.On("UpsertByHash", ctx, mock.Anything).Return(nil)
	mockQueue.On("PublishEnrichment", ctx, mock.Anything).Return(errors.New("channel closed"))
	mockWatermarks.On("Advance", ctx, "cid001", ts, int64(1)).Return(nil)

	uc := usecase.NewPixelSyncUseCase(mockTenants, mockRecords, mockWatermarks, mockPixel, mockQueue)

	stats, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.RecordsUpserted)
	assert.Equal(t, 0, stats.TenantsFailed)
	mockWatermarks.AssertExpectations(t)
}
