package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/entity"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/queue"
)

// PixelSyncUseCase: ingestão incremental (delta) dos hits do pixel,
// tenant a tenant, guiada pelo watermark de cada um.
type PixelSyncUseCase struct {
	Tenants    TenantRepositoryInterface
	Records    RecordRepositoryInterface
	Watermarks WatermarkRepositoryInterface
	Pixel      PixelGateway
	Queue      QueueProducerInterface
}

func NewPixelSyncUseCase(
	tenants TenantRepositoryInterface,
	records RecordRepositoryInterface,
	watermarks WatermarkRepositoryInterface,
	pixelGateway PixelGateway,
	producer QueueProducerInterface,
) *PixelSyncUseCase {
	return &PixelSyncUseCase{
		Tenants:    tenants,
		Records:    records,
		Watermarks: watermarks,
		Pixel:      pixelGateway,
		Queue:      producer,
	}
}

// Execute roda a ingestão para todos os tenants ativos.
// A falha de um tenant (rede, non-2xx, banco) é capturada aqui e
// não derruba o loop dos demais.
func (uc *PixelSyncUseCase) Execute(ctx context.Context) (PixelSyncStats, error) {
	var stats PixelSyncStats

	tenants, err := uc.Tenants.ListActive(ctx)
	if err != nil {
		return stats, fmt.Errorf("erro listando tenants ativos: %w", err)
	}

	for _, tenant := range tenants {
		if !tenant.IsActive() {
			// ListActive já filtra; barreira extra contra regressão na query
			continue
		}

		upserted, err := uc.syncTenant(ctx, tenant)
		if err != nil {
			log.Printf("❌ [PixelSync] cid=%s falhou: %v", tenant.CID, err)
			stats.TenantsFailed++
			continue
		}

		stats.TenantsProcessed++
		stats.RecordsUpserted += upserted
	}

	return stats, nil
}

func (uc *PixelSyncUseCase) syncTenant(ctx context.Context, tenant *entity.Tenant) (int, error) {
	watermark, err := uc.Watermarks.Get(ctx, tenant.CID)
	if err != nil {
		return 0, fmt.Errorf("erro lendo watermark: %w", err)
	}

	// Sem watermark = primeiro sync do tenant: busca tudo
	var since *time.Time
	if watermark != nil {
		since = &watermark.LastSyncedAt
	}

	events, err := uc.Pixel.FetchEvents(ctx, tenant.CID, since)
	if err != nil {
		return 0, err
	}

	var maxSeen time.Time
	if watermark != nil {
		maxSeen = watermark.LastSyncedAt
	}

	upserted := 0
	var hashes []string

	for _, event := range events {
		if strings.TrimSpace(event.Hash) == "" {
			continue
		}

		record, err := entity.NewIdentityRecord(tenant.CID, event.Hash)
		if err != nil {
			log.Printf("⚠️ [PixelSync] cid=%s evento com hash inválido, pulando: %v", tenant.CID, err)
			continue
		}

		record.SourceURL = event.URL
		record.SessionID = event.Session
		record.Var1 = event.Var
		if capturedAt, ok := event.CapturedAt(); ok {
			record.CapturedAt = capturedAt
			// O watermark final é o MAIOR timestamp visto, não o último:
			// o feed pode entregar fora de ordem
			if capturedAt.After(maxSeen) {
				maxSeen = capturedAt
			}
		}

		if err := uc.Records.UpsertByHash(ctx, record); err != nil {
			return upserted, fmt.Errorf("erro no upsert de %s: %w", record.Hash, err)
		}

		upserted++
		hashes = append(hashes, record.Hash)
	}

	// Registros novos/atualizados viram candidatos de enriquecimento
	if len(hashes) > 0 && uc.Queue != nil {
		payload := queue.EnrichmentPayload{CID: tenant.CID, Hashes: hashes, Origin: "PIXEL_SYNC"}
		if err := uc.Queue.PublishEnrichment(ctx, payload); err != nil {
			// Fila fora não aborta a ingestão: o sweep agendado pega depois
			log.Printf("⚠️ [PixelSync] cid=%s falha ao publicar enriquecimento: %v", tenant.CID, err)
		}
	}

	// Avança o watermark só se o máximo observado for estritamente maior
	if !maxSeen.IsZero() && (watermark == nil || watermark.ShouldAdvance(maxSeen)) {
		if err := uc.Watermarks.Advance(ctx, tenant.CID, maxSeen, int64(upserted)); err != nil {
			return upserted, fmt.Errorf("erro avançando watermark: %w", err)
		}
	}

	if upserted > 0 {
		log.Printf("✅ [PixelSync] cid=%s: %d registros, watermark=%s", tenant.CID, upserted, maxSeen.Format(time.RFC3339))
	}

	return upserted, nil
}
