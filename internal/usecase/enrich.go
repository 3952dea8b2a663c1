package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/entity"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/acuity"
)

// EnrichUseCase: motor de enriquecimento.
// Processa candidatos em sub-batches; dentro de cada sub-batch as chamadas
// ao resolvedor rodam concorrentes, mas nunca acima do teto configurado.
// O teto é requisito de corretude (rate limit do provedor), não tuning.
type EnrichUseCase struct {
	Tenants  TenantRepositoryInterface
	Records  RecordRepositoryInterface
	Resolver ResolverGateway
	Policy   RetryPolicy

	Concurrency int           // chamadas simultâneas ao resolvedor
	BatchSize   int           // tamanho do sub-batch
	BatchPause  time.Duration // respiro entre sub-batches
	SweepLimit  int           // candidatos por tenant no sweep agendado

	Pause func(time.Duration) // injetável p/ testes
}

func NewEnrichUseCase(
	tenants TenantRepositoryInterface,
	records RecordRepositoryInterface,
	resolver ResolverGateway,
	policy RetryPolicy,
) *EnrichUseCase {
	return &EnrichUseCase{
		Tenants:     tenants,
		Records:     records,
		Resolver:    resolver,
		Policy:      policy,
		Concurrency: 3,
		BatchSize:   10,
		BatchPause:  time.Second,
		SweepLimit:  500,
		Pause:       time.Sleep,
	}
}

// EnrichAll: sweep agendado, varre os candidatos de todos os tenants
// ativos (pendentes, falhos e completados com campos furados).
func (uc *EnrichUseCase) EnrichAll(ctx context.Context) (EnrichStats, error) {
	var stats EnrichStats

	tenants, err := uc.Tenants.ListActive(ctx)
	if err != nil {
		return stats, fmt.Errorf("erro listando tenants ativos: %w", err)
	}

	for _, tenant := range tenants {
		if !tenant.IsActive() {
			continue
		}

		candidates, err := uc.Records.FindEnrichmentCandidates(ctx, tenant.CID, uc.SweepLimit)
		if err != nil {
			log.Printf("❌ [Enrich] cid=%s erro buscando candidatos: %v", tenant.CID, err)
			continue
		}

		stats.merge(uc.EnrichBatch(ctx, candidates))
	}

	return stats, nil
}

// EnrichHashes: entrada do worker da fila. O gate de tenant é um circuit
// breaker: tenant não-ativo não gera NENHUMA chamada externa.
func (uc *EnrichUseCase) EnrichHashes(ctx context.Context, cid string, hashes []string) (int, error) {
	tenant, err := uc.Tenants.FindByCID(ctx, cid)
	if err != nil {
		return 0, fmt.Errorf("erro buscando tenant %s: %w", cid, err)
	}
	if tenant == nil || !tenant.IsActive() {
		log.Printf("⛔ [Enrich] cid=%s não está ativo, batch ignorado", cid)
		return 0, nil
	}

	records, err := uc.Records.FindByHashes(ctx, cid, hashes)
	if err != nil {
		return 0, fmt.Errorf("erro buscando registros: %w", err)
	}

	stats := uc.EnrichBatch(ctx, records)
	return stats.Enriched, nil
}

// EnrichByIDs: gatilho manual (POST /enrich)
func (uc *EnrichUseCase) EnrichByIDs(ctx context.Context, ids []string) (EnrichStats, error) {
	records, err := uc.Records.FindByIDs(ctx, ids)
	if err != nil {
		return EnrichStats{}, fmt.Errorf("erro buscando registros: %w", err)
	}
	return uc.EnrichBatch(ctx, records), nil
}

// EnrichBatch processa os registros em sub-batches com teto de concorrência.
// Falha de um registro é isolada: vira contagem + mensagem, nunca panic/throw.
func (uc *EnrichUseCase) EnrichBatch(ctx context.Context, records []*entity.IdentityRecord) EnrichStats {
	var stats EnrichStats

	batchSize := uc.BatchSize
	if batchSize < 1 {
		batchSize = 10
	}
	ceiling := uc.Concurrency
	if ceiling < 1 {
		ceiling = 1
	}
	pause := uc.Pause
	if pause == nil {
		pause = time.Sleep
	}

	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		sem := make(chan struct{}, ceiling)

		for _, record := range records[start:end] {
			// Já enriquecido e íntegro: pula sem gastar chamada externa
			if !record.NeedsEnrichment() {
				stats.Skipped++
				continue
			}

			wg.Add(1)
			go func(r *entity.IdentityRecord) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				outcome := uc.enrichOne(ctx, r)

				mu.Lock()
				defer mu.Unlock()
				if outcome.retried {
					stats.Retried++
				}
				if outcome.err != nil {
					stats.Failed++
					stats.addError(fmt.Sprintf("%s: %v", r.Hash, outcome.err))
					return
				}
				stats.Enriched++
			}(record)
		}

		wg.Wait()

		// Respiro entre sub-batches para não estourar o rate limit
		if end < len(records) && uc.BatchPause > 0 {
			pause(uc.BatchPause)
		}
	}

	return stats
}

type enrichOutcome struct {
	retried bool
	err     error
}

func (uc *EnrichUseCase) enrichOne(ctx context.Context, record *entity.IdentityRecord) enrichOutcome {
	var identity *acuity.Identity

	attempts, err := uc.Policy.Run(ctx, func() error {
		result, callErr := uc.Resolver.EnrichByHash(ctx, record.Hash)
		if callErr != nil {
			return callErr
		}
		identity = result
		return nil
	})

	outcome := enrichOutcome{retried: attempts > 1}

	if err != nil {
		msg := fmt.Sprintf("após %d tentativa(s): %v", attempts, err)
		if markErr := uc.Records.MarkEnrichmentFailed(ctx, record.ID, attempts, msg); markErr != nil {
			log.Printf("❌ [Enrich] erro persistindo falha de %s: %v", record.Hash, markErr)
		}
		outcome.err = err
		return outcome
	}

	applyIdentity(record, identity)

	if saveErr := uc.Records.SaveEnrichment(ctx, record); saveErr != nil {
		outcome.err = fmt.Errorf("erro salvando enriquecimento: %w", saveErr)
		return outcome
	}

	return outcome
}

// applyIdentity mapeia o resultado do resolvedor para os campos canônicos
// (achatados) do registro e escolhe o melhor email pela ordem total.
func applyIdentity(record *entity.IdentityRecord, identity *acuity.Identity) {
	record.FirstName = identity.FirstName
	record.LastName = identity.LastName
	record.Address = identity.Address

	record.AgeRange = identity.AgeRange
	record.Gender = identity.Gender
	record.MaritalStatus = identity.MaritalStatus
	record.IncomeRange = identity.IncomeRange
	record.HomeOwner = identity.HomeOwner
	record.HomeValue = identity.HomeValue
	record.LengthOfResidence = identity.LengthOfResidence

	record.Emails = identity.Emails
	if best := entity.BestCandidate(identity.Emails); best != nil && best.Email != "" {
		record.Email = best.Email
	}

	record.EnrichmentStatus = entity.EnrichmentCompleted
	record.LastError = ""
	record.UpdatedAt = time.Now()
}
