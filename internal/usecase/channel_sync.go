package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/entity"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/mailchimp"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/thanksio"
)

// ChannelSpec parametriza o motor de delta-sync por canal:
// predicado de campos mínimos + operação de push. O cursor (coluna de
// synced_at) é selecionado pelo Name na query do repositório.
type ChannelSpec struct {
	Name     string
	Eligible func(record *entity.IdentityRecord) bool
	Push     func(ctx context.Context, tenant *entity.Tenant, record *entity.IdentityRecord) error
}

// ChannelSyncUseCase: um motor, dois canais (email e nota).
// Invariante do delta-sync: só re-push quando o registro mudou de verdade
// (cursor vazio OU updated_at > cursor).
type ChannelSyncUseCase struct {
	Spec    ChannelSpec
	Tenants TenantRepositoryInterface
	Records RecordRepositoryInterface

	BatchLimit int
	ItemDelay  time.Duration // pausa entre pushes p/ não estourar throttling

	Pause func(time.Duration)
	Now   func() time.Time
}

func newChannelSyncUseCase(spec ChannelSpec, tenants TenantRepositoryInterface, records RecordRepositoryInterface) *ChannelSyncUseCase {
	return &ChannelSyncUseCase{
		Spec:       spec,
		Tenants:    tenants,
		Records:    records,
		BatchLimit: 200,
		ItemDelay:  200 * time.Millisecond,
		Pause:      time.Sleep,
		Now:        time.Now,
	}
}

// Execute roda o delta-sync do canal para todos os tenants ativos.
// Tenant não-ativo nem chega a ter registros avaliados (circuit breaker).
func (uc *ChannelSyncUseCase) Execute(ctx context.Context) (ChannelSyncStats, error) {
	var stats ChannelSyncStats

	tenants, err := uc.Tenants.ListActive(ctx)
	if err != nil {
		return stats, fmt.Errorf("erro listando tenants ativos: %w", err)
	}

	for _, tenant := range tenants {
		if !tenant.IsActive() {
			continue
		}

		pushed, failed, skipped, err := uc.syncTenant(ctx, tenant)
		if err != nil {
			log.Printf("❌ [%sSync] cid=%s falhou: %v", uc.Spec.Name, tenant.CID, err)
			stats.TenantsFailed++
			continue
		}

		stats.TenantsProcessed++
		stats.Pushed += pushed
		stats.Failed += failed
		stats.Skipped += skipped
	}

	return stats, nil
}

func (uc *ChannelSyncUseCase) syncTenant(ctx context.Context, tenant *entity.Tenant) (pushed, failed, skipped int, err error) {
	records, err := uc.Records.FindDueForChannel(ctx, tenant.CID, uc.Spec.Name, uc.BatchLimit)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("erro buscando registros devidos: %w", err)
	}

	pause := uc.Pause
	if pause == nil {
		pause = time.Sleep
	}
	now := uc.Now
	if now == nil {
		now = time.Now
	}

	for _, record := range records {
		if !record.IsDueForChannel(uc.Spec.Name) {
			// FindDueForChannel já filtra; barreira extra contra regressão na query
			skipped++
			continue
		}

		if !uc.Spec.Eligible(record) {
			skipped++
			continue
		}

		if pushErr := uc.Spec.Push(ctx, tenant, record); pushErr != nil {
			// Cursor fica intocado: o registro continua elegível na
			// próxima rodada. Sem retry dentro da rodada.
			log.Printf("⚠️ [%sSync] cid=%s registro=%s push falhou: %v", uc.Spec.Name, tenant.CID, record.ID, pushErr)
			failed++
			continue
		}

		if stampErr := uc.Records.StampChannelSync(ctx, record.ID, uc.Spec.Name, now()); stampErr != nil {
			log.Printf("❌ [%sSync] cid=%s registro=%s erro carimbando cursor: %v", uc.Spec.Name, tenant.CID, record.ID, stampErr)
			failed++
			continue
		}

		pushed++
		if uc.ItemDelay > 0 {
			pause(uc.ItemDelay)
		}
	}

	return pushed, failed, skipped, nil
}

// NewEmailChannelSync: canal de email, upsert idempotente no Mailchimp
// (chave estável = MD5 do endereço).
func NewEmailChannelSync(tenants TenantRepositoryInterface, records RecordRepositoryInterface, mailer EmailChannelGateway) *ChannelSyncUseCase {
	spec := ChannelSpec{
		Name: entity.ChannelEmail,
		Eligible: func(r *entity.IdentityRecord) bool {
			return r.HasEmailProfile()
		},
		Push: func(ctx context.Context, t *entity.Tenant, r *entity.IdentityRecord) error {
			return mailer.UpsertContact(ctx, mailchimp.UpsertContactInput{
				ListID:    t.Settings.MailingListID,
				Email:     r.Email,
				FirstName: r.FirstName,
				LastName:  r.LastName,
				CID:       t.CID,
			})
		},
	}
	return newChannelSyncUseCase(spec, tenants, records)
}

// NewNoteChannelSync: canal de notas manuscritas, a chave de idempotência
// (cid, registro, dia) garante que retry não vira carta duplicada.
func NewNoteChannelSync(tenants TenantRepositoryInterface, records RecordRepositoryInterface, notes NoteChannelGateway) *ChannelSyncUseCase {
	uc := newChannelSyncUseCase(ChannelSpec{
		Name: entity.ChannelNote,
		Eligible: func(r *entity.IdentityRecord) bool {
			return r.HasPostalProfile()
		},
	}, tenants, records)

	uc.Spec.Push = func(ctx context.Context, t *entity.Tenant, r *entity.IdentityRecord) error {
		now := uc.Now
		if now == nil {
			now = time.Now
		}
		return notes.SendNote(ctx, thanksio.NoteInput{
			IdempotencyKey: thanksio.IdempotencyKey(t.CID, r.ID, now()),
			Recipient: thanksio.Recipient{
				Name:    strings.TrimSpace(r.FirstName + " " + r.LastName),
				Street:  r.Address.Street,
				City:    r.Address.City,
				State:   r.Address.State,
				ZipCode: r.Address.ZipCode,
			},
			Message:       RenderNoteMessage(t.Settings.NoteTemplate, r),
			SenderName:    t.Settings.SenderName,
			ReturnStreet:  t.Settings.ReturnAddress.Street,
			ReturnCity:    t.Settings.ReturnAddress.City,
			ReturnState:   t.Settings.ReturnAddress.State,
			ReturnZipCode: t.Settings.ReturnAddress.ZipCode,
		})
	}
	return uc
}

// RenderNoteMessage preenche o template da nota com os campos do registro.
// Placeholders simples no estilo {{first_name}}.
func RenderNoteMessage(template string, record *entity.IdentityRecord) string {
	if strings.TrimSpace(template) == "" {
		template = "Olá {{first_name}}, obrigado pela visita!"
	}
	replacer := strings.NewReplacer(
		"{{first_name}}", record.FirstName,
		"{{last_name}}", record.LastName,
		"{{city}}", record.Address.City,
	)
	return replacer.Replace(template)
}
