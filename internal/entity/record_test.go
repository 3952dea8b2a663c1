package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const validHash = "5d41402abc4b2a76b9719d911017c592"

func TestNewIdentityRecord(t *testing.T) {
	record, err := NewIdentityRecord("cid001", "5D41402ABC4B2A76B9719D911017C592 ")

	assert.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "cid001", record.CID)
	// hash é normalizado: minúsculo, sem espaços
	assert.Equal(t, validHash, record.Hash)
	assert.Equal(t, EnrichmentPending, record.EnrichmentStatus)
}

func TestNewIdentityRecordRejectsBadInput(t *testing.T) {
	_, err := NewIdentityRecord("", validHash)
	assert.Error(t, err)

	_, err = NewIdentityRecord("cid001", "abc123")
	assert.Error(t, err)
}

func TestNeedsEnrichment(t *testing.T) {
	record := &IdentityRecord{CID: "cid001", Hash: validHash}

	// status vazio ou pendente/falho: sempre precisa
	assert.True(t, record.NeedsEnrichment())
	record.EnrichmentStatus = EnrichmentPending
	assert.True(t, record.NeedsEnrichment())
	record.EnrichmentStatus = EnrichmentFailed
	assert.True(t, record.NeedsEnrichment())

	// completed mas com campo furado: ainda precisa
	record.EnrichmentStatus = EnrichmentCompleted
	assert.True(t, record.NeedsEnrichment())

	record.FirstName = "Maria"
	record.Email = "N/A"
	assert.True(t, record.NeedsEnrichment())

	record.Email = "maria@example.com"
	assert.False(t, record.NeedsEnrichment())
}

// "null" e "N/A" (qualquer caixa) contam como campo ausente
func TestNeedsEnrichmentSentinelValues(t *testing.T) {
	record := &IdentityRecord{
		EnrichmentStatus: EnrichmentCompleted,
		FirstName:        "NULL",
		Email:            "joao@example.com",
	}
	assert.True(t, record.NeedsEnrichment())

	record.FirstName = "n/a"
	assert.True(t, record.NeedsEnrichment())

	record.FirstName = "João"
	assert.False(t, record.NeedsEnrichment())
}

func TestHasEmailProfile(t *testing.T) {
	record := &IdentityRecord{Email: "ana@example.com"}
	// email sem nenhum nome não basta
	assert.False(t, record.HasEmailProfile())

	record.LastName = "Souza"
	assert.True(t, record.HasEmailProfile())

	record.Email = "N/A"
	assert.False(t, record.HasEmailProfile())
}

func TestHasPostalProfile(t *testing.T) {
	record := &IdentityRecord{
		FirstName: "Ana",
		Address:   Address{Street: "123 Main St", City: "Tampa", State: "FL"},
	}
	// endereço incompleto (sem CEP)
	assert.False(t, record.HasPostalProfile())

	record.Address.ZipCode = "33601"
	assert.True(t, record.HasPostalProfile())

	record.FirstName = ""
	assert.False(t, record.HasPostalProfile())
}

func TestIsDueForChannel(t *testing.T) {
	updated := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	record := &IdentityRecord{UpdatedAt: updated}

	// cursor vazio: sempre devido
	assert.True(t, record.IsDueForChannel(ChannelEmail))
	assert.True(t, record.IsDueForChannel(ChannelNote))

	// registro mudou depois do último push: devido de novo
	before := updated.Add(-time.Hour)
	record.EmailSyncedAt = &before
	assert.True(t, record.IsDueForChannel(ChannelEmail))

	// cursor depois da última mudança: re-rodar o sync não gera push
	after := updated.Add(time.Hour)
	record.EmailSyncedAt = &after
	assert.False(t, record.IsDueForChannel(ChannelEmail))

	// cursor igual ao updated_at também suprime (a regra é estritamente maior)
	record.EmailSyncedAt = &updated
	assert.False(t, record.IsDueForChannel(ChannelEmail))

	// os cursores são independentes por canal
	assert.True(t, record.IsDueForChannel(ChannelNote))

	assert.False(t, record.IsDueForChannel("pombo-correio"))
}

func TestWatermarkShouldAdvance(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	wm := &Watermark{CID: "cid001", LastSyncedAt: base}

	assert.True(t, wm.ShouldAdvance(base.Add(time.Second)))
	// igual NÃO avança: a guarda é estritamente maior
	assert.False(t, wm.ShouldAdvance(base))
	assert.False(t, wm.ShouldAdvance(base.Add(-time.Hour)))
}

func TestTenantIsActive(t *testing.T) {
	tenant := &Tenant{CID: "cid001", Status: TenantActive}
	assert.True(t, tenant.IsActive())

	tenant.Status = TenantSuspended
	assert.False(t, tenant.IsActive())

	tenant.Status = TenantInactive
	assert.False(t, tenant.IsActive())
}
