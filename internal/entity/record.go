package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	// IMPORTANTE: NÃO adicione imports de usecase ou infra aqui!
)

// Status de enriquecimento do registro
const (
	EnrichmentPending   = "pending"
	EnrichmentCompleted = "completed"
	EnrichmentFailed    = "failed"
)

// Sentinela que os provedores devolvem quando não têm o dado
const NotAvailable = "N/A"

// Canais downstream com cursor de sincronização próprio
const (
	ChannelEmail = "email"
	ChannelNote  = "note"
)

// Value Object: Address
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

func (a Address) IsComplete() bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.ZipCode != ""
}

// Entidade: IdentityRecord
// Um visitante anônimo capturado pelo pixel, identificado pelo par (cid, hash).
type IdentityRecord struct {
	ID   string `json:"id"`
	CID  string `json:"cid"`
	Hash string `json:"hash"` // MD5 do email, hex minúsculo

	// Metadados de captura (vêm do pixel)
	SourceURL  string    `json:"source_url"`
	SessionID  string    `json:"session_id"`
	Var1       string    `json:"var1"`
	Var2       string    `json:"var2"`
	CapturedAt time.Time `json:"captured_at"`

	// Identidade resolvida (campos achatados, representação canônica)
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Address   Address `json:"address"`

	// Atributos demográficos e imobiliários
	AgeRange          string `json:"age_range"`
	Gender            string `json:"gender"`
	MaritalStatus     string `json:"marital_status"`
	IncomeRange       string `json:"income_range"`
	HomeOwner         string `json:"home_owner"`
	HomeValue         string `json:"home_value"`
	LengthOfResidence string `json:"length_of_residence"`

	// Candidatos de email devolvidos pelo resolvedor
	Emails []CandidateEmail `json:"emails"`

	EnrichmentStatus string `json:"enrichment_status"`
	RetryCount       int    `json:"retry_count"`
	LastError        string `json:"last_error"`

	// Cursores de sincronização por canal
	EmailSyncedAt *time.Time `json:"email_synced_at"`
	NoteSyncedAt  *time.Time `json:"note_synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewIdentityRecord(cid, hash string) (*IdentityRecord, error) {
	record := &IdentityRecord{
		ID:               uuid.New().String(),
		CID:              cid,
		Hash:             strings.ToLower(strings.TrimSpace(hash)),
		EnrichmentStatus: EnrichmentPending,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *IdentityRecord) Validate() error {
	if r.CID == "" {
		return errors.New("cid is required")
	}
	if len(r.Hash) != 32 {
		return errors.New("hash must be a 32-char hex digest")
	}
	return nil
}

// missingField trata vazio, "null" e o sentinela "N/A" como ausente
func missingField(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, NotAvailable)
}

// NeedsEnrichment decide se o registro volta para a fila de enriquecimento.
// Mesmo com status completed, campos de identidade vazios/sentinela contam
// como pendência (proteção contra escritas parciais).
func (r *IdentityRecord) NeedsEnrichment() bool {
	switch r.EnrichmentStatus {
	case "", EnrichmentPending, EnrichmentFailed:
		return true
	}
	return missingField(r.FirstName) || missingField(r.Email)
}

// IsDueForChannel decide se o registro deve ir para o canal nesta rodada:
// cursor vazio OU o registro mudou depois do último push. Re-rodar o sync
// sem mudança no registro não gera nenhum push novo.
// A query FindDueForChannel do repositório espelha esta regra em SQL.
func (r *IdentityRecord) IsDueForChannel(channel string) bool {
	var cursor *time.Time
	switch channel {
	case ChannelEmail:
		cursor = r.EmailSyncedAt
	case ChannelNote:
		cursor = r.NoteSyncedAt
	default:
		return false
	}
	return cursor == nil || r.UpdatedAt.After(*cursor)
}

// HasEmailProfile: mínimo para o canal de email (email + um campo de nome)
func (r *IdentityRecord) HasEmailProfile() bool {
	if missingField(r.Email) {
		return false
	}
	return !missingField(r.FirstName) || !missingField(r.LastName)
}

// HasPostalProfile: mínimo para o canal de notas (endereço completo + nome)
func (r *IdentityRecord) HasPostalProfile() bool {
	if missingField(r.FirstName) && missingField(r.LastName) {
		return false
	}
	return r.Address.IsComplete()
}
