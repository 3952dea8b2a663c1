package entity

import (
	"errors"
	"time"
)

// Status possíveis de um tenant (CID)
const (
	TenantActive    = "active"
	TenantInactive  = "inactive"
	TenantSuspended = "suspended"
)

// ChannelSettings: configuração dos canais downstream de um tenant
type ChannelSettings struct {
	SenderName    string  `json:"sender_name"`
	NoteTemplate  string  `json:"note_template"`
	ReturnAddress Address `json:"return_address"`
	MailingListID string  `json:"mailing_list_id"`
}

// Entidade: Tenant
// Todo estado de sincronização e todo registro é particionado por CID.
type Tenant struct {
	CID      string          `json:"cid"`
	Name     string          `json:"name"`
	Status   string          `json:"status"`
	Settings ChannelSettings `json:"settings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Tenant) Validate() error {
	if t.CID == "" {
		return errors.New("cid is required")
	}
	switch t.Status {
	case TenantActive, TenantInactive, TenantSuspended:
		return nil
	}
	return errors.New("invalid tenant status")
}

// IsActive: qualquer estágio do pipeline pula o tenant inteiro quando false.
// O filtro é no nível do tenant, nunca registro a registro.
func (t *Tenant) IsActive() bool {
	return t.Status == TenantActive
}
