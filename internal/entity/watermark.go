package entity

import "time"

// Watermark: último timestamp processado com sucesso por tenant.
// Limita o próximo fetch incremental do pixel.
type Watermark struct {
	CID          string    `json:"cid"`
	LastSyncedAt time.Time `json:"last_synced_at"`
	SyncedCount  int64     `json:"synced_count"`
}

// ShouldAdvance: o watermark só anda para frente, nunca para trás.
// Estritamente maior: eventos fora de ordem não regridem o cursor.
func (w *Watermark) ShouldAdvance(candidate time.Time) bool {
	return candidate.After(w.LastSyncedAt)
}
