package usecase

// Limite de erros guardados para diagnóstico; o resto vira só contagem
const maxStatErrors = 10

// EnrichStats: agregado de um batch de enriquecimento.
// Nenhum erro individual atravessa a fronteira do batch: tudo vira contagem.
type EnrichStats struct {
	Enriched int      `json:"enriched"`
	Failed   int      `json:"failed"`
	Skipped  int      `json:"skipped"`
	Retried  int      `json:"retried"`
	Errors   []string `json:"errors,omitempty"`
}

func (s *EnrichStats) addError(msg string) {
	if len(s.Errors) < maxStatErrors {
		s.Errors = append(s.Errors, msg)
	}
}

func (s *EnrichStats) merge(other EnrichStats) {
	s.Enriched += other.Enriched
	s.Failed += other.Failed
	s.Skipped += other.Skipped
	s.Retried += other.Retried
	for _, e := range other.Errors {
		s.addError(e)
	}
}

// Processed: total de registros que o batch tocou
func (s EnrichStats) Processed() int {
	return s.Enriched + s.Failed + s.Skipped
}

// PixelSyncStats: agregado de uma rodada de ingestão
type PixelSyncStats struct {
	TenantsProcessed int `json:"tenants_processed"`
	TenantsFailed    int `json:"tenants_failed"`
	RecordsUpserted  int `json:"records_upserted"`
}

// ChannelSyncStats: agregado de uma rodada de push para um canal
type ChannelSyncStats struct {
	TenantsProcessed int `json:"tenants_processed"`
	TenantsFailed    int `json:"tenants_failed"`
	Pushed           int `json:"pushed"`
	Failed           int `json:"failed"`
	Skipped          int `json:"skipped"`
}
