package entity

import "sort"

// CandidateEmail é um candidato devolvido pelo resolvedor de identidade.
// Datas em formato ISO (YYYY-MM-DD): comparação lexicográfica funciona.
type CandidateEmail struct {
	Email            string `json:"email"`
	QualityLevel     int    `json:"quality_level"` // 0 = melhor
	RankOrder        int    `json:"rank_order"`
	OptIn            bool   `json:"opt_in"`
	UpdateDate       string `json:"update_date"`
	RegistrationDate string `json:"registration_date"`
}

// candidateLess é a ordem total que decide o "melhor" email.
// Contrato de corretude, não heurística: qualquer mudança aqui troca
// o email que vai para os canais.
//
//	1. quality_level ascendente (0 ganha)
//	2. rank_order ascendente
//	3. update_date descendente (mais recente ganha)
//	4. registration_date ascendente (mais antigo ganha)
//	5. opt_in=true como último desempate
func candidateLess(a, b CandidateEmail) bool {
	if a.QualityLevel != b.QualityLevel {
		return a.QualityLevel < b.QualityLevel
	}
	if a.RankOrder != b.RankOrder {
		return a.RankOrder < b.RankOrder
	}
	if a.UpdateDate != b.UpdateDate {
		return a.UpdateDate > b.UpdateDate
	}
	if a.RegistrationDate != b.RegistrationDate {
		return a.RegistrationDate < b.RegistrationDate
	}
	return a.OptIn && !b.OptIn
}

// BestCandidate devolve o melhor email da lista (ou nil se vazia).
// Não modifica o slice recebido.
func BestCandidate(candidates []CandidateEmail) *CandidateEmail {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]CandidateEmail, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return candidateLess(sorted[i], sorted[j])
	})

	best := sorted[0]
	return &best
}
