package pixel

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// EventTimestamp aceita as duas formas que o pixel manda no fio:
// string ISO (versão atual) e NÚMERO epoch (versão legada). Um campo
// string puro rejeitaria o payload numérico e derrubaria o batch inteiro.
type EventTimestamp string

func (t *EventTimestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = EventTimestamp(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = EventTimestamp(n.String())
	return nil
}

func (t EventTimestamp) String() string { return string(t) }

// VisitorEvent: um hit do pixel de captura.
type VisitorEvent struct {
	Hash      string         `json:"hash"`
	URL       string         `json:"url"`
	Timestamp EventTimestamp `json:"timestamp"`
	Var       string         `json:"var"`
	Session   string         `json:"session"`
}

// CapturedAt interpreta o timestamp do evento (epoch ou RFC3339).
func (e VisitorEvent) CapturedAt() (time.Time, bool) {
	raw := strings.TrimSpace(e.Timestamp.String())
	if raw == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, true
	}
	if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil && epoch > 0 {
		return time.Unix(epoch, 0).UTC(), true
	}
	return time.Time{}, false
}

// Kind do payload que o endpoint do pixel devolveu
type ResponseKind int

const (
	KindEmpty ResponseKind = iota
	KindSingle
	KindMany
	KindMalformed
)

func (k ResponseKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindSingle:
		return "single"
	case KindMany:
		return "many"
	}
	return "malformed"
}

type Classification struct {
	Kind   ResponseKind
	Events []VisitorEvent
}

// gif de 1x1 que o endpoint legado devolve no lugar de JSON
var gifMagic = []byte("GIF8")

// Classify decide o formato da resposta do pixel sem depender da rede.
// O endpoint legado responde um GIF 1x1 quando não tem dado estruturado;
// isso vira resultado vazio, nunca erro.
func Classify(contentType string, body []byte) Classification {
	trimmed := bytes.TrimSpace(body)

	if strings.HasPrefix(contentType, "image/") || bytes.HasPrefix(trimmed, gifMagic) || bytes.HasPrefix(trimmed, []byte{0x89, 'P', 'N', 'G'}) {
		return Classification{Kind: KindMalformed}
	}

	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("[]")) || bytes.Equal(trimmed, []byte("null")) {
		return Classification{Kind: KindEmpty}
	}

	switch trimmed[0] {
	case '[':
		var events []VisitorEvent
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return Classification{Kind: KindMalformed}
		}
		if len(events) == 0 {
			return Classification{Kind: KindEmpty}
		}
		return Classification{Kind: KindMany, Events: events}

	case '{':
		var event VisitorEvent
		if err := json.Unmarshal(trimmed, &event); err != nil {
			return Classification{Kind: KindMalformed}
		}
		return Classification{Kind: KindSingle, Events: []VisitorEvent{event}}
	}

	return Classification{Kind: KindMalformed}
}
