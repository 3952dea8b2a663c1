package pixel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyArray(t *testing.T) {
	body := []byte(`[{"hash":"5d41402abc4b2a76b9719d911017c592","url":"https://example.com"},{"hash":"6d41402abc4b2a76b9719d911017c593"}]`)

	result := Classify("application/json", body)

	assert.Equal(t, KindMany, result.Kind)
	assert.Len(t, result.Events, 2)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", result.Events[0].Hash)
}

func TestClassifySingleObject(t *testing.T) {
	body := []byte(`{"hash":"5d41402abc4b2a76b9719d911017c592","session":"sess-9"}`)

	result := Classify("application/json", body)

	assert.Equal(t, KindSingle, result.Kind)
	assert.Len(t, result.Events, 1)
	assert.Equal(t, "sess-9", result.Events[0].Session)
}

func TestClassifyEmptyVariants(t *testing.T) {
	for _, body := range [][]byte{nil, []byte(""), []byte("  "), []byte("[]"), []byte("null")} {
		result := Classify("application/json", body)
		assert.Equal(t, KindEmpty, result.Kind, "body %q", body)
	}
}

// O endpoint legado devolve um GIF 1x1 no lugar de JSON: isso é
// malformado (e o client trata como vazio), nunca erro de parse
func TestClassifyImagePayload(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00")
	assert.Equal(t, KindMalformed, Classify("image/gif", gif).Kind)

	// mesmo sem content-type de imagem, os magic bytes decidem
	assert.Equal(t, KindMalformed, Classify("application/json", gif).Kind)

	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	assert.Equal(t, KindMalformed, Classify("application/octet-stream", png).Kind)
}

func TestClassifyBrokenJSON(t *testing.T) {
	assert.Equal(t, KindMalformed, Classify("application/json", []byte(`[{"hash":`)).Kind)
	assert.Equal(t, KindMalformed, Classify("application/json", []byte(`<html>error</html>`)).Kind)
}

// O pixel legado manda o timestamp como número JSON: o batch inteiro
// precisa decodificar, não virar malformado
func TestClassifyNumericTimestamp(t *testing.T) {
	body := []byte(`[{"hash":"5d41402abc4b2a76b9719d911017c592","timestamp":1790762400}]`)

	result := Classify("application/json", body)

	assert.Equal(t, KindMany, result.Kind)
	assert.Len(t, result.Events, 1)

	ts, ok := result.Events[0].CapturedAt()
	assert.True(t, ok)
	assert.Equal(t, time.Unix(1790762400, 0).UTC(), ts)
}

// Batch misto (ISO e epoch no mesmo array) decodifica inteiro
func TestClassifyMixedTimestampForms(t *testing.T) {
	body := []byte(`[
		{"hash":"5d41402abc4b2a76b9719d911017c592","timestamp":"2026-08-30T10:00:00Z"},
		{"hash":"6d41402abc4b2a76b9719d911017c593","timestamp":1790762400}
	]`)

	result := Classify("application/json", body)

	assert.Equal(t, KindMany, result.Kind)
	assert.Len(t, result.Events, 2)

	first, ok := result.Events[0].CapturedAt()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), first)

	second, ok := result.Events[1].CapturedAt()
	assert.True(t, ok)
	assert.Equal(t, time.Unix(1790762400, 0).UTC(), second)
}

func TestCapturedAtParsesBothFormats(t *testing.T) {
	iso := VisitorEvent{Timestamp: "2026-08-30T10:00:00Z"}
	ts, ok := iso.CapturedAt()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), ts)

	epoch := VisitorEvent{Timestamp: "1790762400"}
	ts, ok = epoch.CapturedAt()
	assert.True(t, ok)
	assert.Equal(t, time.Unix(1790762400, 0).UTC(), ts)

	blank := VisitorEvent{Timestamp: ""}
	_, ok = blank.CapturedAt()
	assert.False(t, ok)
}
