package mailchimp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A chave do membro é MD5 do email minúsculo: maiúsculas e espaços
// não podem gerar contatos duplicados
func TestSubscriberHashNormalizesEmail(t *testing.T) {
	base := SubscriberHash("maria@example.com")

	assert.Equal(t, base, SubscriberHash("MARIA@EXAMPLE.COM"))
	assert.Equal(t, base, SubscriberHash("  maria@example.com  "))
	assert.Len(t, base, 32)
}

func TestSubscriberHashKnownValue(t *testing.T) {
	// md5("hello"), valor de referência
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", SubscriberHash("hello"))
}

func TestNewClientDerivesDatacenter(t *testing.T) {
	client := NewClient("abc123-us14")
	assert.Contains(t, client.baseURL, "us14")
}
