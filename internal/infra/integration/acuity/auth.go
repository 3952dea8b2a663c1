package acuity

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// credentialStrategy: uma forma de obter um bearer token válido.
// Duas variantes reais: troca de credenciais no endpoint de auth (primária)
// e token assinado localmente (fallback quando o endpoint de auth está fora).
type credentialStrategy interface {
	Name() string
	Fetch(ctx context.Context) (token string, expiresAt time.Time, err error)
}

type tokenExchangeStrategy struct {
	http         *http.Client
	authURL      string
	clientID     string
	clientSecret string
}

func (s *tokenExchangeStrategy) Name() string { return "token_exchange" }

func (s *tokenExchangeStrategy) Fetch(ctx context.Context) (string, time.Time, error) {
	payload := map[string]string{
		"client_id":     s.clientID,
		"client_secret": s.clientSecret,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, bytes.NewBuffer(body))
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("erro request auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody bytes.Buffer
		errorBody.ReadFrom(resp.Body)
		return "", time.Time{}, fmt.Errorf("erro auth acuity: status %d: %s", resp.StatusCode, errorBody.String())
	}

	var data struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", time.Time{}, fmt.Errorf("erro decode auth: %w", err)
	}

	exp := data.ExpiresIn
	if exp == 0 {
		exp = 3600 // default 1h
	}
	return data.Token, time.Now().Add(time.Duration(exp) * time.Second), nil
}

// signedTokenStrategy assina key+timestamp com HMAC-SHA256.
// Não depende do endpoint de auth; validade curta fixa.
type signedTokenStrategy struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
}

func (s *signedTokenStrategy) Name() string { return "signed_token" }

func (s *signedTokenStrategy) Fetch(_ context.Context) (string, time.Time, error) {
	if s.apiKey == "" || s.apiSecret == "" {
		return "", time.Time{}, fmt.Errorf("signed token: credenciais ausentes")
	}

	ttl := s.ttl
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(s.apiSecret))
	mac.Write([]byte(s.apiKey + "." + ts))
	sig := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("%s.%s.%s", s.apiKey, ts, sig), time.Now().Add(ttl), nil
}

// CredentialCache guarda o token corrente e renova quando está perto de
// expirar. A estratégia que funcionou por último vira a preferida: o
// fallback só é tentado de novo quando a preferida falha.
type CredentialCache struct {
	mu         sync.Mutex
	strategies []credentialStrategy
	preferred  int
	token      string
	expiry     time.Time
}

func NewCredentialCache(httpClient *http.Client, authURL, clientID, clientSecret, apiKey, apiSecret string) *CredentialCache {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &CredentialCache{
		strategies: []credentialStrategy{
			&tokenExchangeStrategy{http: httpClient, authURL: authURL, clientID: clientID, clientSecret: clientSecret},
			&signedTokenStrategy{apiKey: apiKey, apiSecret: apiSecret},
		},
	}
}

// Token devolve um bearer válido, renovando com margem de 30s.
func (c *CredentialCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Add(30*time.Second).Before(c.expiry) {
		return c.token, nil
	}

	log.Println("🔄 [Acuity] Renovando credencial...")

	var lastErr error
	for i := 0; i < len(c.strategies); i++ {
		idx := (c.preferred + i) % len(c.strategies)
		strategy := c.strategies[idx]

		token, expiry, err := strategy.Fetch(ctx)
		if err != nil {
			log.Printf("⚠️ [Acuity] Estratégia %s falhou: %v", strategy.Name(), err)
			lastErr = err
			continue
		}

		c.token = token
		c.expiry = expiry
		c.preferred = idx
		log.Printf("✅ [Acuity] Credencial renovada via %s", strategy.Name())
		return c.token, nil
	}

	return "", fmt.Errorf("todas as estratégias de auth falharam: %w", lastErr)
}

// Invalidate descarta o token corrente (usado após um 401).
func (c *CredentialCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiry = time.Time{}
}
