package acuity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	baseURL string
	creds   *CredentialCache
	http    *http.Client
}

func NewClient(baseURL string, creds *CredentialCache) *Client {
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

// EnrichByHash resolve um hash de visitante em identidade.
// A API pode devolver um objeto único ou um array; pegamos o primeiro.
// Hash sem match vem como 404: o chamador decide o que fazer com isso.
func (c *Client) EnrichByHash(ctx context.Context, hash string) (*Identity, error) {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro obtendo credencial: %w", err)
	}

	q := url.Values{}
	q.Set("hash", hash)
	endpoint := fmt.Sprintf("%s/v2/identities?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("falha request acuity: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro lendo resposta acuity: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token pode ter sido revogado no provedor antes de expirar aqui
		c.creds.Invalidate()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	raw, err := decodeOneOrMany(body)
	if err != nil {
		return nil, fmt.Errorf("erro decode acuity: %w", err)
	}
	if raw == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Body: "empty result"}
	}

	return raw.toIdentity(), nil
}

// decodeOneOrMany aceita `{...}` ou `[{...}, ...]`
func decodeOneOrMany(body []byte) (*identityResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var many []identityResponse
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return nil, err
		}
		if len(many) == 0 {
			return nil, nil
		}
		return &many[0], nil
	}

	var one identityResponse
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, err
	}
	return &one, nil
}
