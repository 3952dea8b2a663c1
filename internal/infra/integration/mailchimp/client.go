package mailchimp

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient monta a URL do datacenter a partir do sufixo da api key
// (formato "xxxx-us21"), como a API do Mailchimp exige.
func NewClient(apiKey string) *Client {
	dc := "us1"
	if idx := strings.LastIndex(apiKey, "-"); idx >= 0 && idx < len(apiKey)-1 {
		dc = apiKey[idx+1:]
	}
	return &Client{
		baseURL: fmt.Sprintf("https://%s.api.mailchimp.com/3.0", dc),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SubscriberHash: MD5 do email minúsculo: a chave estável do upsert.
// É isso que torna o push idempotente: repetir o PUT não duplica o membro.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// UpsertContact faz PUT em /lists/{id}/members/{hash}: cria se não existe,
// atualiza se existe.
func (c *Client) UpsertContact(ctx context.Context, input UpsertContactInput) error {
	payload := upsertMemberRequest{
		EmailAddress: input.Email,
		StatusIfNew:  "subscribed",
		MergeFields: map[string]string{
			"FNAME": input.FirstName,
			"LNAME": input.LastName,
		},
		Tags: []string{"visitoriq", "cid:" + input.CID},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao marshal contato: %w", err)
	}

	endpoint := fmt.Sprintf("%s/lists/%s/members/%s", c.baseURL, input.ListID, SubscriberHash(input.Email))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.SetBasicAuth("anystring", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro request mailchimp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		var apiErr errorResponse
		json.Unmarshal(body, &apiErr)
		if apiErr.Detail != "" {
			return fmt.Errorf("mailchimp rejeitou (status %d): %s", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("mailchimp rejeitou (status %d)", resp.StatusCode)
	}

	var member memberResponse
	if err := json.NewDecoder(resp.Body).Decode(&member); err != nil {
		return fmt.Errorf("erro decode mailchimp: %w", err)
	}

	return nil
}
