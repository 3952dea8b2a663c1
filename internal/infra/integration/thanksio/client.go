package thanksio

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

// IdempotencyKey deriva uma chave determinística de (cid, record, dia).
// Reenviar a mesma nota no mesmo dia (retry após timeout, job re-disparado)
// não gera uma segunda carta física.
func IdempotencyKey(cid, recordID string, day time.Time) string {
	raw := fmt.Sprintf("%s|%s|%s", cid, recordID, day.UTC().Format("2006-01-02"))
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// SendNote cria um pedido de nota manuscrita.
func (c *Client) SendNote(ctx context.Context, input NoteInput) error {
	payload := createOrderRequest{
		Recipients:  []Recipient{input.Recipient},
		Message:     input.Message,
		Handwriting: "chloe",

		SenderName:    input.SenderName,
		ReturnStreet:  input.ReturnStreet,
		ReturnCity:    input.ReturnCity,
		ReturnState:   input.ReturnState,
		ReturnZipCode: input.ReturnZipCode,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao marshal nota: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notecard/send", bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", input.IdempotencyKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro request thanks.io: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("erro criar nota (status %d): %s", resp.StatusCode, string(body))
	}

	var order orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return fmt.Errorf("erro decode thanks.io: %w", err)
	}

	log.Printf("✉️ [Thanks.io] Nota criada: order=%s status=%s", order.OrderID, order.Status)
	return nil
}
