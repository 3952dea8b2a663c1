package pixel

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
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
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchEvents busca os hits do pixel de um tenant desde o watermark.
// since == nil significa full sync (primeiro sync do tenant): o parâmetro
// "since" fica de fora da query.
func (c *Client) FetchEvents(ctx context.Context, cid string, since *time.Time) ([]VisitorEvent, error) {
	q := url.Values{}
	q.Set("cid", cid)
	if since != nil {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}

	endpoint := fmt.Sprintf("%s/v1/events?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro request pixel: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro lendo resposta pixel: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("erro pixel (status %d): %s", resp.StatusCode, string(body))
	}

	result := Classify(resp.Header.Get("Content-Type"), body)
	if result.Kind == KindMalformed {
		// Payload placeholder (gif 1x1) ou shape inesperado: trata como vazio
		log.Printf("⚠️ [Pixel] Resposta malformada para cid=%s, tratando como zero eventos", cid)
		return nil, nil
	}

	return result.Events, nil
}
