package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

// Client envia as vendas novas para o backend de vendas.
type Client struct {
	url   string
	token string
	http  *http.Client
}

func NewClient(url, token string) *Client {
	return &Client{
		url:   url,
		token: token,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PublishConversion faz o POST de uma conversão. Só 200 e 201 contam como sucesso.
func (c *Client) PublishConversion(ctx context.Context, payload entity.ConversionPayload) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao serializar conversão: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("erro ao montar request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro de comunicação com o backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	log.Printf("   ✅ Enviado: %s", payload.LeadName)
	return nil
}

// StatusError: o backend respondeu, mas não aceitou.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend recusou conversão (status %d): %s", e.Code, e.Body)
}
