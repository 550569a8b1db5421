package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/modainteligente/backend/internal/domain"
)

// Client drafts outreach messages through the Generative Language API. The
// returned text is opaque to the rest of the system; on any failure the
// caller gets ErrDraftUnavailable and no substitute text.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a drafting client. An empty apiKey is allowed; every
// draft call will then fail with ErrDraftUnavailable.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 45 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

// request/response shapes of the generateContent endpoint.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// RecoveryMessage drafts a "saudades" WhatsApp message for a lapsed customer.
func (c *Client) RecoveryMessage(ctx context.Context, customer domain.RankedCustomer) (string, error) {
	prompt := fmt.Sprintf(
		"Você é um assistente de vendas da loja de roupas infantis ModaInteligente. "+
			"Crie uma mensagem de WhatsApp curta, amigável e personalizada para a cliente %s. "+
			"Ela não compra há %d dias. O tom deve ser de saudades, sem parecer desesperado por vendas. "+
			"Ofereça ajuda para ver a nova coleção. Use emojis.",
		customer.Name, customer.InactiveDays)

	return c.generate(ctx, prompt)
}

// SniperPitch drafts a restock pitch for an affinity match.
func (c *Client) SniperPitch(ctx context.Context, match domain.AffinityMatch, newProduct string) (string, error) {
	prompt := fmt.Sprintf(
		"Crie uma mensagem curta de venda para WhatsApp para a cliente %s. "+
			"Estamos oferecendo o novo produto: %q. Motivo da recomendação: %s. "+
			"A mensagem deve ser empolgante e mencionar que lembramos dela por causa das compras anteriores.",
		match.CustomerName, newProduct, match.Reason)

	return c.generate(ctx, prompt)
}

// TrendInsights asks for strategic insights over the monthly evolution feed.
func (c *Client) TrendInsights(ctx context.Context, monthly []domain.MonthlySales) (string, error) {
	data, err := json.Marshal(monthly)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDraftUnavailable, err)
	}

	return c.generate(ctx, fmt.Sprintf(
		"Analise os seguintes dados de vendas mensais (JSON): %s\n"+
			"Identifique padrões, sazonalidade ou riscos. Forneça 3 insights estratégicos "+
			"curtos para o dono da loja aumentar o lucro. Responda em Português do Brasil.",
		data))
}

// generate executes one generateContent call and extracts the first
// candidate's text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: no API key configured", domain.ErrDraftUnavailable)
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDraftUnavailable, err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDraftUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDraftUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", domain.ErrDraftUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[GEMINI] draft failed - status %d: %.200s", resp.StatusCode, body)
		return "", fmt.Errorf("%w: status %d", domain.ErrDraftUnavailable, resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", domain.ErrDraftUnavailable, err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidate", domain.ErrDraftUnavailable)
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty draft", domain.ErrDraftUnavailable)
	}

	return text, nil
}
