// Package cep resolves Brazilian postal codes to addresses via the ViaCEP
// public API, used to prefill the registration form.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jurisconnect/console/internal/domain"
	"github.com/jurisconnect/console/internal/validation"
)

var ErrNotFound = errors.New("cep not found")

type viaCEPResponse struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	Erro         bool   `json:"erro"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// Lookup resolves a CEP in any input format. Malformed codes and codes the
// upstream does not know both come back as ErrNotFound.
func (c *Client) Lookup(ctx context.Context, code string) (*domain.Address, error) {
	masked := validation.MaskCEP(code)
	if !validation.CEP(masked) {
		return nil, ErrNotFound
	}
	cleaned := masked[:5] + masked[6:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/ws/%s/json/", c.baseURL, cleaned), nil)
	if err != nil {
		return nil, fmt.Errorf("build cep request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup cep: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup cep: unexpected status %d", resp.StatusCode)
	}
	var payload viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode cep response: %w", err)
	}
	if payload.Erro {
		return nil, ErrNotFound
	}

	return &domain.Address{
		Street:       payload.Street,
		Complement:   payload.Complement,
		Neighborhood: payload.Neighborhood,
		City:         payload.City,
		State:        payload.State,
		ZipCode:      payload.CEP,
	}, nil
}
