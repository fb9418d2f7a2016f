// Package client provides HTTP clients for external collaborators.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/servicofacil/prestador-api/internal/domain"
	"github.com/servicofacil/prestador-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// RegistryClient queries the CNPJ registry for the situação cadastral
// of a company. An unknown CNPJ is reported as absent (nil), not an error.
type RegistryClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
}

// NewRegistryClient creates a RegistryClient.
func NewRegistryClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *RegistryClient {
	return &RegistryClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
	}
}

// registryResponse maps the registry payload to our domain.
type registryResponse struct {
	CNPJ     string `json:"cnpj"`
	Situacao string `json:"situacao"`
	Email    string `json:"email"`
}

// Lookup fetches the registry record for a CNPJ with retry, circuit
// breaker, and tracing. Returns nil when the registry has no record.
func (c *RegistryClient) Lookup(ctx context.Context, cnpj string) (*domain.CnpjLookup, error) {
	ctx, span := tracer.Start(ctx, "RegistryClient.Lookup")
	defer span.End()
	span.SetAttributes(attribute.String("cnpj", cnpj))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: "registry lookup"}
	}
	defer c.bulkhead.Release()

	var result *domain.CnpjLookup

	err := resilience.Execute(ctx, c.cb, c.cfg, "registry", func() error {
		url := fmt.Sprintf("%s/cnpj/%s", c.baseURL, cnpj)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			result = nil // unknown CNPJ, not a transport failure
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("registry returned status %d", resp.StatusCode)
		}

		var body registryResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode registry response: %w", err)
		}
		result = &domain.CnpjLookup{
			CNPJ:     body.CNPJ,
			Situacao: body.Situacao,
			Email:    body.Email,
		}
		return nil
	})

	if err != nil {
		var open *domain.ErrCircuitOpen
		var timeout *domain.ErrTimeout
		if errors.As(err, &open) || errors.As(err, &timeout) {
			return nil, err
		}
		return nil, &domain.ErrExternalService{Service: "registry", Err: err}
	}

	return result, nil
}
