package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/servicofacil/prestador-api/internal/domain"
	"github.com/servicofacil/prestador-api/internal/infra/resilience"
)

// ============================================================
// ProviderStore implementation — prestadores table via PostgREST
// ============================================================

// providerRow maps the prestadores table columns to our domain.
type providerRow struct {
	ID               string     `json:"id,omitempty"`
	Nome             string     `json:"nome"`
	CPF              string     `json:"cpf"`
	Email            string     `json:"email"`
	SenhaHash        string     `json:"senha_hash"`
	TipoUsuario      string     `json:"tipo_usuario"`
	IDCliente        *string    `json:"id_cliente"`
	Ativo            bool       `json:"ativo"`
	TokenConfirmacao *string    `json:"token_confirmacao"`
	ExpiracaoToken   *time.Time `json:"expiracao_token"`
	Categoria        string     `json:"categoria"`
	DescExperiencia  string     `json:"desc_experiencia"`
	TempoExperiencia int        `json:"tempo_experiencia"`
	NomeAlternativo  *string    `json:"nome_alternativo"`
	FormaPagamento   string     `json:"forma_pagamento"`
	Endereco         string     `json:"endereco"`
	CNPJ             *string    `json:"cnpj"`
	CnpjAtivo        bool       `json:"cnpj_ativo"`
	Orcamento        bool       `json:"orcamento"`
	Criacao          time.Time  `json:"criacao"`
	Modificacao      time.Time  `json:"modificacao"`
}

func rowToProvider(r providerRow) *domain.Provider {
	p := &domain.Provider{
		ID:          r.ID,
		Nome:        r.Nome,
		CPF:         r.CPF,
		Email:       r.Email,
		SenhaHash:   r.SenhaHash,
		TipoUsuario: r.TipoUsuario,
		Ativo:       r.Ativo,
		Criacao:     r.Criacao,
		Modificacao: r.Modificacao,
		DadosServico: domain.ServiceDetails{
			Categoria:        r.Categoria,
			DescExperiencia:  r.DescExperiencia,
			TempoExperiencia: r.TempoExperiencia,
			FormaPagamento:   r.FormaPagamento,
			Endereco:         r.Endereco,
			CnpjAtivo:        r.CnpjAtivo,
			Orcamento:        r.Orcamento,
		},
	}
	if r.IDCliente != nil {
		p.IDCliente = *r.IDCliente
	}
	if r.TokenConfirmacao != nil {
		p.TokenConfirmacao = *r.TokenConfirmacao
	}
	p.ExpiracaoToken = r.ExpiracaoToken
	if r.NomeAlternativo != nil {
		p.DadosServico.NomeAlternativo = *r.NomeAlternativo
	}
	if r.CNPJ != nil {
		p.DadosServico.CNPJ = *r.CNPJ
	}
	return p
}

func providerToRow(p *domain.Provider) providerRow {
	r := providerRow{
		ID:               p.ID,
		Nome:             p.Nome,
		CPF:              p.CPF,
		Email:            p.Email,
		SenhaHash:        p.SenhaHash,
		TipoUsuario:      p.TipoUsuario,
		Ativo:            p.Ativo,
		ExpiracaoToken:   p.ExpiracaoToken,
		Categoria:        p.DadosServico.Categoria,
		DescExperiencia:  p.DadosServico.DescExperiencia,
		TempoExperiencia: p.DadosServico.TempoExperiencia,
		FormaPagamento:   p.DadosServico.FormaPagamento,
		Endereco:         p.DadosServico.Endereco,
		CnpjAtivo:        p.DadosServico.CnpjAtivo,
		Orcamento:        p.DadosServico.Orcamento,
		Criacao:          p.Criacao,
		Modificacao:      p.Modificacao,
	}
	if p.IDCliente != "" {
		r.IDCliente = &p.IDCliente
	}
	if p.TokenConfirmacao != "" {
		r.TokenConfirmacao = &p.TokenConfirmacao
	}
	if p.DadosServico.NomeAlternativo != "" {
		r.NomeAlternativo = &p.DadosServico.NomeAlternativo
	}
	if p.DadosServico.CNPJ != "" {
		r.CNPJ = &p.DadosServico.CNPJ
	}
	return r
}

func (c *Client) findOneProvider(ctx context.Context, path string) (*domain.Provider, error) {
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []providerRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode prestadores: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToProvider(rows[0]), nil
}

// FindByCPF returns the provider with the given CPF, or nil.
func (c *Client) FindByCPF(ctx context.Context, cpf string) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindByCPF")
	defer span.End()

	path := fmt.Sprintf("prestadores?cpf=eq.%s&limit=1", url.QueryEscape(cpf))
	return c.findOneProvider(ctx, path)
}

// FindByActivationToken returns the provider holding the token, or nil.
func (c *Client) FindByActivationToken(ctx context.Context, token string) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindByActivationToken")
	defer span.End()

	path := fmt.Sprintf("prestadores?token_confirmacao=eq.%s&limit=1", url.QueryEscape(token))
	return c.findOneProvider(ctx, path)
}

// FindByID returns the provider with the given id, or nil.
func (c *Client) FindByID(ctx context.Context, id string) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindByID")
	defer span.End()

	path := fmt.Sprintf("prestadores?id=eq.%s&limit=1", url.QueryEscape(id))
	return c.findOneProvider(ctx, path)
}

// Save upserts a provider record. New records (empty id) are inserted and
// the database-assigned id is returned on the persisted copy.
func (c *Client) Save(ctx context.Context, p *domain.Provider) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SaveProvider")
	defer span.End()

	row := providerToRow(p)

	if p.ID == "" {
		body, err := c.doPost(ctx, "prestadores", row)
		if err != nil {
			return nil, err
		}
		var rows []providerRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode inserted prestador: %w", err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("insert prestador returned no representation")
		}
		return rowToProvider(rows[0]), nil
	}

	path := fmt.Sprintf("prestadores?id=eq.%s", url.QueryEscape(p.ID))
	if err := c.doPatch(ctx, path, row); err != nil {
		return nil, err
	}
	saved := *p
	return &saved, nil
}

// ExistsByCnpj reports whether any stored provider already owns the CNPJ.
func (c *Client) ExistsByCnpj(ctx context.Context, cnpj string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ExistsByCnpj")
	defer span.End()

	path := fmt.Sprintf("prestadores?cnpj=eq.%s&select=id&limit=1", url.QueryEscape(cnpj))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return false, err
	}
	return body != nil && strings.TrimSpace(string(body)) != "[]", nil
}

// Search runs the multi-criteria filtered, paginated lookup.
// Zero-valued filters are omitted from the query.
func (c *Client) Search(ctx context.Context, filters domain.SearchFilters, page domain.Pagination) ([]domain.Provider, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SearchProviders")
	defer span.End()

	conditions := []string{}
	if filters.Nome != "" {
		conditions = append(conditions, fmt.Sprintf("nome=ilike.%s", url.QueryEscape("*"+filters.Nome+"*")))
	}
	if filters.FormaPagamento != "" {
		conditions = append(conditions, fmt.Sprintf("forma_pagamento=eq.%s", url.QueryEscape(filters.FormaPagamento)))
	}
	if filters.CNPJ != "" {
		conditions = append(conditions, fmt.Sprintf("cnpj=eq.%s", url.QueryEscape(filters.CNPJ)))
	}
	if filters.Categoria != "" {
		conditions = append(conditions, fmt.Sprintf("categoria=eq.%s", url.QueryEscape(filters.Categoria)))
	}
	if filters.TempoExperiencia > 0 {
		conditions = append(conditions, fmt.Sprintf("tempo_experiencia=gte.%d", filters.TempoExperiencia))
	}

	offset := (page.Page - 1) * page.PageSize
	conditions = append(conditions,
		"order=criacao.desc",
		fmt.Sprintf("limit=%d", page.PageSize),
		fmt.Sprintf("offset=%d", offset),
	)
	path := "prestadores?" + strings.Join(conditions, "&")

	var providers []domain.Provider
	var total int

	err := resilience.Execute(ctx, c.cb, c.cfg, "supabase/prestadores", func() error {
		body, count, err := c.doGetWithCount(ctx, path)
		if err != nil {
			return err
		}
		total = count

		providers = providers[:0]
		if body == nil || string(body) == "[]" {
			return nil
		}

		var rows []providerRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode prestadores: %w", err)
		}
		for _, r := range rows {
			providers = append(providers, *rowToProvider(r))
		}
		return nil
	})

	if err != nil {
		var open *domain.ErrCircuitOpen
		var timeout *domain.ErrTimeout
		if errors.As(err, &open) || errors.As(err, &timeout) {
			return nil, 0, err
		}
		return nil, 0, &domain.ErrExternalService{Service: "supabase/prestadores", Err: err}
	}

	return providers, total, nil
}
