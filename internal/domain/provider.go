// Package domain defines the core business entities of the provider
// marketplace. These models are independent of external services and are
// the canonical data structures used throughout the API.
package domain

import "time"

// TipoUsuarioPrestador is the account type assigned to every registered provider.
const TipoUsuarioPrestador = "PRESTADOR"

// SituacaoAtiva is the registry status that marks a CNPJ as active.
const SituacaoAtiva = "ATIVA"

// ServiceDetails is the service profile embedded in a Provider.
type ServiceDetails struct {
	Categoria        string `json:"categoria"`
	DescExperiencia  string `json:"descExperiencia"`
	TempoExperiencia int    `json:"tempoExperiencia"`
	NomeAlternativo  string `json:"nomeAlternativo,omitempty"`
	FormaPagamento   string `json:"formaPagamento"`
	Endereco         string `json:"endereco"`
	CNPJ             string `json:"cnpj,omitempty"`
	CnpjAtivo        bool   `json:"cnpjAtivo"`
	Orcamento        bool   `json:"orcamento"`
}

// Provider is a service-provider account.
//
// Lifecycle: created inactive with a fresh activation token, flipped to
// active when the token is confirmed before its expiry. Re-registration
// with the same CPF overwrites the stored record (upsert by CPF).
type Provider struct {
	ID               string         `json:"id"`
	Nome             string         `json:"nome"`
	CPF              string         `json:"cpf"`
	Email            string         `json:"email"`
	SenhaHash        string         `json:"-"`
	TipoUsuario      string         `json:"tipoUsuario"`
	DadosServico     ServiceDetails `json:"dadosServico"`
	IDCliente        string         `json:"idCliente,omitempty"`
	Ativo            bool           `json:"ativo"`
	TokenConfirmacao string         `json:"-"`
	ExpiracaoToken   *time.Time     `json:"-"`
	Criacao          time.Time      `json:"criacao"`
	Modificacao      time.Time      `json:"modificacao"`
}

// CnpjLookup is the registry's answer for a CNPJ query.
type CnpjLookup struct {
	CNPJ     string `json:"cnpj"`
	Situacao string `json:"situacao"`
	Email    string `json:"email"`
}

// RegisterProviderRequest is the body for POST /v1/prestador.
type RegisterProviderRequest struct {
	Nome         string         `json:"nome"`
	CPF          string         `json:"cpf"`
	Email        string         `json:"email"`
	Senha        string         `json:"senha"`
	IsCliente    bool           `json:"isCliente"`
	DadosServico ServiceDetails `json:"dadosServico"`
}

// RegisterProviderResponse is the body for 201 from POST /v1/prestador.
type RegisterProviderResponse struct {
	ID        string `json:"id"`
	CnpjAtivo bool   `json:"cnpjAtivo"`
}

// ProviderSummary is the search projection of a Provider.
type ProviderSummary struct {
	ID           string         `json:"id"`
	CPF          string         `json:"cpf"`
	Nome         string         `json:"nome"`
	Email        string         `json:"email"`
	DadosServico ServiceDetails `json:"dadosServico"`
	IDCliente    string         `json:"idCliente,omitempty"`
	CnpjAtivo    bool           `json:"cnpjAtivo"`
}

// SearchFilters are the optional criteria for the provider search.
// Zero values mean "no filter".
type SearchFilters struct {
	Nome             string
	FormaPagamento   string
	CNPJ             string
	Categoria        string
	TempoExperiencia int
}

// Pagination selects a page of search results. Page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

// ProviderPage is one page of search results.
type ProviderPage struct {
	Items    []ProviderSummary `json:"items"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Total    int               `json:"total"`
}
