// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/servicofacil/prestador-api/internal/domain"
)

// ProviderStore defines all data operations for provider records.
// Implemented by the Supabase adapter (or any other persistence layer).
type ProviderStore interface {
	// FindByCPF returns the provider with the given CPF, or nil when none exists.
	FindByCPF(ctx context.Context, cpf string) (*domain.Provider, error)

	// FindByActivationToken returns the provider holding the given
	// activation token, or nil when no record matches.
	FindByActivationToken(ctx context.Context, token string) (*domain.Provider, error)

	// FindByID returns the provider with the given id, or nil when none exists.
	FindByID(ctx context.Context, id string) (*domain.Provider, error)

	// Save upserts the record. When p.ID is empty a new id is assigned and
	// returned on the persisted copy.
	Save(ctx context.Context, p *domain.Provider) (*domain.Provider, error)

	// ExistsByCnpj reports whether any stored provider already owns the CNPJ.
	ExistsByCnpj(ctx context.Context, cnpj string) (bool, error)

	// Search runs the multi-criteria filtered, paginated lookup and returns
	// the matching providers plus the total match count.
	Search(ctx context.Context, filters domain.SearchFilters, page domain.Pagination) ([]domain.Provider, int, error)
}

// CustomerDirectory resolves pre-existing customer accounts.
type CustomerDirectory interface {
	// FindIDByCPF returns the id of the customer with the given CPF,
	// or "" when no customer matches. Absence is not an error.
	FindIDByCPF(ctx context.Context, cpf string) (string, error)
}

// RegistryClient queries the external CNPJ registry.
type RegistryClient interface {
	// Lookup returns the registry record for a CNPJ, or nil when the
	// registry has no record for it.
	Lookup(ctx context.Context, cnpj string) (*domain.CnpjLookup, error)
}

// EmailSender delivers transactional email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// UserDirectory loads accounts for authentication.
type UserDirectory interface {
	// LoadByLogin returns the user with the given login, or nil when none exists.
	LoadByLogin(ctx context.Context, login string) (*domain.User, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
