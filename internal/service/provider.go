package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/servicofacil/prestador-api/internal/domain"
	"github.com/servicofacil/prestador-api/internal/infra/observability"
	"github.com/servicofacil/prestador-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

var providerTracer = otel.Tracer("service/provider")

const activationEmailSubject = "ServiçoFácil — confirme seu cadastro de prestador"

// ProviderService orchestrates provider registration, activation,
// self-service updates and search.
type ProviderService struct {
	store         port.ProviderStore
	customers     port.CustomerDirectory
	registry      port.RegistryClient
	mailer        port.EmailSender
	cnpjCache     port.Cache[domain.CnpjLookup]
	metrics       *observability.Metrics
	logger        *zap.Logger
	activationTTL time.Duration
}

// NewProviderService creates a new provider service.
func NewProviderService(
	store port.ProviderStore,
	customers port.CustomerDirectory,
	registry port.RegistryClient,
	mailer port.EmailSender,
	cnpjCache port.Cache[domain.CnpjLookup],
	metrics *observability.Metrics,
	logger *zap.Logger,
	activationTTL time.Duration,
) *ProviderService {
	return &ProviderService{
		store:         store,
		customers:     customers,
		registry:      registry,
		mailer:        mailer,
		cnpjCache:     cnpjCache,
		metrics:       metrics,
		logger:        logger,
		activationTTL: activationTTL,
	}
}

// ============================================================
// Register — POST /v1/prestador
// ============================================================

// Register upserts a provider by CPF. Re-registration overwrites the
// stored record and regenerates the activation token with a fresh
// expiry window, invalidating any prior pending token.
func (s *ProviderService) Register(ctx context.Context, req *domain.RegisterProviderRequest) (*domain.RegisterProviderResponse, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.Register")
	defer span.End()
	span.SetAttributes(attribute.String("cpf", req.CPF))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	existing, err := s.store.FindByCPF(ctx, req.CPF)
	if err != nil {
		s.metrics.IncrRegistration("error")
		return nil, domain.WrapError(domain.CodePersistence, "erro ao consultar prestador", err)
	}

	now := time.Now()
	p := existing
	var ownCnpj string
	if p == nil {
		p = &domain.Provider{Criacao: now}
	} else {
		ownCnpj = existing.DadosServico.CNPJ
	}

	p.Nome = req.Nome
	p.CPF = req.CPF
	p.Email = req.Email
	p.SenhaHash = string(hash)
	p.Modificacao = now
	p.DadosServico = req.DadosServico
	p.DadosServico.CnpjAtivo = false // resolved by the registry below, never taken from the request
	p.TipoUsuario = domain.TipoUsuarioPrestador
	p.TokenConfirmacao = uuid.NewString()
	expiry := now.Add(s.activationTTL)
	p.ExpiracaoToken = &expiry

	cnpj := req.DadosServico.CNPJ
	if cnpj != "" {
		// Uniqueness check must complete before the registry call is launched.
		taken, err := s.store.ExistsByCnpj(ctx, cnpj)
		if err != nil {
			s.metrics.IncrRegistration("error")
			return nil, domain.WrapError(domain.CodePersistence, "erro ao verificar CNPJ", err)
		}
		if taken && ownCnpj != cnpj {
			s.metrics.IncrRegistration("duplicate_cnpj")
			return nil, domain.NewError(domain.CodeDuplicateCnpj, "CNPJ existente na base de dados")
		}
	}

	// Registry lookup and customer link resolve concurrently; both must
	// settle before anything is persisted.
	g, gCtx := errgroup.WithContext(ctx)

	var lookup *domain.CnpjLookup
	if cnpj != "" {
		g.Go(func() error {
			l, err := s.lookupCnpj(gCtx, cnpj)
			if err != nil {
				return domain.WrapError(domain.CodeCnpjNotActive, "erro ao consultar situação do CNPJ", err)
			}
			if l == nil || l.Situacao != domain.SituacaoAtiva {
				return domain.NewError(domain.CodeCnpjNotActive, "CNPJ não encontra-se ativado")
			}
			lookup = l
			return nil
		})
	}

	var customerID string
	if req.IsCliente {
		g.Go(func() error {
			id, err := s.customers.FindIDByCPF(gCtx, req.CPF)
			if err != nil {
				return domain.WrapError(domain.CodeCustomerLink, "erro ao vincular cliente ao prestador", err)
			}
			customerID = id // "" when no customer matches; not an error
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) && derr.Code == domain.CodeCnpjNotActive {
			s.metrics.IncrRegistration("cnpj_not_active")
		} else {
			s.metrics.IncrRegistration("error")
		}
		return nil, err
	}

	p.IDCliente = customerID

	if lookup != nil {
		p.DadosServico.CnpjAtivo = true

		s.logger.Info("enviando e-mail de ativação",
			zap.String("cpf", req.CPF),
			zap.String("email", lookup.Email),
		)
		body := fmt.Sprintf("Seu token de confirmação: %s\n\nO token expira em %d minutos.",
			p.TokenConfirmacao, int(s.activationTTL.Minutes()))
		if err := s.mailer.Send(ctx, lookup.Email, activationEmailSubject, body); err != nil {
			s.metrics.IncrExternalError("email")
			s.metrics.IncrRegistration("error")
			return nil, domain.WrapError(domain.CodeCnpjNotActive, "erro no envio do e-mail de ativação", err)
		}
	}

	saved, err := s.store.Save(ctx, p)
	if err != nil {
		s.metrics.IncrRegistration("error")
		return nil, domain.WrapError(domain.CodePersistence, "erro ao salvar prestador", err)
	}

	s.metrics.IncrRegistration("success")
	s.logger.Info("prestador registrado",
		zap.String("provider_id", saved.ID),
		zap.Bool("cnpj_ativo", saved.DadosServico.CnpjAtivo),
		zap.Bool("cliente_vinculado", saved.IDCliente != ""),
	)

	return &domain.RegisterProviderResponse{
		ID:        saved.ID,
		CnpjAtivo: saved.DadosServico.CnpjAtivo,
	}, nil
}

// lookupCnpj consults the registry through a short-lived cache.
func (s *ProviderService) lookupCnpj(ctx context.Context, cnpj string) (*domain.CnpjLookup, error) {
	if cached, ok := s.cnpjCache.Get(cnpj); ok {
		s.metrics.IncrCacheHit("cnpj")
		return &cached, nil
	}
	s.metrics.IncrCacheMiss("cnpj")

	lookup, err := s.registry.Lookup(ctx, cnpj)
	if err != nil {
		s.metrics.IncrExternalError("registry")
		return nil, err
	}
	if lookup != nil {
		s.cnpjCache.Set(cnpj, *lookup)
	}
	return lookup, nil
}

// ============================================================
// Activate — POST /v1/prestador/ativar
// ============================================================

// Activate flips the token-matched record to active. The expiry check
// runs before any mutation; an expired token leaves the record inactive.
func (s *ProviderService) Activate(ctx context.Context, token string) error {
	ctx, span := providerTracer.Start(ctx, "ProviderService.Activate")
	defer span.End()

	p, err := s.store.FindByActivationToken(ctx, token)
	if err != nil {
		s.metrics.IncrActivation("error")
		return domain.WrapError(domain.CodePersistence, "erro ao consultar token", err)
	}
	if p == nil {
		s.metrics.IncrActivation("token_not_found")
		return domain.NewError(domain.CodeTokenNotFound, "Token não encontrado")
	}

	if p.ExpiracaoToken == nil || p.ExpiracaoToken.Before(time.Now()) {
		s.metrics.IncrActivation("token_expired")
		return domain.NewError(domain.CodeTokenExpired, "Token expirado")
	}

	p.Ativo = true
	if _, err := s.store.Save(ctx, p); err != nil {
		s.metrics.IncrActivation("error")
		return domain.WrapError(domain.CodePersistence, "erro ao ativar prestador", err)
	}

	s.metrics.IncrActivation("success")
	s.logger.Info("prestador ativado", zap.String("provider_id", p.ID))
	return nil
}

// ============================================================
// UpdateServiceDetails — PUT /v1/prestador/dados-servico
// ============================================================

// UpdateServiceDetails overwrites the caller's service-detail sub-fields:
// category, experience description, CNPJ, budget flag, alternate name,
// payment method and address. CnpjAtivo, TempoExperiencia, cpf, email and
// active status are never touched here.
func (s *ProviderService) UpdateServiceDetails(ctx context.Context, providerID string, dados domain.ServiceDetails) (*domain.ServiceDetails, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.UpdateServiceDetails")
	defer span.End()
	span.SetAttributes(attribute.String("provider.id", providerID))

	p, err := s.store.FindByID(ctx, providerID)
	if err != nil {
		return nil, domain.WrapError(domain.CodePersistence, "erro ao consultar prestador", err)
	}
	if p == nil {
		return nil, domain.NewError(domain.CodeProviderNotFound, "Prestador não encontrado")
	}

	p.DadosServico.Categoria = dados.Categoria
	p.DadosServico.DescExperiencia = dados.DescExperiencia
	p.DadosServico.CNPJ = dados.CNPJ
	p.DadosServico.Orcamento = dados.Orcamento
	p.DadosServico.NomeAlternativo = dados.NomeAlternativo
	p.DadosServico.FormaPagamento = dados.FormaPagamento
	p.DadosServico.Endereco = dados.Endereco
	p.Modificacao = time.Now()

	saved, err := s.store.Save(ctx, p)
	if err != nil {
		return nil, domain.WrapError(domain.CodePersistence, "erro ao salvar dados de serviço", err)
	}

	s.logger.Info("dados de serviço atualizados", zap.String("provider_id", p.ID))
	return &saved.DadosServico, nil
}

// ============================================================
// Search — GET /v1/prestador
// ============================================================

// Search delegates the filtered, paginated lookup to the store and
// projects each result into a summary view. Read-only.
func (s *ProviderService) Search(ctx context.Context, filters domain.SearchFilters, page domain.Pagination) (*domain.ProviderPage, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.Search")
	defer span.End()

	providers, total, err := s.store.Search(ctx, filters, page)
	if err != nil {
		return nil, fmt.Errorf("search providers: %w", err)
	}

	items := make([]domain.ProviderSummary, 0, len(providers))
	for _, p := range providers {
		items = append(items, domain.ProviderSummary{
			ID:           p.ID,
			CPF:          p.CPF,
			Nome:         p.Nome,
			Email:        p.Email,
			DadosServico: p.DadosServico,
			IDCliente:    p.IDCliente,
			CnpjAtivo:    p.DadosServico.CnpjAtivo,
		})
	}

	return &domain.ProviderPage{
		Items:    items,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    total,
	}, nil
}
