package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/servicofacil/prestador-api/internal/domain"
	"github.com/servicofacil/prestador-api/internal/infra/observability"
	"github.com/servicofacil/prestador-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Register — POST /v1/prestador
// ============================================================

func registerProviderHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/prestador")
		defer span.End()

		var req domain.RegisterProviderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.CPF == "" {
			writeError(w, http.StatusBadRequest, "cpf é obrigatório")
			return
		}
		if req.Email == "" {
			writeError(w, http.StatusBadRequest, "email é obrigatório")
			return
		}
		if req.Senha == "" {
			writeError(w, http.StatusBadRequest, "senha é obrigatória")
			return
		}

		resp, err := svc.Register(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

// ============================================================
// Activate — POST /v1/prestador/ativar?token=...
// ============================================================

func activateProviderHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/prestador/ativar")
		defer span.End()

		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusBadRequest, "token é obrigatório")
			return
		}

		if err := svc.Activate(ctx, token); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Prestador ativado com sucesso"})
	}
}

// ============================================================
// UpdateServiceDetails — PUT /v1/prestador/dados-servico (protected)
// ============================================================

func updateServiceDetailsHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/prestador/dados-servico")
		defer span.End()

		user := IdentityFromContext(ctx)
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido ou inválido")
			return
		}

		var dados domain.ServiceDetails
		if err := json.NewDecoder(r.Body).Decode(&dados); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, err := svc.UpdateServiceDetails(ctx, user.ID, dados)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

// ============================================================
// Search — GET /v1/prestador
// ============================================================

func searchProvidersHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/prestador")
		defer span.End()

		q := r.URL.Query()
		filters := domain.SearchFilters{
			Nome:           q.Get("nome"),
			FormaPagamento: q.Get("formaPagamento"),
			CNPJ:           q.Get("cnpj"),
			Categoria:      q.Get("categoria"),
		}
		if v := q.Get("tempoExperiencia"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				filters.TempoExperiencia = n
			}
		}

		page, err := svc.Search(ctx, filters, parsePagination(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, page)
	}
}

// ============================================================
// Operational endpoints
// ============================================================

func providerMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.ProviderSnapshot())
	}
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
