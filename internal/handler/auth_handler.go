package handler

import (
	"encoding/json"
	"net/http"

	"github.com/servicofacil/prestador-api/internal/domain"
	"github.com/servicofacil/prestador-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func loginHandler(svc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Login == "" || req.Senha == "" {
			writeError(w, http.StatusBadRequest, "login e senha são obrigatórios")
			return
		}

		resp, err := svc.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
