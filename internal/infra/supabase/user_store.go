package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/servicofacil/prestador-api/internal/domain"
)

// ============================================================
// UserDirectory implementation — usuarios table via PostgREST
// ============================================================

// userRow maps the usuarios table columns.
type userRow struct {
	ID        string   `json:"id"`
	Login     string   `json:"login"`
	SenhaHash string   `json:"senha_hash"`
	Roles     []string `json:"roles"`
}

// LoadByLogin returns the user with the given login, or nil when none exists.
func (c *Client) LoadByLogin(ctx context.Context, login string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.LoadByLogin")
	defer span.End()

	path := fmt.Sprintf("usuarios?login=eq.%s&limit=1", url.QueryEscape(login))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []userRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode usuarios: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	r := rows[0]
	return &domain.User{
		ID:        r.ID,
		Login:     r.Login,
		SenhaHash: r.SenhaHash,
		Roles:     r.Roles,
	}, nil
}
