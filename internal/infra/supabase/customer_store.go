package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ============================================================
// CustomerDirectory implementation — clientes table via PostgREST
// ============================================================

// FindIDByCPF returns the id of the customer with the given CPF, or ""
// when no customer matches. Absence is not an error.
func (c *Client) FindIDByCPF(ctx context.Context, cpf string) (string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindCustomerIDByCPF")
	defer span.End()

	path := fmt.Sprintf("clientes?cpf=eq.%s&select=id&limit=1", url.QueryEscape(cpf))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return "", err
	}
	if body == nil || string(body) == "[]" {
		return "", nil
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return "", fmt.Errorf("decode clientes: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].ID, nil
}
