package directory

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"StockBook/api"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Client struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Category string `json:"category"`
	IsActive bool   `json:"is_active"`
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx so lookups can
// run inside or outside a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const clientColumns = `id, code, name, COALESCE(phone,''), COALESCE(address,''), category, is_active`

// LookupClientByCode resolves a client by exact code. Returns nil when no
// client matches.
func LookupClientByCode(ctx context.Context, q rowQuerier, code string) (*Client, error) {
	return scanClient(q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE code = $1`, code))
}

// LookupClientByCodeOrName resolves a client by exact code or name first,
// then falls back to a contains match on either. Returns nil when nothing
// matches.
func LookupClientByCodeOrName(ctx context.Context, q rowQuerier, s string) (*Client, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	c, err := scanClient(q.QueryRow(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE code = $1 OR name = $1
		ORDER BY id LIMIT 1
	`, s))
	if err != nil || c != nil {
		return c, err
	}
	return scanClient(q.QueryRow(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE code ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%'
		ORDER BY id LIMIT 1
	`, s))
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Phone, &c.Address, &c.Category, &c.IsActive)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// NextClientCode generates the next auto client code in the tmpc-000001
// series.
func NextClientCode(ctx context.Context, q rowQuerier) (string, error) {
	var last string
	err := q.QueryRow(ctx, `
		SELECT code FROM clients WHERE code LIKE 'tmpc-%' ORDER BY code DESC LIMIT 1
	`).Scan(&last)
	if err == pgx.ErrNoRows {
		return "tmpc-000001", nil
	}
	if err != nil {
		return "", err
	}
	num := 0
	if parts := strings.SplitN(last, "-", 2); len(parts) == 2 {
		fmt.Sscanf(parts[1], "%d", &num)
	}
	return fmt.Sprintf("tmpc-%06d", num+1), nil
}

// EnsureClient finds a client by name (case-insensitive) or code, creating
// one with an auto-generated code when absent. Longer imported names replace
// shorter stored ones, matching the import convention.
func EnsureClient(ctx context.Context, tx pgx.Tx, name, code string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	c, err := scanClient(tx.QueryRow(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE UPPER(name) = UPPER($1) OR ($2 <> '' AND code = $2)
		ORDER BY id LIMIT 1
	`, name, code))
	if err != nil {
		return nil, err
	}
	if c != nil {
		if len(name) > len(c.Name) {
			if _, err := tx.Exec(ctx, `UPDATE clients SET name = $1 WHERE id = $2`, name, c.ID); err != nil {
				return nil, err
			}
			c.Name = name
		}
		return c, nil
	}

	if code == "" || strings.EqualFold(code, "nan") {
		code, err = NextClientCode(ctx, tx)
		if err != nil {
			return nil, err
		}
	}
	c = &Client{Code: code, Name: name, Category: "General", IsActive: true}
	err = tx.QueryRow(ctx, `
		INSERT INTO clients (code, name) VALUES ($1, $2) RETURNING id
	`, code, name).Scan(&c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListClientsHandler returns the client directory ordered by name.
func ListClientsHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := pgxPool.Query(r.Context(), `
			SELECT `+clientColumns+` FROM clients ORDER BY name ASC
		`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to query clients: "+err.Error())
			return
		}
		defer rows.Close()
		clients := make([]Client, 0)
		for rows.Next() {
			var c Client
			if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Phone, &c.Address, &c.Category, &c.IsActive); err == nil {
				clients = append(clients, c)
			}
		}
		api.RespondWithPayload(w, true, "", clients)
	}
}

// LookupClientHandler resolves ?q= to a single client, exact first then fuzzy.
func LookupClientHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		c, err := LookupClientByCodeOrName(r.Context(), pgxPool, q)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Lookup failed: "+err.Error())
			return
		}
		if c == nil {
			api.RespondWithPayload(w, false, "No client matched", nil)
			return
		}
		api.RespondWithPayload(w, true, "", c)
	}
}
