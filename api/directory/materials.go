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

type Material struct {
	ID        int64   `json:"id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
}

// LookupMaterialByName resolves a material by exact name. Returns nil when
// no material matches.
func LookupMaterialByName(ctx context.Context, q rowQuerier, name string) (*Material, error) {
	var m Material
	err := q.QueryRow(ctx, `
		SELECT id, code, name, unit_price FROM materials WHERE name = $1
	`, name).Scan(&m.ID, &m.Code, &m.Name, &m.UnitPrice)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// NextMaterialCode generates the next auto material code in the tmpm-00001
// series.
func NextMaterialCode(ctx context.Context, q rowQuerier) (string, error) {
	var last string
	err := q.QueryRow(ctx, `
		SELECT code FROM materials WHERE code LIKE 'tmpm-%' ORDER BY code DESC LIMIT 1
	`).Scan(&last)
	if err == pgx.ErrNoRows {
		return "tmpm-00001", nil
	}
	if err != nil {
		return "", err
	}
	num := 0
	if parts := strings.SplitN(last, "-", 2); len(parts) == 2 {
		fmt.Sscanf(parts[1], "%d", &num)
	}
	return fmt.Sprintf("tmpm-%05d", num+1), nil
}

// EnsureMaterial finds a material by name, creating one with an
// auto-generated code when absent.
func EnsureMaterial(ctx context.Context, tx pgx.Tx, name string) (*Material, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "nan") {
		return nil, nil
	}
	m, err := LookupMaterialByName(ctx, tx, name)
	if err != nil || m != nil {
		return m, err
	}
	code, err := NextMaterialCode(ctx, tx)
	if err != nil {
		return nil, err
	}
	m = &Material{Code: code, Name: name}
	err = tx.QueryRow(ctx, `
		INSERT INTO materials (code, name) VALUES ($1, $2) RETURNING id
	`, code, name).Scan(&m.ID)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMaterialsHandler returns the material directory ordered by name.
func ListMaterialsHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := pgxPool.Query(r.Context(), `
			SELECT id, code, name, unit_price FROM materials ORDER BY name ASC
		`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to query materials: "+err.Error())
			return
		}
		defer rows.Close()
		materials := make([]Material, 0)
		for rows.Next() {
			var m Material
			if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.UnitPrice); err == nil {
				materials = append(materials, m)
			}
		}
		api.RespondWithPayload(w, true, "", materials)
	}
}
