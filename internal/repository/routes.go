package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nexusai/console/pkg/models"
)

const routeColumns = "id, tenant_id, name, url, method, body_template, group_name, is_active"

func scanRoute(row pgx.Row) (*models.OutputRoute, error) {
	var (
		route  models.OutputRoute
		method string
		group  *string
	)
	if err := row.Scan(&route.ID, &route.TenantID, &route.Name, &route.URL,
		&method, &route.BodyTemplate, &group, &route.IsActive); err != nil {
		return nil, err
	}
	route.Method = models.HTTPMethod(method)
	route.Group = orEmpty(group)
	route.Headers = []*models.Header{}
	route.History = []*models.OutputExecution{}
	return &route, nil
}

// ListRoutes returns a tenant's output routes ordered by name, each
// assembled with its headers and its bounded execution history
// (most-recent-first).
func (r *Postgres) ListRoutes(ctx context.Context, tenantID string) ([]*models.OutputRoute, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+routeColumns+" FROM output_routes WHERE tenant_id = $1 ORDER BY name", tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	defer rows.Close()

	var routes []*models.OutputRoute
	byID := map[string]*models.OutputRoute{}
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, route)
		byID[route.ID] = route
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return routes, nil
	}

	ids := make([]string, 0, len(routes))
	for _, route := range routes {
		ids = append(ids, route.ID)
	}

	headerRows, err := r.db.Query(ctx,
		"SELECT id, route_id, key, value FROM output_route_headers WHERE route_id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list route headers: %w", err)
	}
	defer headerRows.Close()
	for headerRows.Next() {
		var (
			header  models.Header
			routeID string
		)
		if err := headerRows.Scan(&header.ID, &routeID, &header.Key, &header.Value); err != nil {
			return nil, fmt.Errorf("failed to scan route header: %w", err)
		}
		if route, ok := byID[routeID]; ok {
			route.Headers = append(route.Headers, &header)
		}
	}
	if err := headerRows.Err(); err != nil {
		return nil, err
	}

	execRows, err := r.db.Query(ctx,
		`SELECT id, route_id, timestamp, status, payload, response, duration
		 FROM output_executions
		 WHERE route_id = ANY($1)
		 ORDER BY timestamp DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list route executions: %w", err)
	}
	defer execRows.Close()
	for execRows.Next() {
		exec, err := scanExecution(execRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		route, ok := byID[exec.RouteID]
		if ok && len(route.History) < models.ExecutionHistoryCap {
			route.History = append(route.History, exec)
		}
	}
	return routes, execRows.Err()
}

func scanExecution(row pgx.Row) (*models.OutputExecution, error) {
	var (
		exec              models.OutputExecution
		ts                time.Time
		payload, response []byte
	)
	if err := row.Scan(&exec.ID, &exec.RouteID, &ts, &exec.Status, &payload, &response, &exec.Duration); err != nil {
		return nil, err
	}
	exec.Timestamp = formatTimestamp(ts)
	if payload != nil {
		exec.Payload = jsonMap(payload)
	}
	if response != nil {
		exec.Response = jsonMap(response)
	}
	return &exec, nil
}

// CreateRoute inserts a route and its headers, returning the canonical
// assembled row with an empty history.
func (r *Postgres) CreateRoute(ctx context.Context, route *models.OutputRoute) (*models.OutputRoute, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin route create: %w", err)
	}
	defer tx.Rollback(ctx)

	method := route.Method
	if method == "" {
		method = models.MethodPost
	}
	created, err := scanRoute(tx.QueryRow(ctx,
		`INSERT INTO output_routes (tenant_id, name, url, method, body_template, group_name, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+routeColumns,
		route.TenantID, route.Name, route.URL, string(method),
		route.BodyTemplate, nullable(route.Group), route.IsActive))
	if err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	created.Headers, err = insertHeaders(ctx, tx, created.ID, route.Headers)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit route create: %w", err)
	}
	return created, nil
}

// UpdateRoute applies a partial update. A nil Headers patch preserves the
// stored headers; a non-nil one fully replaces them. History is not part
// of the update payload and is left untouched either way.
func (r *Postgres) UpdateRoute(ctx context.Context, id string, patch RoutePatch) (*models.OutputRoute, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin route update: %w", err)
	}
	defer tx.Rollback(ctx)

	var method *string
	if patch.Method != nil {
		s := string(*patch.Method)
		method = &s
	}

	updated, err := scanRoute(tx.QueryRow(ctx,
		`UPDATE output_routes SET
			name          = COALESCE($2, name),
			url           = COALESCE($3, url),
			method        = COALESCE($4, method),
			body_template = COALESCE($5, body_template),
			group_name    = COALESCE($6, group_name),
			is_active     = COALESCE($7, is_active)
		 WHERE id = $1
		 RETURNING `+routeColumns,
		id, patch.Name, patch.URL, method, patch.BodyTemplate, patch.Group, patch.IsActive))
	if err != nil {
		return nil, fmt.Errorf("failed to update route: %w", err)
	}

	if patch.Headers != nil {
		if _, err := tx.Exec(ctx, "DELETE FROM output_route_headers WHERE route_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to replace route headers: %w", err)
		}
		updated.Headers, err = insertHeaders(ctx, tx, id, patch.Headers)
		if err != nil {
			return nil, err
		}
	} else {
		updated.Headers, err = listHeadersTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit route update: %w", err)
	}
	return updated, nil
}

func insertHeaders(ctx context.Context, tx pgx.Tx, routeID string, headers []*models.Header) ([]*models.Header, error) {
	out := make([]*models.Header, 0, len(headers))
	for _, h := range headers {
		var created models.Header
		err := tx.QueryRow(ctx,
			"INSERT INTO output_route_headers (route_id, key, value) VALUES ($1, $2, $3) RETURNING id, key, value",
			routeID, h.Key, h.Value).Scan(&created.ID, &created.Key, &created.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to insert route header: %w", err)
		}
		out = append(out, &created)
	}
	return out, nil
}

func listHeadersTx(ctx context.Context, tx pgx.Tx, routeID string) ([]*models.Header, error) {
	rows, err := tx.Query(ctx,
		"SELECT id, key, value FROM output_route_headers WHERE route_id = $1", routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list route headers: %w", err)
	}
	defer rows.Close()

	headers := []*models.Header{}
	for rows.Next() {
		var h models.Header
		if err := rows.Scan(&h.ID, &h.Key, &h.Value); err != nil {
			return nil, fmt.Errorf("failed to scan route header: %w", err)
		}
		headers = append(headers, &h)
	}
	return headers, rows.Err()
}

// DeleteRoute removes a route; headers and execution history cascade.
func (r *Postgres) DeleteRoute(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM output_routes WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}
	return nil
}

// AppendExecution records a send through a route and trims the stored
// history to the newest ExecutionHistoryCap entries in the same
// transaction, so the bound holds at write time.
func (r *Postgres) AppendExecution(ctx context.Context, routeID string, exec *models.OutputExecution) (*models.OutputExecution, error) {
	payload, err := jsonArg(exec.Payload)
	if err != nil {
		return nil, err
	}
	response, err := jsonArg(exec.Response)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin execution append: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := scanExecution(tx.QueryRow(ctx,
		`INSERT INTO output_executions (route_id, status, payload, response, duration)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, route_id, timestamp, status, payload, response, duration`,
		routeID, exec.Status, payload, response, exec.Duration))
	if err != nil {
		return nil, fmt.Errorf("failed to append execution: %w", err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM output_executions
		 WHERE route_id = $1 AND id NOT IN (
			SELECT id FROM output_executions
			WHERE route_id = $1
			ORDER BY timestamp DESC
			LIMIT $2
		 )`, routeID, models.ExecutionHistoryCap)
	if err != nil {
		return nil, fmt.Errorf("failed to trim execution history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit execution append: %w", err)
	}
	return created, nil
}
