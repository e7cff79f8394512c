package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nexusai/console/pkg/models"
)

func scanLog(row pgx.Row) (*models.ExecutionLog, error) {
	var (
		log      models.ExecutionLog
		tenantID *string
		ts       time.Time
		duration *string
		status   string
	)
	if err := row.Scan(&log.ID, &tenantID, &log.SessionID, &ts, &duration, &status); err != nil {
		return nil, err
	}
	log.TenantID = orEmpty(tenantID)
	log.Timestamp = formatTimestamp(ts)
	log.Duration = orEmpty(duration)
	log.Status = models.ExecutionStatus(status)
	log.Steps = []*models.ExecutionStep{}
	return &log, nil
}

const logColumns = "id, tenant_id, session_id, timestamp, duration, status"

// ListExecutionLogs returns logs newest first, optionally scoped to a
// tenant, with their steps assembled in order.
func (r *Postgres) ListExecutionLogs(ctx context.Context, tenantID string, limit int) ([]*models.ExecutionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows pgx.Rows
		err  error
	)
	if tenantID != "" {
		rows, err = r.db.Query(ctx,
			"SELECT "+logColumns+" FROM execution_logs WHERE tenant_id = $1 ORDER BY timestamp DESC LIMIT $2",
			tenantID, limit)
	} else {
		rows, err = r.db.Query(ctx,
			"SELECT "+logColumns+" FROM execution_logs ORDER BY timestamp DESC LIMIT $1", limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list execution logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.ExecutionLog
	byID := map[string]*models.ExecutionLog{}
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution log: %w", err)
		}
		logs = append(logs, log)
		byID[log.ID] = log
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return logs, nil
	}

	ids := make([]string, 0, len(logs))
	for _, log := range logs {
		ids = append(ids, log.ID)
	}

	stepRows, err := r.db.Query(ctx,
		`SELECT execution_log_id, name, status, timestamp, payload_in, payload_out
		 FROM execution_steps
		 WHERE execution_log_id = ANY($1)
		 ORDER BY step_order`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list execution steps: %w", err)
	}
	defer stepRows.Close()
	for stepRows.Next() {
		var (
			logID, status   string
			step            models.ExecutionStep
			ts              *string
			payloadIn, pOut []byte
		)
		if err := stepRows.Scan(&logID, &step.Name, &status, &ts, &payloadIn, &pOut); err != nil {
			return nil, fmt.Errorf("failed to scan execution step: %w", err)
		}
		step.Status = models.StepStatus(status)
		step.Timestamp = orEmpty(ts)
		if payloadIn != nil {
			step.PayloadIn = jsonMap(payloadIn)
		}
		if pOut != nil {
			step.PayloadOut = jsonMap(pOut)
		}
		if log, ok := byID[logID]; ok {
			log.Steps = append(log.Steps, &step)
		}
	}
	return logs, stepRows.Err()
}

// GetExecutionLog returns one log with its steps, or (nil, nil) when
// absent.
func (r *Postgres) GetExecutionLog(ctx context.Context, id string) (*models.ExecutionLog, error) {
	log, err := scanLog(r.db.QueryRow(ctx,
		"SELECT "+logColumns+" FROM execution_logs WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get execution log: %w", err)
	}

	stepRows, err := r.db.Query(ctx,
		`SELECT name, status, timestamp, payload_in, payload_out
		 FROM execution_steps
		 WHERE execution_log_id = $1
		 ORDER BY step_order`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list execution steps: %w", err)
	}
	defer stepRows.Close()
	for stepRows.Next() {
		var (
			step            models.ExecutionStep
			status          string
			ts              *string
			payloadIn, pOut []byte
		)
		if err := stepRows.Scan(&step.Name, &status, &ts, &payloadIn, &pOut); err != nil {
			return nil, fmt.Errorf("failed to scan execution step: %w", err)
		}
		step.Status = models.StepStatus(status)
		step.Timestamp = orEmpty(ts)
		if payloadIn != nil {
			step.PayloadIn = jsonMap(payloadIn)
		}
		if pOut != nil {
			step.PayloadOut = jsonMap(pOut)
		}
		log.Steps = append(log.Steps, &step)
	}
	return log, stepRows.Err()
}

// CreateExecutionLog inserts a log and its steps, returning the canonical
// record.
func (r *Postgres) CreateExecutionLog(ctx context.Context, log *models.ExecutionLog) (*models.ExecutionLog, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin log create: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := scanLog(tx.QueryRow(ctx,
		`INSERT INTO execution_logs (tenant_id, session_id, duration, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+logColumns,
		nullable(log.TenantID), log.SessionID, nullable(log.Duration), string(log.Status)))
	if err != nil {
		return nil, fmt.Errorf("failed to create execution log: %w", err)
	}

	for i, step := range log.Steps {
		payloadIn, err := jsonArg(step.PayloadIn)
		if err != nil {
			return nil, err
		}
		payloadOut, err := jsonArg(step.PayloadOut)
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO execution_steps (execution_log_id, step_order, name, status, timestamp, payload_in, payload_out)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			created.ID, i+1, step.Name, string(step.Status), nullable(step.Timestamp), payloadIn, payloadOut)
		if err != nil {
			return nil, fmt.Errorf("failed to insert execution step: %w", err)
		}
		created.Steps = append(created.Steps, step)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit log create: %w", err)
	}
	return created, nil
}

// UpdateExecutionLogStatus transitions a log's status, optionally
// stamping its duration.
func (r *Postgres) UpdateExecutionLogStatus(ctx context.Context, id string, status models.ExecutionStatus, duration string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE execution_logs SET status = $2, duration = COALESCE($3, duration) WHERE id = $1",
		id, string(status), nullable(duration))
	if err != nil {
		return fmt.Errorf("failed to update execution log status: %w", err)
	}
	return nil
}
