package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/service/database"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS ad_scripts (
	id              TEXT PRIMARY KEY,
	product_name    TEXT NOT NULL,
	platform        TEXT NOT NULL,
	provider        TEXT NOT NULL,
	model           TEXT NOT NULL,
	final_script    TEXT NOT NULL,
	runbook_content TEXT NOT NULL DEFAULT '',
	result_json     TEXT NOT NULL,
	created_at      TEXT NOT NULL
)`

const indexSchema = `CREATE INDEX IF NOT EXISTS idx_ad_scripts_product ON ad_scripts (product_name, created_at)`

// StoredScript is one persisted pipeline run.
type StoredScript struct {
	ID             string
	ProductName    string
	Platform       domain.Platform
	Provider       string
	Model          string
	FinalScript    string
	RunbookContent string
	CreatedAt      time.Time
	Result         *domain.PipelineResult
}

// ScriptRepository persists finished runs in the ad_scripts table.
type ScriptRepository struct {
	db      *sql.DB
	dialect database.Dialect
	now     func() time.Time
	logger  *zap.Logger
}

func NewScriptRepository(ds *database.DatabaseService, logger *zap.Logger) *ScriptRepository {
	return &ScriptRepository{
		db:      ds.GetDB(),
		dialect: ds.Dialect(),
		now:     time.Now,
		logger:  logger,
	}
}

// Migrate creates the table and index when missing.
func (r *ScriptRepository) Migrate(ctx context.Context) error {
	for _, stmt := range []string{schema, indexSchema} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errors.NewStoreError("failed to migrate ad_scripts", "migrate", "ad_scripts", err)
		}
	}
	return nil
}

// Save stores result and returns the generated id.
func (r *ScriptRepository) Save(ctx context.Context, result *domain.PipelineResult) (string, error) {
	if result == nil {
		return "", errors.NewStoreError("nil result", "save", "ad_scripts", nil)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", errors.NewStoreError("failed to encode result", "save", "ad_scripts", err)
	}

	id := uuid.NewString()
	query := r.dialect.Rebind(`
		INSERT INTO ad_scripts (id, product_name, platform, provider, model,
		                        final_script, runbook_content, result_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)

	_, err = r.db.ExecContext(ctx, query,
		id,
		result.ProductInfo.Name,
		string(result.Platform),
		result.Configuration.Provider,
		result.Configuration.Model,
		result.FinalAdScript,
		result.Runbook.Content,
		string(payload),
		r.now().UTC().Format(createdAtLayout),
	)
	if err != nil {
		return "", errors.NewStoreError("failed to insert ad script", "save", "ad_scripts", err)
	}

	r.logger.Info("Ad script stored",
		zap.String("id", id),
		zap.String("product", result.ProductInfo.Name),
		zap.String("platform", string(result.Platform)),
	)

	return id, nil
}

// Get returns the stored run, or nil when id is unknown.
func (r *ScriptRepository) Get(ctx context.Context, id string) (*StoredScript, error) {
	query := r.dialect.Rebind(`
		SELECT id, product_name, platform, provider, model,
		       final_script, runbook_content, result_json, created_at
		FROM ad_scripts
		WHERE id = $1
	`)

	script, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to query ad script", "get", id, err)
	}
	return script, nil
}

// ListByProduct returns the newest runs for productName first.
func (r *ScriptRepository) ListByProduct(ctx context.Context, productName string, limit int) ([]*StoredScript, error) {
	if limit <= 0 {
		limit = 20
	}

	query := r.dialect.Rebind(`
		SELECT id, product_name, platform, provider, model,
		       final_script, runbook_content, result_json, created_at
		FROM ad_scripts
		WHERE product_name = $1
		ORDER BY created_at DESC
		LIMIT $2
	`)

	rows, err := r.db.QueryContext(ctx, query, productName, limit)
	if err != nil {
		return nil, errors.NewStoreError("failed to list ad scripts", "list", productName, err)
	}
	defer rows.Close()

	scripts := make([]*StoredScript, 0)
	for rows.Next() {
		script, err := r.scan(rows)
		if err != nil {
			return nil, errors.NewStoreError("failed to scan ad script", "list", productName, err)
		}
		scripts = append(scripts, script)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate ad scripts", "list", productName, err)
	}

	return scripts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ScriptRepository) scan(row rowScanner) (*StoredScript, error) {
	var (
		script     StoredScript
		platform   string
		resultJSON string
		createdAt  string
	)

	if err := row.Scan(
		&script.ID, &script.ProductName, &platform, &script.Provider, &script.Model,
		&script.FinalScript, &script.RunbookContent, &resultJSON, &createdAt,
	); err != nil {
		return nil, err
	}

	script.Platform = domain.Platform(platform)

	if ts, err := time.Parse(createdAtLayout, createdAt); err == nil {
		script.CreatedAt = ts
	}

	var result domain.PipelineResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("decode stored result %s: %w", script.ID, err)
	}
	script.Result = &result

	return &script, nil
}
