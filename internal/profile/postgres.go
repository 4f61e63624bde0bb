package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the agent_profiles table. Execute it via
// [PostgresSource.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS agent_profiles (
    name        TEXT PRIMARY KEY,
    prompt      TEXT NOT NULL DEFAULT '',
    mode        TEXT NOT NULL DEFAULT '',
    greeting    TEXT NOT NULL DEFAULT '',
    tts         JSONB NOT NULL DEFAULT '{}',
    stt         JSONB NOT NULL DEFAULT '{}',
    llm         JSONB NOT NULL DEFAULT '{}',
    vad         JSONB NOT NULL DEFAULT '{}',
    is_default  BOOLEAN NOT NULL DEFAULT false,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_agent_profiles_default
    ON agent_profiles(is_default) WHERE is_default;
`

// DB is the database interface used by [PostgresSource]. Both *pgxpool.Pool
// and *pgx.Conn satisfy it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Compile-time interface check.
var _ Source = (*PostgresSource)(nil)

// PostgresSource is a profile [Source] backed by PostgreSQL. Provider config
// blocks are stored as JSONB so the wire representation matches the config
// service exactly.
type PostgresSource struct {
	db DB
}

// NewPostgresSource creates a PostgresSource using the given connection or
// pool. The caller is responsible for calling [PostgresSource.Migrate] before
// issuing queries.
func NewPostgresSource(db DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Migrate executes the [Schema] DDL.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("profile: migrate: %w", err)
	}
	return nil
}

// Name implements Source.
func (s *PostgresSource) Name() string { return "postgres" }

const selectColumns = `name, prompt, mode, greeting, tts, stt, llm, vad`

// Default implements Source. The default row is the one flagged is_default,
// falling back to the oldest profile.
func (s *PostgresSource) Default(ctx context.Context) (*AgentProfile, error) {
	const query = `
		SELECT ` + selectColumns + `
		FROM agent_profiles
		ORDER BY is_default DESC, created_at
		LIMIT 1`

	p, err := s.scanRow(s.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("profile: postgres default: %w", err)
	}
	return p, nil
}

// ByName implements Source.
func (s *PostgresSource) ByName(ctx context.Context, name string) (*AgentProfile, error) {
	const query = `
		SELECT ` + selectColumns + `
		FROM agent_profiles
		WHERE name = $1`

	p, err := s.scanRow(s.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("profile: postgres get %q: %w", name, err)
	}
	return p, nil
}

// Names implements Source.
func (s *PostgresSource) Names(ctx context.Context) ([]string, error) {
	const query = `SELECT name FROM agent_profiles ORDER BY is_default DESC, name`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("profile: postgres list: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("profile: postgres list scan: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile: postgres list: %w", err)
	}
	return names, nil
}

// Upsert creates or replaces a profile row. The profile is validated before
// persistence. Useful for provisioning and imports.
func (s *PostgresSource) Upsert(ctx context.Context, p *AgentProfile, isDefault bool) error {
	if p.Name == "" {
		return errors.New("profile: name must not be empty")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	ttsJSON, err := json.Marshal(p.TTS)
	if err != nil {
		return fmt.Errorf("profile: marshal tts: %w", err)
	}
	sttJSON, err := json.Marshal(p.STT)
	if err != nil {
		return fmt.Errorf("profile: marshal stt: %w", err)
	}
	llmJSON, err := json.Marshal(p.LLM)
	if err != nil {
		return fmt.Errorf("profile: marshal llm: %w", err)
	}
	vadJSON, err := json.Marshal(p.VAD)
	if err != nil {
		return fmt.Errorf("profile: marshal vad: %w", err)
	}

	const query = `
		INSERT INTO agent_profiles (name, prompt, mode, greeting, tts, stt, llm, vad, is_default)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (name) DO UPDATE SET
			prompt = EXCLUDED.prompt,
			mode = EXCLUDED.mode,
			greeting = EXCLUDED.greeting,
			tts = EXCLUDED.tts,
			stt = EXCLUDED.stt,
			llm = EXCLUDED.llm,
			vad = EXCLUDED.vad,
			is_default = EXCLUDED.is_default,
			updated_at = now()`

	_, err = s.db.Exec(ctx, query,
		p.Name, p.Prompt, p.Agent.Mode, p.Agent.GreetingInstructions,
		ttsJSON, sttJSON, llmJSON, vadJSON, isDefault,
	)
	if err != nil {
		return fmt.Errorf("profile: upsert %q: %w", p.Name, err)
	}
	return nil
}

// scanRow deserialises one agent_profiles row.
func (s *PostgresSource) scanRow(row pgx.Row) (*AgentProfile, error) {
	var (
		p                                  AgentProfile
		ttsJSON, sttJSON, llmJSON, vadJSON []byte
	)
	if err := row.Scan(
		&p.Name, &p.Prompt, &p.Agent.Mode, &p.Agent.GreetingInstructions,
		&ttsJSON, &sttJSON, &llmJSON, &vadJSON,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(ttsJSON, &p.TTS); err != nil {
		return nil, fmt.Errorf("unmarshal tts: %w", err)
	}
	if err := json.Unmarshal(sttJSON, &p.STT); err != nil {
		return nil, fmt.Errorf("unmarshal stt: %w", err)
	}
	if err := json.Unmarshal(llmJSON, &p.LLM); err != nil {
		return nil, fmt.Errorf("unmarshal llm: %w", err)
	}
	if err := json.Unmarshal(vadJSON, &p.VAD); err != nil {
		return nil, fmt.Errorf("unmarshal vad: %w", err)
	}
	return &p, nil
}
