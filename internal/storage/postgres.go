package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"batepapo/internal/message"
	"batepapo/internal/participant"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore persists participants and messages in PostgreSQL. Per-row
// statements give the single-entity atomicity the core relies on: the
// participants primary key closes the join race, and row counts report
// whether a remove, update or delete actually happened.
type PostgresStore struct {
	db           *sql.DB
	participants *pgParticipantRepo
	messages     *pgMessageRepo
}

func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("db url is required")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &PostgresStore{
		db:           db,
		participants: &pgParticipantRepo{db: db},
		messages:     &pgMessageRepo{db: db},
	}, nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	_ = ctx
	return s.db.Close()
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	migrator := NewMigrator(s.db, migrationsFS)
	return migrator.Up(ctx)
}

func (s *PostgresStore) Participants() participant.Repository {
	return s.participants
}

func (s *PostgresStore) Messages() message.Repository {
	return s.messages
}
