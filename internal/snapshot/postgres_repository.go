package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripsense/tripsense/internal/trip"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Snapshots append to itinerary_snapshots; Last reads the newest row.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL snapshot repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveLast stores a snapshot as the new latest.
func (r *PostgresRepository) SaveLast(ctx context.Context, s *Snapshot) error {
	query := `
		INSERT INTO itinerary_snapshots (id, kind, request, itinerary, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	reqJSON, err := json.Marshal(s.Request)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	itinJSON, err := json.Marshal(s.Itinerary)
	if err != nil {
		return fmt.Errorf("encoding itinerary: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, s.ID, s.Kind, reqJSON, itinJSON, s.CreatedAt)
	return err
}

// Last returns the most recent snapshot, or ErrNoSnapshot.
func (r *PostgresRepository) Last(ctx context.Context) (*Snapshot, error) {
	query := `
		SELECT id, kind, request, itinerary, created_at
		FROM itinerary_snapshots
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		id        uuid.UUID
		kind      string
		reqJSON   []byte
		itinJSON  []byte
		createdAt time.Time
	)

	err := r.pool.QueryRow(ctx, query).Scan(&id, &kind, &reqJSON, &itinJSON, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}

	var req trip.Request
	if err := json.Unmarshal(reqJSON, &req); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	var itin trip.Itinerary
	if err := json.Unmarshal(itinJSON, &itin); err != nil {
		return nil, fmt.Errorf("decoding itinerary: %w", err)
	}

	return &Snapshot{
		ID:        id,
		Kind:      kind,
		Request:   req,
		Itinerary: itin,
		CreatedAt: createdAt,
	}, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
