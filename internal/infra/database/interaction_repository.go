package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/edureach360/leads-api/internal/entity"
)

type InteractionRepository struct {
	DB *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{DB: db}
}

func (r *InteractionRepository) Create(ctx context.Context, in *entity.Interaction) error {
	if !validID(in.LeadID) {
		return entity.ErrLeadNotFound
	}
	metadata, err := marshalJSON(in.Metadata)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO interactions (id, lead_id, type, content, metadata, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		in.ID, in.LeadID, in.Type, in.Content, metadata, in.CreatedAt,
	)
	return mapLeadReference(err)
}

func (r *InteractionRepository) FindRecentByLeadID(ctx context.Context, leadID string, limit int) ([]*entity.Interaction, error) {
	if !validID(leadID) {
		return []*entity.Interaction{}, nil
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, lead_id, type, content, metadata, created_at
		FROM interactions
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.Interaction{}
	for rows.Next() {
		var (
			in       entity.Interaction
			metadata []byte
		)
		if err := rows.Scan(&in.ID, &in.LeadID, &in.Type, &in.Content, &metadata, &in.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 && string(metadata) != "null" {
			if err := json.Unmarshal(metadata, &in.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata of interaction %s: %w", in.ID, err)
			}
		}
		out = append(out, &in)
	}
	return out, rows.Err()
}
