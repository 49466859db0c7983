package events

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/kailas-cloud/partdex/internal/db"
	"github.com/kailas-cloud/partdex/internal/domain"
)

type interactionModel struct {
	ID        string         `gorm:"primaryKey;type:uuid"`
	Kind      string         `gorm:"column:type;not null;index"`
	Input     datatypes.JSON `gorm:"type:jsonb;not null"`
	Output    datatypes.JSON `gorm:"type:jsonb;not null"`
	Model     string         `gorm:"not null;default:''"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

func (interactionModel) TableName() string { return "ai_interactions" }

func fromInteraction(in domain.Interaction) interactionModel {
	return interactionModel{
		ID:        in.ID,
		Kind:      in.Kind,
		Input:     datatypes.JSON(in.Input),
		Output:    datatypes.JSON(in.Output),
		Model:     in.Model,
		CreatedAt: in.CreatedAt,
	}
}

// RecordInteraction appends one language model exchange.
func (r *Repo) RecordInteraction(ctx context.Context, in domain.Interaction) error {
	m := fromInteraction(in)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("%w: record interaction: %w", domain.ErrStoreFailure, &db.Error{Op: db.OpInsert, Err: err})
	}
	return nil
}
