package itinerary

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/platform/dbctx"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

// GenerationRepo persists the per-trip generation record. Every mutation
// after Create goes through UpdateFieldsWhenStatus, the optimistic
// single-writer guard described in the concurrency model.
type GenerationRepo interface {
	Create(dbc dbctx.Context, row *types.Generation) (*types.Generation, error)
	GetByTripID(dbc dbctx.Context, tripID uuid.UUID) (*types.Generation, error)
	// UpdateFieldsWhenStatus applies updates only while the row still holds
	// one of the allowed statuses. Returns false when the guard did not match.
	UpdateFieldsWhenStatus(dbc dbctx.Context, tripID uuid.UUID, allowedStatuses []string, updates map[string]interface{}) (bool, error)
}

type generationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRepo {
	return &generationRepo{
		db:  db,
		log: baseLog.With("repo", "GenerationRepo"),
	}
}

func (r *generationRepo) Create(dbc dbctx.Context, row *types.Generation) (*types.Generation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *generationRepo) GetByTripID(dbc dbctx.Context, tripID uuid.UUID) (*types.Generation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if tripID == uuid.Nil {
		return nil, nil
	}
	var row types.Generation
	err := transaction.WithContext(dbc.Ctx).
		Where("trip_id = ?", tripID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *generationRepo) UpdateFieldsWhenStatus(dbc dbctx.Context, tripID uuid.UUID, allowedStatuses []string, updates map[string]interface{}) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if tripID == uuid.Nil {
		return false, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}

	q := transaction.WithContext(dbc.Ctx).
		Model(&types.Generation{}).
		Where("trip_id = ?", tripID)
	if len(allowedStatuses) == 1 {
		q = q.Where("status = ?", allowedStatuses[0])
	} else if len(allowedStatuses) > 1 {
		q = q.Where("status IN ?", allowedStatuses)
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
