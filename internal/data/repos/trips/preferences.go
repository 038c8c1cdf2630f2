package trips

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/platform/dbctx"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

type PreferencesRepo interface {
	GetByTripID(dbc dbctx.Context, tripID uuid.UUID) (*types.TripPreferences, error)
	UpsertByTripID(dbc dbctx.Context, row *types.TripPreferences) error
}

type preferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) PreferencesRepo {
	return &preferencesRepo{
		db:  db,
		log: baseLog.With("repo", "PreferencesRepo"),
	}
}

func (r *preferencesRepo) GetByTripID(dbc dbctx.Context, tripID uuid.UUID) (*types.TripPreferences, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if tripID == uuid.Nil {
		return nil, nil
	}
	var row types.TripPreferences
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

func (r *preferencesRepo) UpsertByTripID(dbc dbctx.Context, row *types.TripPreferences) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.TripID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "trip_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"pace", "budget_level", "interests", "dietary", "mobility", "notes", "updated_at",
			}),
		}).
		Create(row).Error
}
