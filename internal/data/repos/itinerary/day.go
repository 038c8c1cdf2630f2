package itinerary

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/platform/dbctx"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

type DayRepo interface {
	// UpsertByTripAndDay overwrites the stored day for (trip, day number).
	// Regenerating a day replaces it rather than appending.
	UpsertByTripAndDay(dbc dbctx.Context, row *types.ItineraryDay) error
	GetByTripAndDay(dbc dbctx.Context, tripID uuid.UUID, dayNumber int) (*types.ItineraryDay, error)
	ListByTripID(dbc dbctx.Context, tripID uuid.UUID) ([]*types.ItineraryDay, error)
	DeleteByTripID(dbc dbctx.Context, tripID uuid.UUID) error
}

type dayRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDayRepo(db *gorm.DB, baseLog *logger.Logger) DayRepo {
	return &dayRepo{
		db:  db,
		log: baseLog.With("repo", "DayRepo"),
	}
}

func (r *dayRepo) UpsertByTripAndDay(dbc dbctx.Context, row *types.ItineraryDay) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.TripID == uuid.Nil || row.DayNumber <= 0 {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "trip_id"}, {Name: "day_number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"date", "title", "timeline", "meals", "notes", "transport", "overnight", "updated_at",
			}),
		}).
		Create(row).Error
}

func (r *dayRepo) GetByTripAndDay(dbc dbctx.Context, tripID uuid.UUID, dayNumber int) (*types.ItineraryDay, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if tripID == uuid.Nil || dayNumber <= 0 {
		return nil, nil
	}
	var row types.ItineraryDay
	err := transaction.WithContext(dbc.Ctx).
		Where("trip_id = ? AND day_number = ?", tripID, dayNumber).
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

func (r *dayRepo) ListByTripID(dbc dbctx.Context, tripID uuid.UUID) ([]*types.ItineraryDay, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ItineraryDay
	if tripID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("trip_id = ?", tripID).
		Order("day_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dayRepo) DeleteByTripID(dbc dbctx.Context, tripID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if tripID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("trip_id = ?", tripID).
		Delete(&types.ItineraryDay{}).Error
}
