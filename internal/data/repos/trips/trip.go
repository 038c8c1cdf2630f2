package trips

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/platform/dbctx"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

type TripRepo interface {
	Create(dbc dbctx.Context, trips []*types.Trip) ([]*types.Trip, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Trip, error)
	ListByOwner(dbc dbctx.Context, ownerUserID uuid.UUID) ([]*types.Trip, error)
}

type tripRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTripRepo(db *gorm.DB, baseLog *logger.Logger) TripRepo {
	return &tripRepo{
		db:  db,
		log: baseLog.With("repo", "TripRepo"),
	}
}

func (r *tripRepo) Create(dbc dbctx.Context, trips []*types.Trip) ([]*types.Trip, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(trips) == 0 {
		return []*types.Trip{}, nil
	}
	for _, t := range trips {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *tripRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Trip, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Trip
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
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

func (r *tripRepo) ListByOwner(dbc dbctx.Context, ownerUserID uuid.UUID) ([]*types.Trip, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Trip
	if ownerUserID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("start_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
