package places

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/platform/dbctx"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

type PlaceRepo interface {
	Create(dbc dbctx.Context, rows []*types.Place) ([]*types.Place, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Place, error)
	ListByDestination(dbc dbctx.Context, destination string) ([]*types.Place, error)
	ListByDestinationAndCategories(dbc dbctx.Context, destination string, categories []string) ([]*types.Place, error)
}

type placeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlaceRepo(db *gorm.DB, baseLog *logger.Logger) PlaceRepo {
	return &placeRepo{
		db:  db,
		log: baseLog.With("repo", "PlaceRepo"),
	}
}

func (r *placeRepo) Create(dbc dbctx.Context, rows []*types.Place) ([]*types.Place, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Place{}, nil
	}
	for _, p := range rows {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *placeRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Place, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Place
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *placeRepo) ListByDestination(dbc dbctx.Context, destination string) ([]*types.Place, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Place
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("destination = ?", destination).
		Order("rating DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *placeRepo) ListByDestinationAndCategories(dbc dbctx.Context, destination string, categories []string) ([]*types.Place, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Place
	destination = strings.TrimSpace(destination)
	if destination == "" || len(categories) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("destination = ? AND category IN ?", destination, categories).
		Order("rating DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
