package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/voyplan/voyplan-backend/internal/domain"
)

func SeedTrip(tb testing.TB, ctx context.Context, tx *gorm.DB, destination string, totalDays int) *types.Trip {
	tb.Helper()
	start := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	t := &types.Trip{
		ID:          uuid.New(),
		OwnerUserID: uuid.New(),
		Title:       destination + " trip",
		Destination: destination,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, totalDays-1),
		Travelers:   2,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed trip: %v", err)
	}
	return t
}

func SeedPlace(tb testing.TB, ctx context.Context, tx *gorm.DB, destination, name, category string) *types.Place {
	tb.Helper()
	p := &types.Place{
		ID:          uuid.New(),
		Destination: destination,
		Name:        name,
		Category:    category,
		Rating:      4.2,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed place: %v", err)
	}
	return p
}
