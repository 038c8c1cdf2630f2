package db

import (
	"fmt"

	types "github.com/voyplan/voyplan-backend/internal/domain"
)

func (s *PostgresService) AutoMigrateAll() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres service not initialized")
	}
	return s.db.AutoMigrate(types.AllModels()...)
}
