package gormrepo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"dronefarm/internal/adapter/repo/gorm/model"
)

func ApplyMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&model.GameSave{}); err != nil {
		return fmt.Errorf("migrate %s: %w", model.TableNameGameSave, err)
	}
	return nil
}
