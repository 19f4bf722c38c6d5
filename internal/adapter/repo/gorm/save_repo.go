package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dronefarm/internal/adapter/repo/gorm/model"
	"dronefarm/internal/adapter/savecodec"
	"dronefarm/internal/app/ports"
)

// SaveRepo keeps each save as one row holding a compressed record.
type SaveRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSaveRepo(db *gorm.DB) SaveRepo {
	return SaveRepo{db: db, now: time.Now}
}

func (r SaveRepo) Put(ctx context.Context, rec ports.SaveRecord) error {
	payload, err := savecodec.Encode(rec)
	if err != nil {
		return err
	}
	m := model.GameSave{
		Name:      rec.Name,
		Payload:   payload,
		SavedAt:   rec.SavedAt.UTC(),
		UpdatedAt: r.now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "saved_at", "updated_at"}),
		}).
		Create(&m).Error
}

func (r SaveRepo) Get(ctx context.Context, name string) (ports.SaveRecord, error) {
	var m model.GameSave
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SaveRecord{}, ports.ErrNotFound
		}
		return ports.SaveRecord{}, err
	}
	rec, err := savecodec.Decode(m.Payload)
	if err != nil {
		return ports.SaveRecord{}, fmt.Errorf("decode save %s: %w", name, err)
	}
	return rec, nil
}

func (r SaveRepo) List(ctx context.Context) ([]ports.SaveSummary, error) {
	var rows []model.GameSave
	if err := r.db.WithContext(ctx).
		Select("name", "saved_at").
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ports.SaveSummary, 0, len(rows))
	for _, m := range rows {
		out = append(out, ports.SaveSummary{Name: m.Name, SavedAt: m.SavedAt.UTC()})
	}
	return out, nil
}

func (r SaveRepo) Delete(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&model.GameSave{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}
