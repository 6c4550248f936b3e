package gopg

import (
	"context"

	"github.com/go-pg/pg"
	"github.com/pkg/errors"

	"github.com/interactive-solutions/go-showcase"
)

func NewSettingsRepository(db *pg.DB) showcase.SettingsRepository {
	return &settingsRepository{
		db: db,
	}
}

type settingsRepository struct {
	db *pg.DB
}

type settingsWrapper struct {
	TableName struct{} `sql:"og_image_settings,alias:ogs" json:"-"`

	*showcase.OGImageSettings
}

func (repo *settingsRepository) GetActive(ctx context.Context) (showcase.OGImageSettings, error) {
	var wrapped []settingsWrapper

	// Two rows are enough to tell a single active row from an ambiguous table.
	err := repo.db.WithContext(ctx).
		Model(&wrapped).
		Where("is_active = ?", true).
		Limit(2).
		Select()

	if err != nil && err != pg.ErrNoRows {
		return showcase.OGImageSettings{}, errors.Wrap(err, "Failed to query og image settings")
	}

	switch len(wrapped) {
	case 0:
		return showcase.OGImageSettings{}, showcase.SettingsNotFoundErr
	case 1:
		return *wrapped[0].OGImageSettings, nil
	default:
		return showcase.OGImageSettings{}, showcase.AmbiguousSettingsErr
	}
}
