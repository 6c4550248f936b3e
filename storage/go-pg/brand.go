package gopg

import (
	"context"

	"github.com/go-pg/pg"

	"github.com/interactive-solutions/go-showcase"
)

func NewBrandRepository(db *pg.DB) showcase.BrandRepository {
	return &brandRepository{
		db: db,
	}
}

type brandRepository struct {
	db *pg.DB
}

type brandWrapper struct {
	TableName struct{} `sql:"brand_identity,alias:bi" json:"-"`

	*showcase.BrandIdentity
}

func (repo *brandRepository) Get(ctx context.Context) (showcase.BrandIdentity, error) {
	wrapped := &brandWrapper{
		BrandIdentity: &showcase.BrandIdentity{},
	}

	if err := repo.db.WithContext(ctx).Model(wrapped).Order("updated_at DESC").Limit(1).Select(); err != nil {
		if err == pg.ErrNoRows {
			return *wrapped.BrandIdentity, showcase.BrandNotFoundErr
		}

		return *wrapped.BrandIdentity, err
	}

	return *wrapped.BrandIdentity, nil
}
