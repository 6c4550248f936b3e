package gopg

import (
	"context"

	"github.com/go-pg/pg"

	"github.com/interactive-solutions/go-showcase"
)

func NewDeliveryRepository(db *pg.DB) showcase.DeliveryRepository {
	return &deliveryRepository{
		db: db,
	}
}

type deliveryWrapper struct {
	TableName struct{} `sql:"email_deliveries,alias:ed" json:"-"`

	*showcase.Delivery
}

type deliveryRepository struct {
	db *pg.DB
}

func (repo *deliveryRepository) Create(ctx context.Context, delivery *showcase.Delivery) error {
	return repo.db.WithContext(ctx).Insert(&deliveryWrapper{Delivery: delivery})
}

func (repo *deliveryRepository) Recent(ctx context.Context, limit int) ([]showcase.Delivery, error) {
	deliveries := make([]showcase.Delivery, 0)
	var wrapped []deliveryWrapper

	if err := repo.db.WithContext(ctx).Model(&wrapped).Order("created_at DESC").Limit(limit).Select(); err != nil {
		if err == pg.ErrNoRows {
			return deliveries, nil
		}

		return deliveries, err
	}

	for _, d := range wrapped {
		deliveries = append(deliveries, *d.Delivery)
	}

	return deliveries, nil
}
