package showcase

import (
	"context"

	"github.com/pkg/errors"
)

var (
	SettingsNotFoundErr  = errors.New("No active og image settings found")
	AmbiguousSettingsErr = errors.New("More than one og image settings row is active")
	BrandNotFoundErr     = errors.New("The brand identity was not found")
	TemplateNotFoundErr  = errors.New("The template was not found")
)

type SettingsRepository interface {
	// GetActive returns the single active row, SettingsNotFoundErr when there
	// is none and AmbiguousSettingsErr when there are several.
	GetActive(ctx context.Context) (OGImageSettings, error)
}

type BrandRepository interface {
	Get(ctx context.Context) (BrandIdentity, error)
}

type MailTemplateRepository interface {
	Get(ctx context.Context, id string) (MailTemplate, error)
}

type DeliveryRepository interface {
	Create(ctx context.Context, delivery *Delivery) error
	Recent(ctx context.Context, limit int) ([]Delivery, error)
}
