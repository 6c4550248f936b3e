package gopg

import (
	"context"

	"github.com/go-pg/pg"

	"github.com/interactive-solutions/go-showcase"
)

func NewMailTemplateRepository(db *pg.DB) showcase.MailTemplateRepository {
	return &templateRepository{
		db: db,
	}
}

type templateRepository struct {
	db *pg.DB
}

type templateWrapper struct {
	TableName struct{} `sql:"email_templates,alias:et" json:"-"`

	*showcase.MailTemplate
}

func (repo *templateRepository) Get(ctx context.Context, id string) (showcase.MailTemplate, error) {
	wrapped := &templateWrapper{
		MailTemplate: &showcase.MailTemplate{},
	}

	if err := repo.db.WithContext(ctx).Model(wrapped).Where("template_id = ?", id).Select(); err != nil {
		if err == pg.ErrNoRows {
			return *wrapped.MailTemplate, showcase.TemplateNotFoundErr
		}

		return *wrapped.MailTemplate, err
	}

	return *wrapped.MailTemplate, nil
}
