package repository

import (
	"context"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/workbook"
)

// TemplateRepository handles workbook operations for terms templates
type TemplateRepository struct {
	*Table[domain.Template]
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(store *workbook.Store) *TemplateRepository {
	return &TemplateRepository{Table: NewTable(store, workbook.TemplateCodec)}
}

// Upsert stores the template. A template saved as default clears the flag
// on other templates of the same type in the same write.
func (r *TemplateRepository) Upsert(ctx context.Context, scope string, template domain.Template) error {
	return r.mutate(ctx, scope, func(wb *workbook.Workbook) error {
		templates := upsert(r.codec, r.codec.Read(wb), template)
		if template.IsDefault {
			for i := range templates {
				if templates[i].Type == template.Type {
					templates[i].IsDefault = templates[i].ID == template.ID
				}
			}
		}
		r.codec.Write(wb, templates)
		return nil
	})
}

// SetDefault makes id the only default among templates of its type.
// Templates of other types keep their flags.
func (r *TemplateRepository) SetDefault(ctx context.Context, scope, id string) error {
	return r.mutate(ctx, scope, func(wb *workbook.Workbook) error {
		templates := r.codec.Read(wb)
		i := r.indexOf(templates, id)
		if i < 0 {
			return r.notFound(id)
		}
		kind := templates[i].Type
		for j := range templates {
			if templates[j].Type == kind {
				templates[j].IsDefault = templates[j].ID == id
			}
		}
		r.codec.Write(wb, templates)
		return nil
	})
}

// ListByType returns templates of one type in stored order
func (r *TemplateRepository) ListByType(ctx context.Context, scope string, kind domain.TemplateType) ([]domain.Template, error) {
	templates, err := r.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	var out []domain.Template
	for _, t := range templates {
		if t.Type == kind {
			out = append(out, t)
		}
	}
	return out, nil
}

// GetDefault returns the default template of a type
func (r *TemplateRepository) GetDefault(ctx context.Context, scope string, kind domain.TemplateType) (*domain.Template, error) {
	templates, err := r.ListByType(ctx, scope, kind)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].IsDefault {
			return &templates[i], nil
		}
	}
	return nil, &domain.NotFoundError{Entity: workbook.TableTemplate, ID: string(kind)}
}
