package store

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/skankhunt44/schema-snap/pkg/models"
)

// seedFile is the on-disk layout of a template seed file.
type seedFile struct {
	Templates []seedTemplate `yaml:"templates"`
}

type seedTemplate struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Fields      []seedField `yaml:"fields"`
}

type seedField struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// SeedTemplates loads template definitions from a YAML file and
// creates any that do not already exist, matched by name. Existing
// templates are never modified.
func (s *Store) SeedTemplates(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	existing, err := s.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	byName := make(map[string]bool, len(existing))
	for _, tmpl := range existing {
		byName[tmpl.Name] = true
	}

	created := 0
	for _, st := range seed.Templates {
		if st.Name == "" {
			return fmt.Errorf("seed template missing name")
		}
		if byName[st.Name] {
			continue
		}

		tmpl := &models.Template{
			Name:        st.Name,
			Description: st.Description,
		}
		for _, f := range st.Fields {
			if f.ID == "" {
				return fmt.Errorf("seed template %q: field missing id", st.Name)
			}
			tmpl.Fields = append(tmpl.Fields, models.TargetField{
				ID:          f.ID,
				Name:        f.Name,
				Description: f.Description,
				Required:    f.Required,
			})
		}

		if err := s.CreateTemplate(ctx, tmpl); err != nil {
			return fmt.Errorf("create seed template %q: %w", st.Name, err)
		}
		created++
	}

	s.logger.Info("Template seeding complete",
		zap.Int("defined", len(seed.Templates)),
		zap.Int("created", created))
	return nil
}
