package insights

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/zed-insights/internal/models"
)

// EntrantFile is the on-disk layout of a race line-up
type EntrantFile struct {
	RaceID   string    `yaml:"race_id"`
	Entrants []Entrant `yaml:"entrants" validate:"required,min=1,dive"`
}

var entrantValidator = validator.New()

// LoadEntrants reads a race line-up from a YAML file
func LoadEntrants(path string) ([]Entrant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entrants file: %w", err)
	}
	return ParseEntrants(data)
}

// ParseEntrants decodes and validates a YAML race line-up
func ParseEntrants(data []byte) ([]Entrant, error) {
	var file EntrantFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidEntrant, err)
	}

	if err := ValidateEntrants(file.Entrants); err != nil {
		return nil, err
	}
	return file.Entrants, nil
}

// ValidateEntrants checks required ids, augment counts and duplicate ids. Any
// gate is accepted; unknown gates are labelled G? in summaries.
func ValidateEntrants(entrants []Entrant) error {
	if err := entrantValidator.Struct(EntrantFile{Entrants: entrants}); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", models.ErrInvalidEntrant, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", models.ErrInvalidEntrant, err)
	}

	seen := make(map[string]bool, len(entrants))
	for _, e := range entrants {
		if seen[e.ID] {
			return fmt.Errorf("%w: duplicate horse id %s", models.ErrInvalidEntrant, e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}
