package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// LoadError reports a missing or malformed catalog source.
// It is fatal at startup: a failed load never degrades into an empty catalog.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading catalog %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// occupationListKeys are the wrapper keys accepted around an occupation list.
var occupationListKeys = []string{"occupations", "jobs"}

// trainingListKeys are the wrapper keys accepted around a training list.
var trainingListKeys = []string{"trainings", "formations"}

type rawOccupation struct {
	Occupation `mapstructure:",squash"`
	JobID      string `mapstructure:"job_id"`
}

type rawTraining struct {
	TrainingResource `mapstructure:",squash"`
	TrainingID       string `mapstructure:"training_id"`
}

// LoadOccupations reads an occupation catalog from a JSON or YAML file.
// The file holds either a list of records or an object wrapping the list
// under "occupations" or "jobs".
func LoadOccupations(path string) ([]Occupation, error) {
	items, err := readList(path, occupationListKeys)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	occupations := make([]Occupation, 0, len(items))
	seen := make(map[string]int, len(items))

	for idx, item := range items {
		var raw rawOccupation
		if err := decode(item, &raw); err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("record %d: %w", idx, err)}
		}

		record := raw.Occupation
		record.ID = strings.TrimSpace(record.ID)
		if record.ID == "" {
			record.ID = strings.TrimSpace(raw.JobID)
		}

		if err := validate.Struct(record); err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("record %d: %w", idx, err)}
		}

		if first, ok := seen[record.ID]; ok {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("record %d: duplicate id %q (first seen at record %d)", idx, record.ID, first)}
		}
		seen[record.ID] = idx

		occupations = append(occupations, record)
	}

	return occupations, nil
}

// LoadTrainings reads a training catalog from a JSON or YAML file.
// The file holds either a list or an object wrapping it under "trainings" or "formations".
func LoadTrainings(path string) ([]TrainingResource, error) {
	items, err := readList(path, trainingListKeys)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	trainings := make([]TrainingResource, 0, len(items))
	for idx, item := range items {
		var raw rawTraining
		if err := decode(item, &raw); err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("record %d: %w", idx, err)}
		}

		record := raw.TrainingResource
		record.ID = strings.TrimSpace(record.ID)
		if record.ID == "" {
			record.ID = strings.TrimSpace(raw.TrainingID)
		}

		if err := validate.Struct(record); err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("record %d: %w", idx, err)}
		}

		trainings = append(trainings, record)
	}

	return trainings, nil
}

func readList(path string, keys []string) ([]any, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// JSON documents are valid YAML, so one decoder covers both formats.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	switch typed := doc.(type) {
	case []any:
		return typed, nil
	case map[string]any:
		for _, key := range keys {
			if list, ok := typed[key]; ok {
				items, ok := list.([]any)
				if !ok {
					return nil, fmt.Errorf("%q must be a list", key)
				}
				return items, nil
			}
		}
		return nil, fmt.Errorf("no record list found under any of %s", strings.Join(keys, ", "))
	case nil:
		return nil, errors.New("document is empty")
	default:
		return nil, fmt.Errorf("unexpected document type %T", doc)
	}
}

func decode(input any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
