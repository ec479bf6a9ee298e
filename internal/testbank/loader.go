// Package testbank loads test definitions from a directory of JSON
// files and validates them before the bot offers them to students.
package testbank

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/studtest/quizbot/internal/models"
	"github.com/studtest/quizbot/internal/utils"
)

// Bank is the read-only set of loaded tests keyed by test id.
type Bank struct {
	tests map[string]models.Test
	order []string
}

// Load reads every *.json file in dir. Files that cannot be read,
// parsed or validated are skipped with a warning so one broken
// definition does not take the whole bot down.
func Load(dir string, validate *validator.Validate, logger utils.Logger) (*Bank, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tests directory %s: %w", dir, err)
	}

	bank := &Bank{tests: make(map[string]models.Test)}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		test, err := loadFile(path, validate)
		if err != nil {
			logger.Warn("Skipping test definition", "file", entry.Name(), "error", err)
			continue
		}
		if _, dup := bank.tests[test.ID]; dup {
			logger.Warn("Skipping test definition with duplicate id", "file", entry.Name(), "test_id", test.ID)
			continue
		}

		bank.tests[test.ID] = test
		bank.order = append(bank.order, test.ID)
		logger.Info("Loaded test definition", "test_id", test.ID, "title", test.Title, "questions", len(test.Questions))
	}

	sort.Strings(bank.order)
	return bank, nil
}

func loadFile(path string, validate *validator.Validate) (models.Test, error) {
	var test models.Test

	data, err := os.ReadFile(path)
	if err != nil {
		return test, fmt.Errorf("read: %w", err)
	}
	if err := json.Unmarshal(data, &test); err != nil {
		return test, fmt.Errorf("parse: %w", err)
	}
	if err := validate.Struct(test); err != nil {
		return test, apperrorsFrom(err)
	}
	if errs := validateQuestions(test); len(errs) > 0 {
		return test, errs
	}
	return test, nil
}

// Get returns the test with the given id.
func (b *Bank) Get(id string) (models.Test, bool) {
	test, ok := b.tests[id]
	return test, ok
}

// List returns all loaded tests ordered by id.
func (b *Bank) List() []models.Test {
	out := make([]models.Test, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.tests[id])
	}
	return out
}

// Len returns the number of loaded tests.
func (b *Bank) Len() int {
	return len(b.tests)
}
