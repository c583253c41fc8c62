package store

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/vvakame/bookgraph/internal/graph/model"
)

func Seed() ([]*model.Author, []*model.Book) {
	intptr := func(i int) *int {
		return &i
	}

	authors := []*model.Author{
		{ID: 1, Name: "J. K. Rowling"},
		{ID: 2, Name: "J. R. R. Tolkien"},
		{ID: 3, Name: "Brent Weeks"},
	}

	books := []*model.Book{
		{ID: 1, Name: "Harry Potter and the Chamber of Secrets", AuthorID: intptr(1)},
		{ID: 2, Name: "Harry Potter and the Prisoner of Azkaban", AuthorID: intptr(1)},
		{ID: 3, Name: "Harry Potter and the Goblet of Fire", AuthorID: intptr(1)},
		{ID: 4, Name: "The Fellowship of the Ring", AuthorID: intptr(2)},
		{ID: 5, Name: "The Two Towers", AuthorID: intptr(2)},
		{ID: 6, Name: "The Return of the King", AuthorID: intptr(2)},
		{ID: 7, Name: "The Way of Shadows", AuthorID: intptr(3)},
		{ID: 8, Name: "Beyond the Shadows", AuthorID: intptr(3)},
	}

	return authors, books
}

type seedFile struct {
	Authors []*model.Author `yaml:"authors"`
	Books   []*model.Book   `yaml:"books"`
}

// LoadSeedFile builds a Store from a YAML document with top level authors and books lists.
func LoadSeedFile(filePath string) (*Store, error) {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	return ParseSeed(b)
}

func ParseSeed(b []byte) (*Store, error) {
	v := &seedFile{}
	err := yaml.UnmarshalWithOptions(b, v, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	return New(v.Authors, v.Books), nil
}
