package graph

import "github.com/vvakame/bookgraph/internal/store"

// Quirks toggles behaviours kept for compatibility with the first deployment of this API.
// Each of them is a known defect; turning it off gives the corrected behaviour.
type Quirks struct {
	// BookAuthorByBookID resolves Book.author by comparing Author.id with the book's own id
	// instead of its authorId.
	BookAuthorByBookID bool `yaml:"book_author_by_book_id"`
	// DropAddBookAuthorID makes addBook store the book without the given authorId.
	DropAddBookAuthorID bool `yaml:"drop_add_book_author_id"`
	// AuthorQueryReturnsObject makes Query.author return a single Author for its list type,
	// which fails completion with an "Expected Iterable" error.
	AuthorQueryReturnsObject bool `yaml:"author_query_returns_object"`
}

func CompatQuirks() Quirks {
	return Quirks{
		BookAuthorByBookID:       true,
		DropAddBookAuthorID:      true,
		AuthorQueryReturnsObject: true,
	}
}

type Resolver struct {
	store  *store.Store
	quirks Quirks
}

func NewResolver(s *store.Store, quirks Quirks) *Resolver {
	return &Resolver{
		store:  s,
		quirks: quirks,
	}
}
