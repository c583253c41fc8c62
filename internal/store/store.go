package store

import (
	"sync"

	"github.com/samber/lo"
	"github.com/vvakame/bookgraph/internal/graph/model"
)

// Store owns the author and book sequences shared by every resolver of a server.
// Records are only ever appended; nothing is updated or removed.
type Store struct {
	mu      sync.RWMutex
	authors []*model.Author
	books   []*model.Book
}

func New(authors []*model.Author, books []*model.Book) *Store {
	return &Store{
		authors: append([]*model.Author(nil), authors...),
		books:   append([]*model.Book(nil), books...),
	}
}

func NewSeeded() *Store {
	authors, books := Seed()
	return New(authors, books)
}

func (s *Store) Authors() []*model.Author {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]*model.Author{}, s.authors...)
}

func (s *Store) Books() []*model.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]*model.Book{}, s.books...)
}

// AuthorAt returns the author at the 1-based position pos, or nil when pos is out of range.
func (s *Store) AuthorAt(pos int) *model.Author {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if pos < 1 || pos > len(s.authors) {
		return nil
	}
	return s.authors[pos-1]
}

// BookAt returns the book at the 1-based position pos, or nil when pos is out of range.
func (s *Store) BookAt(pos int) *model.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if pos < 1 || pos > len(s.books) {
		return nil
	}
	return s.books[pos-1]
}

// FindAuthor returns the first author whose ID is id.
func (s *Store) FindAuthor(id int) *model.Author {
	s.mu.RLock()
	defer s.mu.RUnlock()

	author, ok := lo.Find(s.authors, func(author *model.Author) bool {
		return author.ID == id
	})
	if !ok {
		return nil
	}
	return author
}

func (s *Store) BooksByAuthor(authorID int) []*model.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Filter(s.books, func(book *model.Book, _ int) bool {
		return book.AuthorID != nil && *book.AuthorID == authorID
	})
}

// AddAuthor appends an author whose ID is the number of authors stored before the call.
func (s *Store) AddAuthor(name string) *model.Author {
	s.mu.Lock()
	defer s.mu.Unlock()

	author := &model.Author{
		ID:   len(s.authors),
		Name: name,
	}
	s.authors = append(s.authors, author)

	return author
}

// AddBook appends a book whose ID is the number of books stored before the call.
func (s *Store) AddBook(name string, authorID *int) *model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := &model.Book{
		ID:       len(s.books),
		Name:     name,
		AuthorID: authorID,
	}
	s.books = append(s.books, book)

	return book
}
