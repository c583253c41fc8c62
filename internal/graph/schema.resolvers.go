package graph

import (
	"context"

	"github.com/vvakame/bookgraph/internal/graph/model"
	"github.com/vvakame/bookgraph/internal/log"
)

func (r *authorResolver) Books(ctx context.Context, obj *model.Author) ([]*model.Book, error) {
	return r.store.BooksByAuthor(obj.ID), nil
}

func (r *bookResolver) Author(ctx context.Context, obj *model.Book) (*model.Author, error) {
	if r.quirks.BookAuthorByBookID {
		return r.store.FindAuthor(obj.ID), nil
	}
	if obj.AuthorID == nil {
		return nil, nil
	}

	return r.store.FindAuthor(*obj.AuthorID), nil
}

func (r *mutationResolver) AddBook(ctx context.Context, name string, authorID int) (*model.Book, error) {
	var stored *int
	if !r.quirks.DropAddBookAuthorID {
		stored = &authorID
	}

	book := r.store.AddBook(name, stored)
	log.FromContext(ctx).V(1).Info("book added", "id", book.ID, "name", book.Name, "authorId", stored)

	return book, nil
}

func (r *mutationResolver) AddAuthor(ctx context.Context, name string) (*model.Author, error) {
	author := r.store.AddAuthor(name)
	log.FromContext(ctx).V(1).Info("author added", "id", author.ID, "name", author.Name)

	return author, nil
}

// Book looks the book up by its 1-based position, not by its id.
func (r *queryResolver) Book(ctx context.Context, id *int) (*model.Book, error) {
	if id == nil {
		return nil, nil
	}

	return r.store.BookAt(*id), nil
}

func (r *queryResolver) Books(ctx context.Context) ([]*model.Book, error) {
	return r.store.Books(), nil
}

func (r *queryResolver) Authors(ctx context.Context) ([]*model.Author, error) {
	return r.store.Authors(), nil
}

// Author returns *model.Author while AuthorQueryReturnsObject is set and []*model.Author otherwise.
func (r *queryResolver) Author(ctx context.Context, id *int) (interface{}, error) {
	var author *model.Author
	if id != nil {
		author = r.store.AuthorAt(*id)
	}

	if r.quirks.AuthorQueryReturnsObject {
		return author, nil
	}
	if author == nil {
		return nil, nil
	}

	return []*model.Author{author}, nil
}

func (r *Resolver) Author() *authorResolver { return &authorResolver{r} }

func (r *Resolver) Book() *bookResolver { return &bookResolver{r} }

func (r *Resolver) Mutation() *mutationResolver { return &mutationResolver{r} }

func (r *Resolver) Query() *queryResolver { return &queryResolver{r} }

type authorResolver struct{ *Resolver }
type bookResolver struct{ *Resolver }
type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
