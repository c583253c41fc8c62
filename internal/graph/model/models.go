package model

type Author struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Book.AuthorID is nil when the record was stored without an author reference.
type Book struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	AuthorID *int   `json:"authorId" yaml:"authorId"`
}
