// package models defines the data model for the movie browsing client
package models

import (
	"time"
)

// Model is a record kept in the local database.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error // checked before every insert and update
}

// Repository is CRUD access to one table of [Model] records.
//
// Deletes are soft: deleted rows are invisible to Get, Update and List.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
