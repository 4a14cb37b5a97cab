package inventory

import (
	"context"
)

// Repository is the persistence contract for product records. Save has upsert
// semantics; Get returns ErrNotFound for unknown product ids.
type Repository interface {
	Get(ctx context.Context, productID string) (*Product, error)
	Exists(ctx context.Context, productID string) (bool, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, productID string) error
}
