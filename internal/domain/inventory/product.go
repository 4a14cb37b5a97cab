package inventory

import (
	"errors"
	"time"
)

var (
	ErrNotFound             = errors.New("inventory: product not found")
	ErrAlreadyExists        = errors.New("inventory: product already exists")
	ErrInvalidQuantity      = errors.New("inventory: quantity must be greater than zero")
	ErrInsufficientStock    = errors.New("inventory: insufficient stock")
	ErrInsufficientReserved = errors.New("inventory: insufficient reserved quantity")
)

// Product tracks, per product id, the stock that is immediately allocatable
// and the stock held against outstanding reservations. Reserve and Release
// move quantity between the two counters without changing their sum.
type Product struct {
	ProductID         string
	AvailableQuantity int
	ReservedQuantity  int
	UpdatedAt         time.Time
}

func NewProduct(productID string, initialQuantity int) (*Product, error) {
	if initialQuantity < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Product{
		ProductID:         productID,
		AvailableQuantity: initialQuantity,
		ReservedQuantity:  0,
		UpdatedAt:         time.Now().UTC(),
	}, nil
}

func (p *Product) Add(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.AvailableQuantity += quantity
	p.touch()
	return nil
}

func (p *Product) Decrease(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.AvailableQuantity {
		return ErrInsufficientStock
	}
	p.AvailableQuantity -= quantity
	p.touch()
	return nil
}

func (p *Product) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.AvailableQuantity {
		return ErrInsufficientStock
	}
	p.AvailableQuantity -= quantity
	p.ReservedQuantity += quantity
	p.touch()
	return nil
}

func (p *Product) Release(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.ReservedQuantity {
		return ErrInsufficientReserved
	}
	p.ReservedQuantity -= quantity
	p.AvailableQuantity += quantity
	p.touch()
	return nil
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
