package inventory

import "time"

// ProductCreatedEvent is emitted when a new product enters the inventory.
type ProductCreatedEvent struct {
	ProductID       string
	InitialQuantity int
	OccurredAt      time.Time
}

func (ProductCreatedEvent) EventName() string { return "inventory.product_created" }

func NewProductCreatedEvent(productID string, initialQuantity int) ProductCreatedEvent {
	return ProductCreatedEvent{
		ProductID:       productID,
		InitialQuantity: initialQuantity,
		OccurredAt:      time.Now().UTC(),
	}
}

// StockAddedEvent is emitted when available quantity is increased.
type StockAddedEvent struct {
	ProductID   string
	Quantity    int
	NewQuantity int
	OccurredAt  time.Time
}

func (StockAddedEvent) EventName() string { return "inventory.stock_added" }

func NewStockAddedEvent(productID string, quantity, newQuantity int) StockAddedEvent {
	return StockAddedEvent{
		ProductID:   productID,
		Quantity:    quantity,
		NewQuantity: newQuantity,
		OccurredAt:  time.Now().UTC(),
	}
}

// StockDecreasedEvent is emitted when available quantity is decreased.
type StockDecreasedEvent struct {
	ProductID   string
	Quantity    int
	NewQuantity int
	OccurredAt  time.Time
}

func (StockDecreasedEvent) EventName() string { return "inventory.stock_decreased" }

func NewStockDecreasedEvent(productID string, quantity, newQuantity int) StockDecreasedEvent {
	return StockDecreasedEvent{
		ProductID:   productID,
		Quantity:    quantity,
		NewQuantity: newQuantity,
		OccurredAt:  time.Now().UTC(),
	}
}

// StockReservedEvent is emitted when stock moves from available to reserved.
type StockReservedEvent struct {
	ProductID     string
	Quantity      int
	ReservationID string
	OccurredAt    time.Time
}

func (StockReservedEvent) EventName() string { return "inventory.stock_reserved" }

func NewStockReservedEvent(productID string, quantity int, reservationID string) StockReservedEvent {
	return StockReservedEvent{
		ProductID:     productID,
		Quantity:      quantity,
		ReservationID: reservationID,
		OccurredAt:    time.Now().UTC(),
	}
}

// StockReleasedEvent is emitted when stock moves from reserved back to available.
type StockReleasedEvent struct {
	ProductID     string
	Quantity      int
	ReservationID string
	OccurredAt    time.Time
}

func (StockReleasedEvent) EventName() string { return "inventory.stock_released" }

func NewStockReleasedEvent(productID string, quantity int, reservationID string) StockReleasedEvent {
	return StockReleasedEvent{
		ProductID:     productID,
		Quantity:      quantity,
		ReservationID: reservationID,
		OccurredAt:    time.Now().UTC(),
	}
}

// ProductDeletedEvent is emitted when a product is removed from the inventory.
type ProductDeletedEvent struct {
	ProductID  string
	OccurredAt time.Time
}

func (ProductDeletedEvent) EventName() string { return "inventory.product_deleted" }

func NewProductDeletedEvent(productID string) ProductDeletedEvent {
	return ProductDeletedEvent{
		ProductID:  productID,
		OccurredAt: time.Now().UTC(),
	}
}
