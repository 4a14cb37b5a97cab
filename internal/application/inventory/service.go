package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	domevent "github.com/marketplace/metronome/internal/domain/event"
	"github.com/marketplace/metronome/internal/domain/identity"
	dominv "github.com/marketplace/metronome/internal/domain/inventory"
	"github.com/marketplace/metronome/internal/pkg/apierr"
	"github.com/marketplace/metronome/internal/pkg/logging"
)

const (
	msgQuantityPositive      = "quantity must be a positive number"
	msgUnauthorized          = "missing or invalid credential"
	msgForbidden             = "you do not have the required permissions"
	msgInsufficientStock     = "insufficient stock"
	msgInsufficientReserved  = "insufficient reserved quantity"
	msgReservationIDRequired = "the reservation_id field is required"
	msgInternal              = "an unexpected error occurred"

	fieldQuantity      = "quantity"
	fieldReservationID = "reservation_id"

	fallbackRole = "client"
)

// IDGenerator mints opaque reservation identifiers.
type IDGenerator interface {
	NewID() string
}

// Service implements the inventory operations. Every mutating operation runs
// validation first, then the admin gate, then a load-check-mutate-persist
// sequence serialized per product id so that two concurrent mutations cannot
// both commit against the same stale snapshot.
type Service struct {
	repo      dominv.Repository
	gate      identity.Gate
	ids       IDGenerator
	publisher domevent.Publisher

	locks sync.Map // productID -> *sync.Mutex
}

func NewService(repo dominv.Repository, gate identity.Gate, ids IDGenerator, publisher domevent.Publisher) *Service {
	return &Service{
		repo:      repo,
		gate:      gate,
		ids:       ids,
		publisher: publisher,
	}
}

type GetStockResult struct {
	ProductID         string
	AvailableQuantity int
	ReservedQuantity  int
}

// GetStock is the only ungated operation; any caller may read stock levels.
func (s *Service) GetStock(ctx context.Context, productID string) (*GetStockResult, error) {
	product, err := s.repo.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, dominv.ErrNotFound) {
			return nil, apierr.NotFound(notFoundMessage(productID))
		}
		return nil, err
	}
	return &GetStockResult{
		ProductID:         product.ProductID,
		AvailableQuantity: product.AvailableQuantity,
		ReservedQuantity:  product.ReservedQuantity,
	}, nil
}

type CreateInput struct {
	ProductID       string
	InitialQuantity int
	Credential      string
}

type CreateResult struct {
	Message         string
	ProductID       string
	InitialQuantity int
}

// Create inserts a new product. Unlike the other operations it converts any
// unexpected storage failure into a generic internal-error outcome.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if in.InitialQuantity < 0 {
		return nil, apierr.Validation(fieldQuantity, msgQuantityPositive)
	}
	if err := s.requireAdmin(ctx, in.Credential); err != nil {
		return nil, err
	}

	unlock := s.lock(in.ProductID)
	defer unlock()

	exists, err := s.repo.Exists(ctx, in.ProductID)
	if err != nil {
		return nil, apierr.Internal(msgInternal)
	}
	if exists {
		return nil, apierr.Conflict(fmt.Sprintf("product %s already exists", in.ProductID))
	}

	product, err := dominv.NewProduct(in.ProductID, in.InitialQuantity)
	if err != nil {
		return nil, apierr.Validation(fieldQuantity, msgQuantityPositive)
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, apierr.Internal(msgInternal)
	}

	logging.FromContext(ctx).Info("product_created",
		zap.String("product_id", in.ProductID),
		zap.Int("initial_quantity", in.InitialQuantity),
	)
	s.publish(ctx, dominv.NewProductCreatedEvent(in.ProductID, in.InitialQuantity))

	return &CreateResult{
		Message:         "product added to inventory",
		ProductID:       product.ProductID,
		InitialQuantity: in.InitialQuantity,
	}, nil
}

type AdjustInput struct {
	ProductID  string
	Quantity   int
	Credential string
}

type AdjustResult struct {
	Message     string
	NewQuantity int
}

func (s *Service) Add(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if in.Quantity <= 0 {
		return nil, apierr.Validation(fieldQuantity, msgQuantityPositive)
	}
	if err := s.requireAdmin(ctx, in.Credential); err != nil {
		return nil, err
	}

	unlock := s.lock(in.ProductID)
	defer unlock()

	product, err := s.loadProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := product.Add(in.Quantity); err != nil {
		return nil, apierr.Validation(fieldQuantity, msgQuantityPositive)
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, dominv.NewStockAddedEvent(in.ProductID, in.Quantity, product.AvailableQuantity))

	return &AdjustResult{
		Message:     "quantity added successfully",
		NewQuantity: product.AvailableQuantity,
	}, nil
}

func (s *Service) Decrease(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if in.Quantity <= 0 {
		return nil, apierr.Validation(fieldQuantity, msgQuantityPositive)
	}
	if err := s.requireAdmin(ctx, in.Credential); err != nil {
		return nil, err
	}

	unlock := s.lock(in.ProductID)
	defer unlock()

	product, err := s.loadProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := product.Decrease(in.Quantity); err != nil {
		if errors.Is(err, dominv.ErrInsufficientStock) {
			return nil, apierr.BadRequest(msgInsufficientStock)
		}
		return nil, apierr.Validation(fieldQuantity, msgQuantityPositive)
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, dominv.NewStockDecreasedEvent(in.ProductID, in.Quantity, product.AvailableQuantity))

	return &AdjustResult{
		Message:     "quantity removed successfully",
		NewQuantity: product.AvailableQuantity,
	}, nil
}

type DeleteResult struct {
	Message string
}

func (s *Service) Delete(ctx context.Context, productID, credential string) (*DeleteResult, error) {
	if err := s.requireAdmin(ctx, credential); err != nil {
		return nil, err
	}

	unlock := s.lock(productID)
	defer unlock()

	exists, err := s.repo.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apierr.NotFound(notFoundMessage(productID))
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("product_deleted",
		zap.String("product_id", productID),
	)
	s.publish(ctx, dominv.NewProductDeletedEvent(productID))

	return &DeleteResult{
		Message: fmt.Sprintf("product %s deleted from inventory", productID),
	}, nil
}

type ReserveResult struct {
	ReservedQuantity int
	ReservationID    string
}

// Reserve moves quantity from available to reserved and mints a fresh opaque
// reservation id. The id is returned to the caller but not persisted.
func (s *Service) Reserve(ctx context.Context, in AdjustInput) (*ReserveResult, error) {
	if in.Quantity <= 0 {
		return nil, apierr.Validation(fieldQuantity, msgQuantityPositive)
	}
	if err := s.requireAdmin(ctx, in.Credential); err != nil {
		return nil, err
	}

	unlock := s.lock(in.ProductID)
	defer unlock()

	product, err := s.loadProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := product.Reserve(in.Quantity); err != nil {
		if errors.Is(err, dominv.ErrInsufficientStock) {
			return nil, apierr.BadRequest(msgInsufficientStock)
		}
		return nil, apierr.Validation(fieldQuantity, msgQuantityPositive)
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	reservationID := s.ids.NewID()
	s.publish(ctx, dominv.NewStockReservedEvent(in.ProductID, in.Quantity, reservationID))

	return &ReserveResult{
		ReservedQuantity: in.Quantity,
		ReservationID:    reservationID,
	}, nil
}

type ReleaseInput struct {
	ProductID     string
	Quantity      int
	ReservationID string
	Credential    string
}

type ReleaseResult struct {
	ReleasedQuantity int
}

// Release moves quantity from reserved back to available. The reservation id
// must be present but is not checked against any stored reservation; the
// release is bounded only by the product's current reserved quantity.
func (s *Service) Release(ctx context.Context, in ReleaseInput) (*ReleaseResult, error) {
	if in.Quantity <= 0 {
		return nil, apierr.Validation(fieldQuantity, msgQuantityPositive)
	}
	if in.ReservationID == "" {
		return nil, apierr.Validation(fieldReservationID, msgReservationIDRequired)
	}
	if err := s.requireAdmin(ctx, in.Credential); err != nil {
		return nil, err
	}

	unlock := s.lock(in.ProductID)
	defer unlock()

	product, err := s.loadProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := product.Release(in.Quantity); err != nil {
		if errors.Is(err, dominv.ErrInsufficientReserved) {
			return nil, apierr.BadRequest(msgInsufficientReserved)
		}
		return nil, apierr.Validation(fieldQuantity, msgQuantityPositive)
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, dominv.NewStockReleasedEvent(in.ProductID, in.Quantity, in.ReservationID))

	return &ReleaseResult{ReleasedQuantity: in.Quantity}, nil
}

// requireAdmin runs the two-stage gate: authentication failures (including an
// unreachable identity service) yield an unauthorized outcome, a resolved
// non-admin role yields a forbidden one. Both stages fail closed.
func (s *Service) requireAdmin(ctx context.Context, credential string) error {
	userID, err := s.gate.Authenticate(ctx, credential)
	if err != nil {
		return apierr.Unauthorized(msgUnauthorized)
	}
	role, err := s.gate.Authorize(ctx, credential, userID)
	if err != nil || role != identity.RoleAdmin {
		if role == "" {
			role = fallbackRole
		}
		return apierr.Forbidden(msgForbidden, map[string]any{
			"requiredRole": identity.RoleAdmin,
			"userRole":     role,
		})
	}
	return nil
}

func (s *Service) loadProduct(ctx context.Context, productID string) (*dominv.Product, error) {
	product, err := s.repo.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, dominv.ErrNotFound) {
			return nil, apierr.NotFound(notFoundMessage(productID))
		}
		return nil, err
	}
	return product, nil
}

func (s *Service) lock(productID string) func() {
	v, _ := s.locks.LoadOrStore(productID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// publish is best-effort: a failed event dispatch never fails the operation.
func (s *Service) publish(ctx context.Context, e domevent.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			zap.String("event", e.EventName()),
			zap.Error(err),
		)
	}
}

func notFoundMessage(productID string) string {
	return fmt.Sprintf("product %s not found", productID)
}
