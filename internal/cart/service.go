package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milletmart/milletmart-backend/internal/pricing"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
	pkgerrors "github.com/milletmart/milletmart-backend/pkg/errors"
)

// Service exposes the session cart operations.
type Service interface {
	GetCart(ctx context.Context, sessionID string) ([]models.CartItem, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (*models.CartItem, error)
	UpdateItem(ctx context.Context, sessionID string, id uuid.UUID, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, sessionID string, id uuid.UUID) error
	Clear(ctx context.Context, sessionID string) error
	Summary(ctx context.Context, sessionID string) (pricing.Summary, error)
}

// AddItemInput is the validated add-to-cart payload. Metadata carries the
// legacy serialized form older clients send; when SelectedWeight is empty the
// weight is recovered from it.
type AddItemInput struct {
	ProductID      uuid.UUID
	Quantity       int
	SelectedWeight string
	Metadata       json.RawMessage
}

type service struct {
	repo     Repository
	products productGetter
	rules    pricing.Rules
}

// NewService constructs the cart service.
func NewService(repo Repository, products productGetter, rules pricing.Rules) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, products: products, rules: rules}, nil
}

func (s *service) GetCart(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	rows, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	return rows, nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*models.CartItem, error) {
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock")
	}

	item := &models.CartItem{
		SessionID:      sessionID,
		ProductID:      product.ID,
		Quantity:       quantity,
		SelectedWeight: NormalizeSelectedWeight(input.SelectedWeight, input.Metadata),
	}

	added, err := s.repo.AddLine(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart line")
	}
	return added, nil
}

func (s *service) UpdateItem(ctx context.Context, sessionID string, id uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	if _, err := s.ownedLine(ctx, sessionID, id); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateQuantity(ctx, id, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return updated, nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, id uuid.UUID) error {
	if _, err := s.ownedLine(ctx, sessionID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := s.repo.ClearSession(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) Summary(ctx context.Context, sessionID string) (pricing.Summary, error) {
	rows, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return pricing.Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}

	lines := make([]pricing.Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, pricing.Line{
			UnitPrice: pricing.ResolveUnitPrice(row.Product, row.SelectedWeight),
			Quantity:  row.Quantity,
		})
	}
	return pricing.Summarize(lines, s.rules), nil
}

// ownedLine loads the line and hides lines owned by other sessions behind a
// not-found.
func (s *service) ownedLine(ctx context.Context, sessionID string, id uuid.UUID) (*models.CartItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if item.SessionID != sessionID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return item, nil
}

// legacyMetadata is the serialized shape older clients send in place of a
// selected_weight field.
type legacyMetadata struct {
	SelectedWeight string `json:"selectedWeight"`
}

// NormalizeSelectedWeight reduces the two ways clients express a weight
// choice to the single column value the unique index is built on. The
// explicit field wins; otherwise the legacy metadata blob is parsed, and
// anything unparsable counts as no selection.
func NormalizeSelectedWeight(selectedWeight string, metadata json.RawMessage) string {
	if trimmed := strings.TrimSpace(selectedWeight); trimmed != "" {
		return trimmed
	}
	if len(metadata) == 0 {
		return ""
	}

	var parsed legacyMetadata
	if err := json.Unmarshal(metadata, &parsed); err == nil && parsed.SelectedWeight != "" {
		return strings.TrimSpace(parsed.SelectedWeight)
	}

	// Some clients double-encode the blob as a JSON string.
	var inner string
	if err := json.Unmarshal(metadata, &inner); err == nil && inner != "" {
		if err := json.Unmarshal([]byte(inner), &parsed); err == nil {
			return strings.TrimSpace(parsed.SelectedWeight)
		}
	}
	return ""
}
