package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/turboost/api/internal/domain"
	pfirestore "github.com/turboost/api/internal/platform/firestore"
	"github.com/turboost/api/internal/repositories"
)

const orderCollection = "orders"

// OrderRepository persists checkout orders in Firestore.
type OrderRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[orderDocument]
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	return &OrderRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[orderDocument](provider, orderCollection, nil, nil),
	}, nil
}

// Insert stores a new order under its pre-assigned ID.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	id := strings.TrimSpace(order.ID)
	if id == "" {
		return errors.New("order repository: id is required")
	}
	_, err := r.base.Set(ctx, id, orderDocumentFrom(order))
	return err
}

// FindByID loads a single order.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	doc, err := r.base.Get(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return domain.Order{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// ListByUser returns the orders owned by the given user, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errors.New("order repository: user id is required")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("userId", "==", uid).OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return ordersFromDocuments(docs), nil
}

// ListAll returns every order, newest first. Admin views only.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return ordersFromDocuments(docs), nil
}

// ApplyPaymentUpdate sets the reconciliation fields on an order inside a
// transaction, so the existence check and the write are atomic under
// provider redelivery. Reapplying the same update is a no-op at the data
// level.
func (r *OrderRepository) ApplyPaymentUpdate(ctx context.Context, orderID string, update repositories.OrderUpdate) error {
	id := strings.TrimSpace(orderID)
	if id == "" {
		return errors.New("order repository: id is required")
	}

	doc, err := r.base.DocumentRef(ctx, id)
	if err != nil {
		return err
	}

	updatedAt := update.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	updates := []firestore.Update{
		{Path: "status", Value: strings.TrimSpace(update.Status)},
		{Path: "updatedAt", Value: updatedAt},
	}
	if pid := strings.TrimSpace(update.PaymentID); pid != "" {
		updates = append(updates, firestore.Update{Path: "paymentId", Value: pid})
	}
	if update.PaymentDetail != nil {
		updates = append(updates, firestore.Update{Path: "paymentDetail", Value: update.PaymentDetail})
	}

	return r.provider.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(doc); err != nil {
			return err
		}
		return tx.Update(doc, updates)
	})
}

func ordersFromDocuments(docs []pfirestore.Document[orderDocument]) []domain.Order {
	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.Data.toDomain(doc.ID))
	}
	return orders
}

type orderDocument struct {
	UserID        string              `firestore:"userId"`
	Status        string              `firestore:"status"`
	Total         float64             `firestore:"total"`
	Currency      string              `firestore:"currency"`
	Items         []orderItemDocument `firestore:"items"`
	Payer         payerDocument       `firestore:"payer"`
	PreferenceID  string              `firestore:"preferenceId"`
	PaymentID     string              `firestore:"paymentId,omitempty"`
	PaymentDetail map[string]any      `firestore:"paymentDetail,omitempty"`
	CreatedAt     time.Time           `firestore:"createdAt"`
	UpdatedAt     time.Time           `firestore:"updatedAt"`
}

type orderItemDocument struct {
	ProductID string  `firestore:"productId"`
	Name      string  `firestore:"name"`
	UnitPrice float64 `firestore:"unitPrice"`
	Quantity  int     `firestore:"quantity"`
}

type payerDocument struct {
	Name  string `firestore:"name,omitempty"`
	Email string `firestore:"email,omitempty"`
}

func orderDocumentFrom(o domain.Order) orderDocument {
	items := make([]orderItemDocument, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	doc := orderDocument{
		UserID:        strings.TrimSpace(o.UserID),
		Status:        strings.TrimSpace(o.Status),
		Total:         o.Total,
		Currency:      strings.TrimSpace(o.Currency),
		Items:         items,
		Payer:         payerDocument{Name: strings.TrimSpace(o.Payer.Name), Email: strings.TrimSpace(o.Payer.Email)},
		PreferenceID:  strings.TrimSpace(o.PreferenceID),
		PaymentID:     strings.TrimSpace(o.PaymentID),
		PaymentDetail: o.PaymentDetail,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}
	return doc
}

func (d orderDocument) toDomain(id string) domain.Order {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return domain.Order{
		ID:            id,
		UserID:        d.UserID,
		Status:        d.Status,
		Total:         d.Total,
		Currency:      d.Currency,
		Items:         items,
		Payer:         domain.PayerInfo{Name: d.Payer.Name, Email: d.Payer.Email},
		PreferenceID:  d.PreferenceID,
		PaymentID:     d.PaymentID,
		PaymentDetail: d.PaymentDetail,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// Ensure interface compliance.
var _ repositories.OrderRepository = (*OrderRepository)(nil)
