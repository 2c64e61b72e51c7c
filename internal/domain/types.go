// Package domain holds the value types shared across services, repositories,
// and handlers.
package domain

import "time"

// Order statuses mirror the payment provider vocabulary; orders are created
// pending and reconciled by the webhook.
const (
	OrderStatusPending   = "pending"
	OrderStatusApproved  = "approved"
	OrderStatusInProcess = "in_process"
	OrderStatusRejected  = "rejected"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

// Product is a catalog entry. Physical attributes feed the shipping estimator;
// zero values fall back to the carrier minimums.
type Product struct {
	ID          string    `firestore:"-" json:"id"`
	Name        string    `firestore:"name" json:"name"`
	Description string    `firestore:"description" json:"description"`
	Price       float64   `firestore:"price" json:"price"`
	ImageURL    string    `firestore:"imageUrl" json:"image_url"`
	WeightKg    float64   `firestore:"weightKg" json:"weight_kg"`
	LengthCm    float64   `firestore:"lengthCm" json:"length_cm"`
	WidthCm     float64   `firestore:"widthCm" json:"width_cm"`
	HeightCm    float64   `firestore:"heightCm" json:"height_cm"`
	Active      bool      `firestore:"active" json:"active"`
	CreatedAt   time.Time `firestore:"createdAt" json:"created_at"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updated_at"`
}

// CartLineItem is a client-submitted cart line. Only the product reference and
// quantity are trusted; prices are re-read from the catalog.
type CartLineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ShippingItem describes one cart line for a shipping quote. Nil attributes
// mean the client did not provide them and the estimator applies fallbacks.
type ShippingItem struct {
	Quantity int
	WeightKg *float64
	LengthCm *float64
	WidthCm  *float64
	HeightCm *float64
}

// ShippingOption is a single carrier service quote. Price is a decimal string
// with a point separator ("23.50"), preserving the carrier's cent digits.
type ShippingOption struct {
	Carrier      string `json:"carrier"`
	ServiceCode  string `json:"service_code"`
	Price        string `json:"price"`
	DeliveryDays int    `json:"delivery_days"`
}

// PayerInfo is the buyer contact snapshot forwarded to the payment provider
// and stored on the order.
type PayerInfo struct {
	Name  string `firestore:"name" json:"name"`
	Email string `firestore:"email" json:"email"`
}

// OrderItem is a server-priced order line.
type OrderItem struct {
	ProductID string  `firestore:"productId" json:"product_id"`
	Name      string  `firestore:"name" json:"name"`
	UnitPrice float64 `firestore:"unitPrice" json:"unit_price"`
	Quantity  int     `firestore:"quantity" json:"quantity"`
}

// Order is the persisted record of a checkout attempt. PaymentDetail holds the
// raw provider payment blob captured by the webhook for audit.
type Order struct {
	ID            string         `firestore:"-" json:"id"`
	UserID        string         `firestore:"userId" json:"user_id"`
	Status        string         `firestore:"status" json:"status"`
	Total         float64        `firestore:"total" json:"total"`
	Currency      string         `firestore:"currency" json:"currency"`
	Items         []OrderItem    `firestore:"items" json:"items"`
	Payer         PayerInfo      `firestore:"payer" json:"payer"`
	PreferenceID  string         `firestore:"preferenceId" json:"preference_id"`
	PaymentID     string         `firestore:"paymentId,omitempty" json:"payment_id,omitempty"`
	PaymentDetail map[string]any `firestore:"paymentDetail,omitempty" json:"-"`
	CreatedAt     time.Time      `firestore:"createdAt" json:"created_at"`
	UpdatedAt     time.Time      `firestore:"updatedAt" json:"updated_at"`
}

// SiteSettings is the single storefront settings document edited by admins.
type SiteSettings struct {
	StoreName    string            `firestore:"storeName" json:"store_name"`
	ContactEmail string            `firestore:"contactEmail" json:"contact_email"`
	Phone        string            `firestore:"phone" json:"phone"`
	Address      string            `firestore:"address" json:"address"`
	SocialLinks  map[string]string `firestore:"socialLinks,omitempty" json:"social_links,omitempty"`
	UpdatedAt    time.Time         `firestore:"updatedAt" json:"updated_at"`
}

// Page is an admin-editable static page (privacy, terms, returns). HTML is
// sanitized before persistence.
type Page struct {
	Slug      string    `firestore:"-" json:"slug"`
	Title     string    `firestore:"title" json:"title"`
	HTML      string    `firestore:"html" json:"html"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updated_at"`
}
