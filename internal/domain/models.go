package domain

type Farmer struct {
	ID          string `db:"id" json:"id"`
	UserID      string `db:"user_id" json:"-"`
	FarmName    string `db:"farm_name" json:"farm_name"`
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
	Location    string `db:"location" json:"location"`
	Phone       string `db:"phone" json:"phone"`
	Description string `db:"description" json:"description"`
	CreatedAt   string `db:"created_at" json:"created_at"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}

type Product struct {
	ID          string  `db:"id" json:"id"`
	FarmerID    string  `db:"farmer_id" json:"farmer_id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
	Unit        string  `db:"unit" json:"unit"` // lb | kg | bunch | dozen | each
	Category    string  `db:"category" json:"category"`
	ImageURL    string  `db:"image_url" json:"image_url"`
	Available   bool    `db:"available" json:"available"` // farmer-toggled availability flag
	Active      bool    `db:"active" json:"-"`            // false = tombstoned (deleted listing)
	ViewCount   int     `db:"view_count" json:"view_count"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at,omitempty"`
}

type Inquiry struct {
	ID        string `db:"id" json:"id"`
	ProductID string `db:"product_id" json:"product_id"`
	// FarmerID is denormalized from the product at creation and frozen:
	// reassigning the product later must not move existing inquiries.
	FarmerID     string        `db:"farmer_id" json:"farmer_id"`
	BuyerID      string        `db:"buyer_id" json:"buyer_id,omitempty"` // empty for anonymous buyers
	CustomerName string        `db:"customer_name" json:"customer_name"`
	ContactPhone string        `db:"contact_phone" json:"contact_phone"`
	Message      string        `db:"message" json:"message"`
	Status       InquiryStatus `db:"status" json:"status"`
	CreatedAt    string        `db:"created_at" json:"created_at"`
	UpdatedAt    string        `db:"updated_at" json:"updated_at,omitempty"`
}

// NotificationEvent kinds.
const (
	EventCreated       = "created"
	EventStatusChanged = "status_changed"
)

// NotificationEvent is one entry of a farmer's durable event log. Seq is
// monotonic and gapless per farmer; sessions use it for gap detection on
// reconnect.
type NotificationEvent struct {
	ID        string `db:"id" json:"id"`
	FarmerID  string `db:"farmer_id" json:"farmer_id"`
	InquiryID string `db:"inquiry_id" json:"inquiry_id"`
	Kind      string `db:"kind" json:"kind"`
	Payload   string `db:"payload" json:"payload"`
	Seq       int64  `db:"seq" json:"seq"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type User struct {
	ID     string `db:"id" json:"id"`
	Email  string `db:"email" json:"email"`
	Name   string `db:"name" json:"name"`
	Hash   string `db:"password_hash" json:"-"`
	Active bool   `db:"active" json:"active"`
	Role   Role   `db:"role" json:"role"`
}
