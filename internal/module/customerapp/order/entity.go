package order

import "time"

const (
	StatusPending   string = "PENDING"
	StatusPaid      string = "PAID"
	StatusDelivered string = "DELIVERED"
	StatusExpired   string = "EXPIRED"
	StatusAbandoned string = "ABANDONED"
)

const (
	SettlementStatusUnsettled string = "UNSETTLED"
	SettlementStatusSettled   string = "SETTLED"
)

// Order is one purchase of photos from a gallery. The monetary fields are a
// snapshot of the pricing quote at placement time; the settlement status only
// moves UNSETTLED to SETTLED, and only through a settlement batch.
type Order struct {
	ID                 string
	PaymentMethod      string
	TransactionID      *string
	VirtualAccount     *string
	Status             string
	SettlementStatus   string
	CustomerID         int64
	CustomerName       string
	CustomerEmail      string
	GalleryID          string
	PhotographerID     int64
	Quantity           int64
	BaseUnitPrice      int64
	EffectiveUnitPrice int64
	TierName           string
	DiscountPercentage float64
	DiscountAmount     int64
	TotalAmount        int64
	Items              []Item
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Item is one ordered photo. The same photo may appear on several items when
// the customer orders extra prints.
type Item struct {
	ID        int64
	OrderID   string
	PhotoID   string
	GalleryID string
	FileKey   string
	UnitPrice int64
}

// TransactionDetail is the immutable money-split record written once when
// payment is confirmed. gross = net + fee and net = photographer + platform
// hold exactly; the record is never recomputed from later configuration.
type TransactionDetail struct {
	OrderID                string
	GrossAmount            int64
	GatewayFee             int64
	NetAmount              int64
	PhotographerShare      int64
	PlatformShare          int64
	PhotographerPercentage float64
	CreatedAt              time.Time
}
