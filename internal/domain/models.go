package domain

import (
	"time"
)

// DateLayout is the on-disk and wire format for calendar dates
const DateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form. The zero value is the empty string.
type Date string

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time parses the date. ok is false for the empty or malformed date.
func (d Date) Time() (t time.Time, ok bool) {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AddDays returns the date n days later. Malformed dates are returned unchanged.
func (d Date) AddDays(n int) Date {
	t, ok := d.Time()
	if !ok {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// Before reports whether d is strictly before other. Malformed dates never compare.
func (d Date) Before(other Date) bool {
	a, ok1 := d.Time()
	b, ok2 := other.Time()
	return ok1 && ok2 && a.Before(b)
}

// QuotationStatus represents the lifecycle state of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
	QuotationStatusExpired  QuotationStatus = "expired"
)

// IsOpen reports whether a quotation in this status can still expire
func (s QuotationStatus) IsOpen() bool {
	return s == QuotationStatusDraft || s == QuotationStatusSent
}

// TemplateType classifies reusable terms text
type TemplateType string

const (
	TemplateTypePayment  TemplateType = "payment"
	TemplateTypeDelivery TemplateType = "delivery"
	TemplateTypeWarranty TemplateType = "warranty"
	TemplateTypeOther    TemplateType = "other"
)

// Company is the issuing company printed on the letterhead
type Company struct {
	ID               string    `json:"id"`
	Name             string    `json:"name" validate:"required,max=200"`
	NameEn           string    `json:"nameEn,omitempty" validate:"max=200"`
	Address          string    `json:"address,omitempty" validate:"max=500"`
	AddressEn        string    `json:"addressEn,omitempty" validate:"max=500"`
	Phone            string    `json:"phone,omitempty" validate:"max=50"`
	Email            string    `json:"email,omitempty" validate:"omitempty,email"`
	Website          string    `json:"website,omitempty" validate:"max=255"`
	TaxNumber        string    `json:"taxNumber,omitempty" validate:"max=50"`
	BankName         string    `json:"bankName,omitempty" validate:"max=200"`
	BankAccount      string    `json:"bankAccount,omitempty" validate:"max=100"`
	BankSwift        string    `json:"bankSwift,omitempty" validate:"max=20"`
	BankIntermediary string    `json:"bankIntermediary,omitempty" validate:"max=500"`
	Logo             string    `json:"logo,omitempty"`
	IsDefault        bool      `json:"isDefault"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Product is a catalogue entry quoted on line items
type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name" validate:"required,max=200"`
	NameEn         string            `json:"nameEn,omitempty" validate:"max=200"`
	Description    string            `json:"description,omitempty" validate:"max=32767"`
	DescriptionEn  string            `json:"descriptionEn,omitempty" validate:"max=32767"`
	Category       string            `json:"category,omitempty" validate:"max=100"`
	Unit           string            `json:"unit,omitempty" validate:"max=20"`
	MinPrice       float64           `json:"minPrice" validate:"gte=0"`
	MaxPrice       float64           `json:"maxPrice" validate:"gte=0"`
	MinOrder       float64           `json:"minOrder" validate:"gte=0"`
	Currency       string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	Specifications map[string]string `json:"specifications"`
	IsActive       bool              `json:"isActive"`
	Images         []string          `json:"images"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// Customer is the recipient of a quotation
type Customer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name" validate:"required,max=200"`
	ContactPerson string    `json:"contactPerson,omitempty" validate:"max=200"`
	Email         string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string    `json:"phone,omitempty" validate:"max=50"`
	Address       string    `json:"address,omitempty" validate:"max=500"`
	Country       string    `json:"country,omitempty" validate:"max=100"`
	CompanyName   string    `json:"companyName,omitempty" validate:"max=200"`
	TaxNumber     string    `json:"taxNumber,omitempty" validate:"max=50"`
	Notes         string    `json:"notes,omitempty" validate:"max=32767"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Quotation is the quotation header. Items are stored in their own table and
// replaced wholesale on every save of the quotation.
type Quotation struct {
	ID              string          `json:"id"`
	QuotationNumber string          `json:"quotationNumber" validate:"max=50"`
	CompanyID       string          `json:"companyId" validate:"required"`
	CustomerID      string          `json:"customerId" validate:"required"`
	QuotationDate   Date            `json:"quotationDate" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate      Date            `json:"expiryDate" validate:"omitempty,datetime=2006-01-02"`
	Currency        string          `json:"currency" validate:"omitempty,len=3"`
	PaymentTerms    string          `json:"paymentTerms,omitempty" validate:"max=32767"`
	DeliveryTerms   string          `json:"deliveryTerms,omitempty" validate:"max=32767"`
	PickupLocation  string          `json:"pickupLocation,omitempty" validate:"max=500"`
	TradeTerms      string          `json:"tradeTerms,omitempty" validate:"max=20"`
	Subtotal        float64         `json:"subtotal"`
	TaxRate         float64         `json:"taxRate" validate:"gte=0,lte=100"`
	TaxAmount       float64         `json:"taxAmount"`
	TotalAmount     float64         `json:"totalAmount"`
	Status          QuotationStatus `json:"status" validate:"omitempty,oneof=draft sent accepted rejected expired"`
	Notes           string          `json:"notes,omitempty" validate:"max=32767"`
	Items           []QuotationItem `json:"items" validate:"required,min=1,dive"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// QuotationItem is one line of a quotation
type QuotationItem struct {
	ID             string   `json:"id"`
	QuotationID    string   `json:"quotationId"`
	ProductID      string   `json:"productId,omitempty"`
	ProductName    string   `json:"productName" validate:"required,max=200"`
	Description    string   `json:"description,omitempty" validate:"max=32767"`
	Quantity       float64  `json:"quantity" validate:"gt=0"`
	Unit           string   `json:"unit,omitempty" validate:"max=20"`
	UnitPrice      float64  `json:"unitPrice" validate:"gte=0"`
	DiscountRate   float64  `json:"discountRate" validate:"gte=0,lte=100"`
	DiscountAmount float64  `json:"discountAmount" validate:"gte=0"`
	TotalPrice     float64  `json:"totalPrice"`
	Images         []string `json:"images"`
	SortOrder      int      `json:"sortOrder"`
}

// Template is reusable terms text (payment, delivery, warranty)
type Template struct {
	ID        string       `json:"id"`
	Name      string       `json:"name" validate:"required,max=200"`
	Type      TemplateType `json:"type" validate:"required,oneof=payment delivery warranty other"`
	Content   string       `json:"content" validate:"max=32767"`
	IsDefault bool         `json:"isDefault"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
