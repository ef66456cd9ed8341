// Package document composes a quotation into a renderer-independent document
// tree. Composition is pure: the same input always yields the same tree.
package document

import (
	"github.com/straye-as/quotation-api/internal/domain"
)

// MaxItemImages caps the inline images rendered per line item
const MaxItemImages = 3

// LogoPosition places the letterhead logo
type LogoPosition string

const (
	LogoLeft   LogoPosition = "left"
	LogoCenter LogoPosition = "center"
	LogoRight  LogoPosition = "right"
)

// Options control optional parts of the rendered document
type Options struct {
	LogoPosition   LogoPosition `json:"logoPosition" validate:"omitempty,oneof=left center right"`
	ShowItemImages bool         `json:"showItemImages"`
}

// Customer is the recipient projection printed in the info panel
type Customer struct {
	Name          string `json:"name" validate:"required"`
	CompanyName   string `json:"companyName,omitempty"`
	Address       string `json:"address,omitempty"`
	Country       string `json:"country,omitempty"`
	ContactPerson string `json:"contactPerson,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

// Item is one resolved quotation line
type Item struct {
	ProductName    string   `json:"productName" validate:"required"`
	Description    string   `json:"description,omitempty"`
	Quantity       float64  `json:"quantity"`
	Unit           string   `json:"unit,omitempty"`
	UnitPrice      float64  `json:"unitPrice"`
	DiscountAmount float64  `json:"discountAmount"`
	TotalPrice     float64  `json:"totalPrice"`
	Images         []string `json:"images,omitempty"`
}

// Quotation is the quotation projection with computed totals
type Quotation struct {
	Number         string      `json:"number" validate:"required"`
	Date           domain.Date `json:"date"`
	ExpiryDate     domain.Date `json:"expiryDate"`
	Currency       string      `json:"currency" validate:"required"`
	TradeTerms     string      `json:"tradeTerms,omitempty"`
	PaymentTerms   string      `json:"paymentTerms,omitempty"`
	DeliveryTerms  string      `json:"deliveryTerms,omitempty"`
	PickupLocation string      `json:"pickupLocation,omitempty"`
	Items          []Item      `json:"items" validate:"dive"`
	Subtotal       float64     `json:"subtotal"`
	TaxRate        float64     `json:"taxRate"`
	TaxAmount      float64     `json:"taxAmount"`
	Total          float64     `json:"total"`
	Notes          string      `json:"notes,omitempty"`
}

// Input is everything the composer needs
type Input struct {
	Company   domain.Company `json:"company"`
	Customer  Customer       `json:"customer"`
	Quotation Quotation      `json:"quotation"`
	Options   Options        `json:"options"`
}

// Field is a labelled value
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Letterhead is the issuing company block at the top of the page
type Letterhead struct {
	Logo         string       `json:"logo,omitempty"`
	LogoPosition LogoPosition `json:"logoPosition"`
	Name         string       `json:"name"`
	NameEn       string       `json:"nameEn,omitempty"`
	Lines        []string     `json:"lines,omitempty"`
}

// InfoPanel is the two-column block under the title
type InfoPanel struct {
	Recipient []string `json:"recipient"`
	Metadata  []Field  `json:"metadata"`
}

// ItemRow is one rendered line of the item table
type ItemRow struct {
	Number      int      `json:"number"`
	Product     string   `json:"product"`
	Description string   `json:"description,omitempty"`
	Quantity    string   `json:"quantity"`
	Unit        string   `json:"unit,omitempty"`
	UnitPrice   string   `json:"unitPrice"`
	Discount    string   `json:"discount,omitempty"`
	Total       string   `json:"total"`
	Images      []string `json:"images,omitempty"`
}

// ItemTable holds the column headings and rows in input order
type ItemTable struct {
	Columns []string  `json:"columns"`
	Rows    []ItemRow `json:"rows"`
}

// TotalLine is one row of the totals block
type TotalLine struct {
	Label    string `json:"label"`
	Amount   string `json:"amount"`
	Emphasis bool   `json:"emphasis,omitempty"`
}

// Signature is the sign-off block
type Signature struct {
	Company string   `json:"company"`
	Labels  []string `json:"labels"`
}

// Document is the composed tree handed to the rasterizer.
// Empty sections are omitted by the renderer.
type Document struct {
	Letterhead  Letterhead  `json:"letterhead"`
	Title       string      `json:"title"`
	Info        InfoPanel   `json:"info"`
	Items       ItemTable   `json:"items"`
	Totals      []TotalLine `json:"totals"`
	Terms       []Field     `json:"terms,omitempty"`
	BankDetails []Field     `json:"bankDetails,omitempty"`
	Signature   Signature   `json:"signature"`
	Footer      string      `json:"footer,omitempty"`
}

// ImageCount returns the number of item images the document embeds
func (d *Document) ImageCount() int {
	n := 0
	for _, row := range d.Items.Rows {
		n += len(row.Images)
	}
	return n
}
