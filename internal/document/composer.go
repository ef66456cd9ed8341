package document

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Title heads every quotation document
const Title = "QUOTATION"

var itemColumns = []string{"No.", "Product", "Description", "Qty", "Unit", "Unit Price", "Discount", "Amount"}

// Compose builds the document tree for in
func Compose(in Input) *Document {
	q := in.Quotation
	return &Document{
		Letterhead:  letterhead(in),
		Title:       Title,
		Info:        infoPanel(in.Customer, q),
		Items:       itemTable(q, in.Options.ShowItemImages),
		Totals:      totals(q),
		Terms:       terms(q),
		BankDetails: bankDetails(in),
		Signature: Signature{
			Company: in.Company.Name,
			Labels:  []string{"Authorized Signature", "Customer Acceptance"},
		},
		Footer: joinPresent(" | ", in.Company.Name, in.Company.Phone, in.Company.Email, in.Company.Website),
	}
}

func letterhead(in Input) Letterhead {
	c := in.Company
	position := in.Options.LogoPosition
	if position == "" {
		position = LogoLeft
	}
	lh := Letterhead{
		Logo:         c.Logo,
		LogoPosition: position,
		Name:         c.Name,
		NameEn:       c.NameEn,
	}
	lh.Lines = appendPresent(lh.Lines, c.Address, c.AddressEn)
	if contact := joinPresent("  ", prefixed("Tel: ", c.Phone), prefixed("Email: ", c.Email)); contact != "" {
		lh.Lines = append(lh.Lines, contact)
	}
	lh.Lines = appendPresent(lh.Lines, c.Website, prefixed("Tax No.: ", c.TaxNumber))
	return lh
}

func infoPanel(c Customer, q Quotation) InfoPanel {
	var recipient []string
	recipient = appendPresent(recipient, c.Name, c.CompanyName, c.Address, c.Country,
		prefixed("Attn: ", c.ContactPerson), prefixed("Email: ", c.Email), prefixed("Tel: ", c.Phone))

	var meta []Field
	meta = appendField(meta, "Quotation No.", q.Number)
	meta = appendField(meta, "Date", string(q.Date))
	meta = appendField(meta, "Valid Until", string(q.ExpiryDate))
	meta = appendField(meta, "Currency", q.Currency)
	meta = appendField(meta, "Trade Terms", q.TradeTerms)
	return InfoPanel{Recipient: recipient, Metadata: meta}
}

func itemTable(q Quotation, showImages bool) ItemTable {
	rows := make([]ItemRow, len(q.Items))
	for i, item := range q.Items {
		row := ItemRow{
			Number:      i + 1,
			Product:     item.ProductName,
			Description: item.Description,
			Quantity:    FormatQuantity(item.Quantity),
			Unit:        item.Unit,
			UnitPrice:   FormatMoney(q.Currency, item.UnitPrice),
			Total:       FormatMoney(q.Currency, item.TotalPrice),
		}
		if item.DiscountAmount != 0 {
			row.Discount = FormatMoney(q.Currency, item.DiscountAmount)
		}
		if showImages && len(item.Images) > 0 {
			n := min(len(item.Images), MaxItemImages)
			row.Images = append([]string(nil), item.Images[:n]...)
		}
		rows[i] = row
	}
	return ItemTable{Columns: itemColumns, Rows: rows}
}

func totals(q Quotation) []TotalLine {
	lines := []TotalLine{{Label: "Subtotal", Amount: FormatMoney(q.Currency, q.Subtotal)}}
	if q.TaxRate != 0 {
		lines = append(lines, TotalLine{
			Label:  TaxLabel(q.TaxRate),
			Amount: FormatMoney(q.Currency, q.TaxAmount),
		})
	}
	return append(lines, TotalLine{Label: "Total", Amount: FormatMoney(q.Currency, q.Total), Emphasis: true})
}

func terms(q Quotation) []Field {
	var out []Field
	out = appendField(out, "Payment Terms", q.PaymentTerms)
	out = appendField(out, "Delivery Terms", q.DeliveryTerms)
	out = appendField(out, "Pickup Location", q.PickupLocation)
	out = appendField(out, "Notes", q.Notes)
	return out
}

func bankDetails(in Input) []Field {
	c := in.Company
	var out []Field
	out = appendField(out, "Beneficiary", c.NameEn)
	out = appendField(out, "Bank", c.BankName)
	out = appendField(out, "Account", c.BankAccount)
	out = appendField(out, "SWIFT", c.BankSwift)
	out = appendField(out, "Intermediary Bank", c.BankIntermediary)
	// a beneficiary name alone is not bank details
	if len(out) == 1 && out[0].Label == "Beneficiary" {
		return nil
	}
	return out
}

// FormatMoney renders amount with two decimals prefixed by the currency code,
// e.g. "USD 1234.00". No digit grouping is applied.
func FormatMoney(currency string, amount float64) string {
	value := decimal.NewFromFloat(amount).StringFixed(2)
	if currency == "" {
		return value
	}
	return currency + " " + value
}

// FormatQuantity renders a quantity without trailing zeros
func FormatQuantity(q float64) string {
	return decimal.NewFromFloat(q).String()
}

// TaxLabel labels the tax line with its percentage, e.g. "Tax (8.5%)"
func TaxLabel(rate float64) string {
	return fmt.Sprintf("Tax (%s%%)", decimal.NewFromFloat(rate).String())
}

func prefixed(prefix, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return prefix + value
}

func appendPresent(lines []string, values ...string) []string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			lines = append(lines, v)
		}
	}
	return lines
}

func appendField(fields []Field, label, value string) []Field {
	if strings.TrimSpace(value) == "" {
		return fields
	}
	return append(fields, Field{Label: label, Value: value})
}

func joinPresent(sep string, values ...string) string {
	return strings.Join(appendPresent(nil, values...), sep)
}
