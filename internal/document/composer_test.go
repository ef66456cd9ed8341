package document_test

import (
	"testing"

	"github.com/straye-as/quotation-api/internal/document"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() document.Input {
	return document.Input{
		Company: domain.Company{
			Name:        "Acme Trading",
			NameEn:      "Acme Trading Ltd",
			Address:     "1 Harbour Road",
			Phone:       "0123",
			Email:       "sales@acme.test",
			BankName:    "First Bank",
			BankAccount: "000123",
			BankSwift:   "FBNKUS33",
		},
		Customer: document.Customer{Name: "Jane Buyer", CompanyName: "Buyer Inc", Country: "US"},
		Quotation: document.Quotation{
			Number:     "Q-20240315-001",
			Date:       "2024-03-15",
			ExpiryDate: "2024-04-14",
			Currency:   "USD",
			Items: []document.Item{
				{ProductName: "Pipe", Quantity: 2, UnitPrice: 10, TotalPrice: 20},
				{ProductName: "Valve", Quantity: 1, UnitPrice: 5, TotalPrice: 5},
			},
			Subtotal: 25,
			Total:    25,
		},
	}
}

func TestCompose_NoTaxLineWhenRateIsZero(t *testing.T) {
	doc := document.Compose(baseInput())

	require.Len(t, doc.Totals, 2)
	assert.Equal(t, document.TotalLine{Label: "Subtotal", Amount: "USD 25.00"}, doc.Totals[0])
	assert.Equal(t, document.TotalLine{Label: "Total", Amount: "USD 25.00", Emphasis: true}, doc.Totals[1])
}

func TestCompose_TaxLine(t *testing.T) {
	in := baseInput()
	in.Quotation.Subtotal = 1000
	in.Quotation.TaxRate = 8.5
	in.Quotation.TaxAmount = 85
	in.Quotation.Total = 1085

	doc := document.Compose(in)

	require.Len(t, doc.Totals, 3)
	assert.Equal(t, "USD 1000.00", doc.Totals[0].Amount)
	assert.Equal(t, "Tax (8.5%)", doc.Totals[1].Label)
	assert.Equal(t, "USD 85.00", doc.Totals[1].Amount)
	assert.Equal(t, "USD 1085.00", doc.Totals[2].Amount)
}

func TestCompose_ItemsKeepInputOrder(t *testing.T) {
	in := baseInput()
	in.Quotation.Items = []document.Item{
		{ProductName: "Zeta", Quantity: 1.5, UnitPrice: 3, TotalPrice: 4.5},
		{ProductName: "Alpha", Quantity: 1, UnitPrice: 1, DiscountAmount: 0.1, TotalPrice: 0.9},
		{ProductName: "Mid", Quantity: 10, UnitPrice: 0, TotalPrice: 0},
	}

	doc := document.Compose(in)

	require.Len(t, doc.Items.Rows, 3)
	for i, name := range []string{"Zeta", "Alpha", "Mid"} {
		assert.Equal(t, i+1, doc.Items.Rows[i].Number)
		assert.Equal(t, name, doc.Items.Rows[i].Product)
	}
	assert.Equal(t, "1.5", doc.Items.Rows[0].Quantity)
	assert.Equal(t, "USD 4.50", doc.Items.Rows[0].Total)
	assert.Equal(t, "", doc.Items.Rows[0].Discount)
	assert.Equal(t, "USD 0.10", doc.Items.Rows[1].Discount)
}

func TestCompose_ItemImagesCapped(t *testing.T) {
	in := baseInput()
	in.Quotation.Items[0].Images = []string{"1.png", "2.png", "3.png", "4.png", "5.png"}
	in.Quotation.Items[1].Images = []string{"only.png"}

	hidden := document.Compose(in)
	assert.Zero(t, hidden.ImageCount())

	in.Options.ShowItemImages = true
	shown := document.Compose(in)
	assert.Equal(t, []string{"1.png", "2.png", "3.png"}, shown.Items.Rows[0].Images)
	assert.Equal(t, []string{"only.png"}, shown.Items.Rows[1].Images)
	assert.Equal(t, 4, shown.ImageCount())
}

func TestCompose_OptionalFieldsAbsent(t *testing.T) {
	in := baseInput()
	doc := document.Compose(in)

	assert.Empty(t, doc.Letterhead.Logo)
	assert.Equal(t, document.LogoLeft, doc.Letterhead.LogoPosition)
	for _, f := range doc.BankDetails {
		assert.NotEqual(t, "Intermediary Bank", f.Label)
	}
	assert.Empty(t, doc.Terms)
	for _, f := range doc.Info.Metadata {
		assert.NotEmpty(t, f.Value, f.Label)
	}

	in.Company.BankName = ""
	in.Company.BankAccount = ""
	in.Company.BankSwift = ""
	assert.Nil(t, document.Compose(in).BankDetails)
}

func TestCompose_BilingualLetterheadAndBank(t *testing.T) {
	in := baseInput()
	in.Company.AddressEn = "1 Harbour Rd, EN"
	in.Company.BankIntermediary = "Intermediary NY"
	in.Company.Logo = "ab/logo.png"
	in.Options.LogoPosition = document.LogoCenter

	doc := document.Compose(in)

	assert.Equal(t, "Acme Trading Ltd", doc.Letterhead.NameEn)
	assert.Contains(t, doc.Letterhead.Lines, "1 Harbour Rd, EN")
	assert.Equal(t, document.LogoCenter, doc.Letterhead.LogoPosition)
	assert.Equal(t, "ab/logo.png", doc.Letterhead.Logo)
	assert.Equal(t, document.Field{Label: "Intermediary Bank", Value: "Intermediary NY"}, doc.BankDetails[len(doc.BankDetails)-1])
	assert.Equal(t, "Acme Trading | 0123 | sales@acme.test", doc.Footer)
}

func TestCompose_Deterministic(t *testing.T) {
	in := baseInput()
	in.Quotation.PaymentTerms = "Net 30"
	assert.Equal(t, document.Compose(in), document.Compose(in))
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		currency string
		amount   float64
		want     string
	}{
		{"USD", 1234, "USD 1234.00"},
		{"EUR", 0.5, "EUR 0.50"},
		{"USD", 1234567.891, "USD 1234567.89"},
		{"NOK", -12.3, "NOK -12.30"},
		{"", 7, "7.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, document.FormatMoney(tt.currency, tt.amount))
	}

	assert.Equal(t, "Tax (8.5%)", document.TaxLabel(8.5))
	assert.Equal(t, "Tax (25%)", document.TaxLabel(25))
	assert.Equal(t, "2", document.FormatQuantity(2))
}
