package service

import (
	"github.com/shopspring/decimal"
	"github.com/straye-as/quotation-api/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// CalculateItemTotal sets the discount amount and line total of an item.
// A positive discount rate takes precedence over a stated discount amount.
func CalculateItemTotal(item *domain.QuotationItem) {
	gross := decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.UnitPrice))
	discount := decimal.NewFromFloat(item.DiscountAmount)
	if item.DiscountRate > 0 {
		discount = gross.Mul(decimal.NewFromFloat(item.DiscountRate)).Div(hundred)
	}
	discount = discount.Round(2)
	item.DiscountAmount = discount.InexactFloat64()
	item.TotalPrice = gross.Sub(discount).Round(2).InexactFloat64()
}

// CalculateTotals recomputes every line and the quotation subtotal, tax and total
func CalculateTotals(q *domain.Quotation) {
	subtotal := decimal.Zero
	for i := range q.Items {
		CalculateItemTotal(&q.Items[i])
		subtotal = subtotal.Add(decimal.NewFromFloat(q.Items[i].TotalPrice))
	}
	tax := subtotal.Mul(decimal.NewFromFloat(q.TaxRate)).Div(hundred).Round(2)

	q.Subtotal = subtotal.Round(2).InexactFloat64()
	q.TaxAmount = tax.InexactFloat64()
	q.TotalAmount = subtotal.Add(tax).Round(2).InexactFloat64()
}
