package mapper

import (
	"github.com/straye-as/quotation-api/internal/document"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/workbook"
)

// ToDocumentCustomer converts Customer to the recipient projection
func ToDocumentCustomer(customer *domain.Customer) document.Customer {
	return document.Customer{
		Name:          customer.Name,
		CompanyName:   customer.CompanyName,
		Address:       customer.Address,
		Country:       customer.Country,
		ContactPerson: customer.ContactPerson,
		Email:         customer.Email,
		Phone:         customer.Phone,
	}
}

// ToDocumentItem converts QuotationItem to a document line. Items without
// images of their own fall back to the product's images.
func ToDocumentItem(item *domain.QuotationItem, product *domain.Product) document.Item {
	images := item.Images
	if len(images) == 0 && product != nil {
		images = product.Images
	}
	return document.Item{
		ProductName:    item.ProductName,
		Description:    item.Description,
		Quantity:       item.Quantity,
		Unit:           item.Unit,
		UnitPrice:      item.UnitPrice,
		DiscountAmount: item.DiscountAmount,
		TotalPrice:     item.TotalPrice,
		Images:         images,
	}
}

// ToDocumentQuotation converts Quotation to the quotation projection.
// products is keyed by product id and may be nil.
func ToDocumentQuotation(q *domain.Quotation, products map[string]domain.Product) document.Quotation {
	items := make([]document.Item, len(q.Items))
	for i := range q.Items {
		var product *domain.Product
		if p, ok := products[q.Items[i].ProductID]; ok {
			product = &p
		}
		items[i] = ToDocumentItem(&q.Items[i], product)
	}
	return document.Quotation{
		Number:         q.QuotationNumber,
		Date:           q.QuotationDate,
		ExpiryDate:     q.ExpiryDate,
		Currency:       q.Currency,
		TradeTerms:     q.TradeTerms,
		PaymentTerms:   q.PaymentTerms,
		DeliveryTerms:  q.DeliveryTerms,
		PickupLocation: q.PickupLocation,
		Items:          items,
		Subtotal:       q.Subtotal,
		TaxRate:        q.TaxRate,
		TaxAmount:      q.TaxAmount,
		Total:          q.TotalAmount,
		Notes:          q.Notes,
	}
}

// ToDocumentInput assembles the composer input for a stored quotation
func ToDocumentInput(
	company *domain.Company,
	customer *domain.Customer,
	q *domain.Quotation,
	products map[string]domain.Product,
	opts document.Options,
) document.Input {
	return document.Input{
		Company:   *company,
		Customer:  ToDocumentCustomer(customer),
		Quotation: ToDocumentQuotation(q, products),
		Options:   opts,
	}
}

// ToTableSummaries reports row counts for every table in canonical order
func ToTableSummaries(wb *workbook.Workbook) []domain.TableSummary {
	summaries := make([]domain.TableSummary, 0, len(workbook.TableNames))
	for _, name := range workbook.TableNames {
		rows := 0
		if t, ok := wb.Table(name); ok {
			rows = t.Len()
		}
		summaries = append(summaries, domain.TableSummary{Name: name, Rows: rows})
	}
	return summaries
}

// ToAssetDTO describes a stored asset
func ToAssetDTO(reference, filename, contentType string, size int64) domain.AssetDTO {
	return domain.AssetDTO{
		Reference:   reference,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
	}
}
