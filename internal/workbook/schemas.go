package workbook

import (
	"github.com/straye-as/quotation-api/internal/domain"
)

// CompanyCodec stores issuing companies
var CompanyCodec = Codec[domain.Company]{
	table: TableCompany,
	columns: []Column{
		{"id", KindString},
		{"name", KindString},
		{"nameEn", KindString},
		{"address", KindString},
		{"addressEn", KindString},
		{"phone", KindString},
		{"email", KindString},
		{"website", KindString},
		{"taxNumber", KindString},
		{"bankName", KindString},
		{"bankAccount", KindString},
		{"bankSwift", KindString},
		{"bankIntermediary", KindString},
		{"logo", KindString},
		{"isDefault", KindBool},
		{"createdAt", KindTimestamp},
		{"updatedAt", KindTimestamp},
	},
	id: func(c domain.Company) string { return c.ID },
	encode: func(c domain.Company) []string {
		return []string{
			c.ID,
			c.Name,
			c.NameEn,
			c.Address,
			c.AddressEn,
			c.Phone,
			c.Email,
			c.Website,
			c.TaxNumber,
			c.BankName,
			c.BankAccount,
			c.BankSwift,
			c.BankIntermediary,
			c.Logo,
			formatBool(c.IsDefault),
			formatTime(c.CreatedAt),
			formatTime(c.UpdatedAt),
		}
	},
	decode: func(r Row) domain.Company {
		return domain.Company{
			ID:               r.String("id"),
			Name:             r.String("name"),
			NameEn:           r.String("nameEn"),
			Address:          r.String("address"),
			AddressEn:        r.String("addressEn"),
			Phone:            r.String("phone"),
			Email:            r.String("email"),
			Website:          r.String("website"),
			TaxNumber:        r.String("taxNumber"),
			BankName:         r.String("bankName"),
			BankAccount:      r.String("bankAccount"),
			BankSwift:        r.String("bankSwift"),
			BankIntermediary: r.String("bankIntermediary"),
			Logo:             r.String("logo"),
			IsDefault:        r.Bool("isDefault"),
			CreatedAt:        r.Time("createdAt"),
			UpdatedAt:        r.Time("updatedAt"),
		}
	},
}

// ProductCodec stores catalogue products
var ProductCodec = Codec[domain.Product]{
	table: TableProduct,
	columns: []Column{
		{"id", KindString},
		{"name", KindString},
		{"nameEn", KindString},
		{"description", KindString},
		{"descriptionEn", KindString},
		{"category", KindString},
		{"unit", KindString},
		{"minPrice", KindNumber},
		{"maxPrice", KindNumber},
		{"minOrder", KindNumber},
		{"currency", KindString},
		{"specifications", KindJSON},
		{"isActive", KindBool},
		{"images", KindJSON},
		{"createdAt", KindTimestamp},
		{"updatedAt", KindTimestamp},
	},
	id: func(p domain.Product) string { return p.ID },
	encode: func(p domain.Product) []string {
		return []string{
			p.ID,
			p.Name,
			p.NameEn,
			p.Description,
			p.DescriptionEn,
			p.Category,
			p.Unit,
			formatFloat(p.MinPrice),
			formatFloat(p.MaxPrice),
			formatFloat(p.MinOrder),
			p.Currency,
			formatStringMap(p.Specifications),
			formatBool(p.IsActive),
			formatStrings(p.Images),
			formatTime(p.CreatedAt),
			formatTime(p.UpdatedAt),
		}
	},
	decode: func(r Row) domain.Product {
		return domain.Product{
			ID:             r.String("id"),
			Name:           r.String("name"),
			NameEn:         r.String("nameEn"),
			Description:    r.String("description"),
			DescriptionEn:  r.String("descriptionEn"),
			Category:       r.String("category"),
			Unit:           r.String("unit"),
			MinPrice:       r.Float("minPrice"),
			MaxPrice:       r.Float("maxPrice"),
			MinOrder:       r.Float("minOrder"),
			Currency:       r.String("currency"),
			Specifications: r.StringMap("specifications"),
			IsActive:       r.Bool("isActive"),
			Images:         r.Strings("images"),
			CreatedAt:      r.Time("createdAt"),
			UpdatedAt:      r.Time("updatedAt"),
		}
	},
}

// CustomerCodec stores quotation recipients
var CustomerCodec = Codec[domain.Customer]{
	table: TableCustomer,
	columns: []Column{
		{"id", KindString},
		{"name", KindString},
		{"contactPerson", KindString},
		{"email", KindString},
		{"phone", KindString},
		{"address", KindString},
		{"country", KindString},
		{"companyName", KindString},
		{"taxNumber", KindString},
		{"notes", KindString},
		{"createdAt", KindTimestamp},
		{"updatedAt", KindTimestamp},
	},
	id: func(c domain.Customer) string { return c.ID },
	encode: func(c domain.Customer) []string {
		return []string{
			c.ID,
			c.Name,
			c.ContactPerson,
			c.Email,
			c.Phone,
			c.Address,
			c.Country,
			c.CompanyName,
			c.TaxNumber,
			c.Notes,
			formatTime(c.CreatedAt),
			formatTime(c.UpdatedAt),
		}
	},
	decode: func(r Row) domain.Customer {
		return domain.Customer{
			ID:            r.String("id"),
			Name:          r.String("name"),
			ContactPerson: r.String("contactPerson"),
			Email:         r.String("email"),
			Phone:         r.String("phone"),
			Address:       r.String("address"),
			Country:       r.String("country"),
			CompanyName:   r.String("companyName"),
			TaxNumber:     r.String("taxNumber"),
			Notes:         r.String("notes"),
			CreatedAt:     r.Time("createdAt"),
			UpdatedAt:     r.Time("updatedAt"),
		}
	},
}

// QuotationCodec stores quotation headers. Items live in QuotationItemCodec's table.
var QuotationCodec = Codec[domain.Quotation]{
	table: TableQuotation,
	columns: []Column{
		{"id", KindString},
		{"quotationNumber", KindString},
		{"companyId", KindString},
		{"customerId", KindString},
		{"quotationDate", KindDate},
		{"expiryDate", KindDate},
		{"currency", KindString},
		{"paymentTerms", KindString},
		{"deliveryTerms", KindString},
		{"pickupLocation", KindString},
		{"tradeTerms", KindString},
		{"subtotal", KindNumber},
		{"taxRate", KindNumber},
		{"taxAmount", KindNumber},
		{"totalAmount", KindNumber},
		{"status", KindString},
		{"notes", KindString},
		{"createdAt", KindTimestamp},
		{"updatedAt", KindTimestamp},
	},
	id: func(q domain.Quotation) string { return q.ID },
	encode: func(q domain.Quotation) []string {
		return []string{
			q.ID,
			q.QuotationNumber,
			q.CompanyID,
			q.CustomerID,
			string(q.QuotationDate),
			string(q.ExpiryDate),
			q.Currency,
			q.PaymentTerms,
			q.DeliveryTerms,
			q.PickupLocation,
			q.TradeTerms,
			formatFloat(q.Subtotal),
			formatFloat(q.TaxRate),
			formatFloat(q.TaxAmount),
			formatFloat(q.TotalAmount),
			string(q.Status),
			q.Notes,
			formatTime(q.CreatedAt),
			formatTime(q.UpdatedAt),
		}
	},
	decode: func(r Row) domain.Quotation {
		return domain.Quotation{
			ID:              r.String("id"),
			QuotationNumber: r.String("quotationNumber"),
			CompanyID:       r.String("companyId"),
			CustomerID:      r.String("customerId"),
			QuotationDate:   r.Date("quotationDate"),
			ExpiryDate:      r.Date("expiryDate"),
			Currency:        r.String("currency"),
			PaymentTerms:    r.String("paymentTerms"),
			DeliveryTerms:   r.String("deliveryTerms"),
			PickupLocation:  r.String("pickupLocation"),
			TradeTerms:      r.String("tradeTerms"),
			Subtotal:        r.Float("subtotal"),
			TaxRate:         r.Float("taxRate"),
			TaxAmount:       r.Float("taxAmount"),
			TotalAmount:     r.Float("totalAmount"),
			Status:          domain.QuotationStatus(r.String("status")),
			Notes:           r.String("notes"),
			CreatedAt:       r.Time("createdAt"),
			UpdatedAt:       r.Time("updatedAt"),
		}
	},
}

// QuotationItemCodec stores quotation lines keyed by quotationId
var QuotationItemCodec = Codec[domain.QuotationItem]{
	table: TableQuotationItem,
	columns: []Column{
		{"id", KindString},
		{"quotationId", KindString},
		{"productId", KindString},
		{"productName", KindString},
		{"description", KindString},
		{"quantity", KindNumber},
		{"unit", KindString},
		{"unitPrice", KindNumber},
		{"discountRate", KindNumber},
		{"discountAmount", KindNumber},
		{"totalPrice", KindNumber},
		{"images", KindJSON},
		{"sortOrder", KindNumber},
	},
	id: func(i domain.QuotationItem) string { return i.ID },
	encode: func(i domain.QuotationItem) []string {
		return []string{
			i.ID,
			i.QuotationID,
			i.ProductID,
			i.ProductName,
			i.Description,
			formatFloat(i.Quantity),
			i.Unit,
			formatFloat(i.UnitPrice),
			formatFloat(i.DiscountRate),
			formatFloat(i.DiscountAmount),
			formatFloat(i.TotalPrice),
			formatStrings(i.Images),
			formatInt(i.SortOrder),
		}
	},
	decode: func(r Row) domain.QuotationItem {
		return domain.QuotationItem{
			ID:             r.String("id"),
			QuotationID:    r.String("quotationId"),
			ProductID:      r.String("productId"),
			ProductName:    r.String("productName"),
			Description:    r.String("description"),
			Quantity:       r.Float("quantity"),
			Unit:           r.String("unit"),
			UnitPrice:      r.Float("unitPrice"),
			DiscountRate:   r.Float("discountRate"),
			DiscountAmount: r.Float("discountAmount"),
			TotalPrice:     r.Float("totalPrice"),
			Images:         r.Strings("images"),
			SortOrder:      r.Int("sortOrder"),
		}
	},
}

// TemplateCodec stores reusable terms text
var TemplateCodec = Codec[domain.Template]{
	table: TableTemplate,
	columns: []Column{
		{"id", KindString},
		{"name", KindString},
		{"type", KindString},
		{"content", KindString},
		{"isDefault", KindBool},
		{"createdAt", KindTimestamp},
		{"updatedAt", KindTimestamp},
	},
	id: func(t domain.Template) string { return t.ID },
	encode: func(t domain.Template) []string {
		return []string{
			t.ID,
			t.Name,
			string(t.Type),
			t.Content,
			formatBool(t.IsDefault),
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		}
	},
	decode: func(r Row) domain.Template {
		return domain.Template{
			ID:        r.String("id"),
			Name:      r.String("name"),
			Type:      domain.TemplateType(r.String("type")),
			Content:   r.String("content"),
			IsDefault: r.Bool("isDefault"),
			CreatedAt: r.Time("createdAt"),
			UpdatedAt: r.Time("updatedAt"),
		}
	},
}

// Header returns the canonical header of a table, nil for unknown names
func Header(table string) []string {
	columns := Columns(table)
	if columns == nil {
		return nil
	}
	return columnNames(columns)
}

// Columns returns the canonical column schema of a table, nil for unknown names
func Columns(table string) []Column {
	switch table {
	case TableCompany:
		return CompanyCodec.columns
	case TableProduct:
		return ProductCodec.columns
	case TableCustomer:
		return CustomerCodec.columns
	case TableQuotation:
		return QuotationCodec.columns
	case TableQuotationItem:
		return QuotationItemCodec.columns
	case TableTemplate:
		return TemplateCodec.columns
	default:
		return nil
	}
}

// Canonicalize re-encodes every table through its codec so headers and cells
// are in canonical form. Used when accepting an imported workbook.
func Canonicalize(wb *Workbook) {
	CompanyCodec.Write(wb, CompanyCodec.Read(wb))
	ProductCodec.Write(wb, ProductCodec.Read(wb))
	CustomerCodec.Write(wb, CustomerCodec.Read(wb))
	QuotationCodec.Write(wb, QuotationCodec.Read(wb))
	QuotationItemCodec.Write(wb, QuotationItemCodec.Read(wb))
	TemplateCodec.Write(wb, TemplateCodec.Read(wb))
}
