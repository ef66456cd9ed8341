package domain

// TableSummary reports the row count of one workbook table
type TableSummary struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// ImportResult is returned after a workbook import replaced the stored value
type ImportResult struct {
	Scope  string         `json:"scope"`
	Tables []TableSummary `json:"tables"`
	// Created lists optional tables that were absent from the upload and created empty
	Created []string `json:"created,omitempty"`
}

// AssetDTO describes an uploaded logo or product image
type AssetDTO struct {
	Reference   string `json:"reference"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// SweepResult reports what the expiry sweep changed
type SweepResult struct {
	Scopes  int `json:"scopes"`
	Expired int `json:"expired"`
}

// QuotationOptions lists the values a client may choose from when composing a
// quotation. Empty Currencies or Incoterms accept any value.
type QuotationOptions struct {
	Currencies    []string          `json:"currencies"`
	Incoterms     []string          `json:"incoterms"`
	Statuses      []QuotationStatus `json:"statuses"`
	TemplateTypes []TemplateType    `json:"templateTypes"`
}
