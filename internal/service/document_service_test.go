package service_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/straye-as/quotation-api/internal/document"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/render"
	"github.com/straye-as/quotation-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDocumentFilename(t *testing.T) {
	tests := []struct {
		number string
		format render.Format
		want   string
	}{
		{"Q-20240315-001", render.FormatPDF, "Quotation-Q-20240315-001.pdf"},
		{"Q/2024 01", render.FormatPNG, "Quotation-Q_2024_01.png"},
		{"", render.FormatPDF, "Quotation-draft.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, service.DocumentFilename(tt.number, tt.format))
	}
}

func TestDocumentService_GenerateForQuotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	company, customer, product := env.seed(t)

	logo, err := env.assetSvc.Upload(ctx, "logo.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	company.Logo = logo.Reference
	_, err = env.companies.Save(ctx, scope, company)
	require.NoError(t, err)

	q, err := env.quotations.Save(ctx, scope, &domain.Quotation{
		CompanyID:    company.ID,
		CustomerID:   customer.ID,
		TaxRate:      8.5,
		PaymentTerms: "30 days net",
		Items:        []domain.QuotationItem{{ProductID: product.ID, Quantity: 4, UnitPrice: 120}},
	})
	require.NoError(t, err)

	pdf, err := env.documents.GenerateForQuotation(ctx, scope, q.ID, service.DocumentRequest{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.Equal(t, "Quotation-Q-20240315-001.pdf", pdf.Filename)
	assert.True(t, bytes.HasPrefix(pdf.Data, []byte("%PDF")))

	img, err := env.documents.GenerateForQuotation(ctx, scope, q.ID, service.DocumentRequest{
		Options: document.Options{LogoPosition: document.LogoCenter, ShowItemImages: true},
		Page:    render.PageOptions{Format: render.FormatPNG, Orientation: render.Landscape},
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "Quotation-Q-20240315-001.png", img.Filename)

	decoded, err := png.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	assert.Greater(t, bounds.Dx(), bounds.Dy())
}

func TestDocumentService_MissingReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	company, customer, _ := env.seed(t)

	_, err := env.documents.GenerateForQuotation(ctx, scope, "missing", service.DocumentRequest{})
	assert.True(t, domain.IsNotFound(err))

	q, err := env.quotations.Save(ctx, scope, &domain.Quotation{
		CompanyID:  company.ID,
		CustomerID: customer.ID,
		Items:      []domain.QuotationItem{{ProductName: "Bolt", Quantity: 1, UnitPrice: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, env.customers.Delete(ctx, scope, customer.ID))

	_, err = env.documents.GenerateForQuotation(ctx, scope, q.ID, service.DocumentRequest{})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, customer.ID, nf.ID)
}

func TestDocumentService_GenerateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := document.Input{
		Company:   domain.Company{Name: "Acme"},
		Customer:  document.Customer{Name: "Globex"},
		Quotation: document.Quotation{Currency: "USD"},
	}
	_, err := env.documents.Generate(ctx, input, render.PageOptions{})
	fields := validationFields(t, err)
	assert.Contains(t, fields, "quotation.number")

	input.Quotation.Number = "Q-1"
	_, err = env.documents.Generate(ctx, input, render.PageOptions{Format: "tiff"})
	fields = validationFields(t, err)
	assert.Contains(t, fields, "page.format")

	_, err = env.documents.Generate(ctx, input, render.PageOptions{Margins: &render.Margins{Top: -1}})
	fields = validationFields(t, err)
	assert.Contains(t, fields, "page.margins")

	out, err := env.documents.Generate(ctx, input, render.PageOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Quotation-Q-1.pdf", out.Filename)

	out, err = env.documents.Generate(ctx, input, render.PageOptions{Format: render.FormatPNG, Margins: &render.Margins{}})
	require.NoError(t, err)
	assert.Equal(t, "Quotation-Q-1.png", out.Filename)
}

func TestAssetService_UploadDownload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	data := pngBytes(t)

	asset, err := env.assetSvc.Upload(ctx, "Product Photo.PNG", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "image/png", asset.ContentType)
	assert.Equal(t, int64(len(data)), asset.Size)
	assert.Equal(t, "Product Photo.PNG", asset.Filename)

	rc, contentType, err := env.assetSvc.Download(ctx, asset.Reference)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, env.assetSvc.Delete(ctx, asset.Reference))
	_, _, err = env.assetSvc.Download(ctx, asset.Reference)
	assert.True(t, domain.IsNotFound(err))
}

func TestAssetService_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.assetSvc.Upload(ctx, "notes.txt", bytes.NewReader([]byte("plain text")))
	assert.ErrorIs(t, err, service.ErrUnsupportedAsset)

	_, err = env.assetSvc.Upload(ctx, "empty.png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, service.ErrEmptyUpload)

	_, _, err = env.assetSvc.Download(ctx, "../secrets.png")
	assert.True(t, domain.IsNotFound(err))
}
