package workbook_test

import (
	"strings"
	"testing"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func populated() *workbook.Workbook {
	wb := workbook.New()
	workbook.CompanyCodec.Write(wb, []domain.Company{sampleCompany()})
	workbook.ProductCodec.Write(wb, []domain.Product{sampleProduct()})
	workbook.CustomerCodec.Write(wb, []domain.Customer{sampleCustomer()})
	workbook.QuotationCodec.Write(wb, []domain.Quotation{sampleQuotation()})
	workbook.QuotationItemCodec.Write(wb, []domain.QuotationItem{sampleItem()})
	workbook.TemplateCodec.Write(wb, []domain.Template{sampleTemplate()})
	return wb
}

func TestMarshal_RoundTrip(t *testing.T) {
	data, err := workbook.Marshal(populated())
	require.NoError(t, err)

	wb, err := workbook.Unmarshal(data)
	require.NoError(t, err)

	assert.Empty(t, wb.Missing(workbook.TableNames...))
	assert.Equal(t, []domain.Company{sampleCompany()}, workbook.CompanyCodec.Read(wb))
	assert.Equal(t, []domain.Product{sampleProduct()}, workbook.ProductCodec.Read(wb))
	assert.Equal(t, []domain.Customer{sampleCustomer()}, workbook.CustomerCodec.Read(wb))
	assert.Equal(t, []domain.Quotation{sampleQuotation()}, workbook.QuotationCodec.Read(wb))
	assert.Equal(t, []domain.QuotationItem{sampleItem()}, workbook.QuotationItemCodec.Read(wb))
	assert.Equal(t, []domain.Template{sampleTemplate()}, workbook.TemplateCodec.Read(wb))
}

func TestMarshal_SheetOrderAndHeaders(t *testing.T) {
	data, err := workbook.Marshal(workbook.New())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytesReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, workbook.TableNames, f.GetSheetList())

	rows, err := f.GetRows(workbook.TableCompany)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, workbook.Header(workbook.TableCompany), rows[0])
}

func TestMarshal_NumbersAreNumericCells(t *testing.T) {
	data, err := workbook.Marshal(populated())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytesReader(data))
	require.NoError(t, err)
	defer f.Close()

	// taxRate is column M of the quotation sheet
	value, err := f.GetCellValue(workbook.TableQuotation, "M2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "8.5", value)
}

func TestMarshal_RejectsOversizedCell(t *testing.T) {
	wb := populated()
	tpl := sampleTemplate()
	tpl.Content = strings.Repeat("x", excelize.TotalCellChars+1)
	workbook.TemplateCodec.Write(wb, []domain.Template{tpl})

	_, err := workbook.Marshal(wb)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "content")

	// exactly at the limit is stored intact
	tpl.Content = strings.Repeat("é", excelize.TotalCellChars)
	workbook.TemplateCodec.Write(wb, []domain.Template{tpl})
	data, err := workbook.Marshal(wb)
	require.NoError(t, err)
	back, err := workbook.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, tpl.Content, workbook.TemplateCodec.Read(back)[0].Content)
}

func TestUnmarshal_ForeignLayout(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", workbook.TableCustomer))
	_, err := f.NewSheet("Notes")
	require.NoError(t, err)

	// columns in a non-canonical order with an extra column and a blank row
	require.NoError(t, f.SetSheetRow(workbook.TableCustomer, "A1", &[]interface{}{"country", "extra", "name", "id"}))
	require.NoError(t, f.SetSheetRow(workbook.TableCustomer, "A2", &[]interface{}{"NO", "ignored", "Ola", "cu-9"}))
	require.NoError(t, f.SetSheetRow(workbook.TableCustomer, "A4", &[]interface{}{"SE", "", "Sven", "cu-10"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	wb, err := workbook.Unmarshal(buf.Bytes())
	require.NoError(t, err)

	assert.False(t, wb.Has("Notes"))
	assert.Equal(t, []string{workbook.TableCompany, workbook.TableProduct}, wb.Missing(workbook.RequiredTables...))

	customers := workbook.CustomerCodec.Read(wb)
	require.Len(t, customers, 2)
	assert.Equal(t, domain.Customer{ID: "cu-9", Name: "Ola", Country: "NO"}, customers[0])
	assert.Equal(t, domain.Customer{ID: "cu-10", Name: "Sven", Country: "SE"}, customers[1])

	created := wb.EnsureTables()
	assert.Equal(t, []string{
		workbook.TableCompany,
		workbook.TableProduct,
		workbook.TableQuotation,
		workbook.TableQuotationItem,
		workbook.TableTemplate,
	}, created)
}

func TestUnmarshal_NotAWorkbook(t *testing.T) {
	_, err := workbook.Unmarshal([]byte("plain text"))
	assert.Error(t, err)

	_, err = workbook.Decode("%%% not base64 %%%")
	assert.Error(t, err)
}

func TestCanonicalize(t *testing.T) {
	wb := workbook.New()
	wb.Put(&workbook.Table{
		Name:   workbook.TableTemplate,
		Header: []string{"name", "id", "isDefault"},
		Rows:   [][]string{{"Warranty", "t-5", "Yes"}},
	})

	workbook.Canonicalize(wb)

	table, _ := wb.Table(workbook.TableTemplate)
	assert.Equal(t, workbook.Header(workbook.TableTemplate), table.Header)
	assert.Equal(t, []domain.Template{{ID: "t-5", Name: "Warranty", IsDefault: true}}, workbook.TemplateCodec.Read(wb))
}

func TestEncodeDecode(t *testing.T) {
	value, err := workbook.Encode(populated())
	require.NoError(t, err)

	wb, err := workbook.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, []domain.Product{sampleProduct()}, workbook.ProductCodec.Read(wb))
}
