package helpers

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"
	"image"
	"image/png"
	"strings"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/medbridge/backend/models"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

//go:embed templates/*.html
var pdfTemplates embed.FS

var receiptTemplate = template.Must(template.ParseFS(pdfTemplates, "templates/receipt.html"))

type RequestPdf struct {
	bodies []string
}

func (r *RequestPdf) ParseTemplate(t *template.Template, data interface{}) error {
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, data); err != nil {
		return err
	}
	r.bodies = append(r.bodies, buf.String())
	return nil
}

const (
	ConstHTMLNewPage = `
	<div class="new-page"></div>
	`
)

func (r *RequestPdf) GeneratePDF() (*bytes.Buffer, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, errors.Wrap(err, "wkhtmltopdf not available")
	}

	pdfg.AddPage(wkhtmltopdf.NewPageReader(strings.NewReader(strings.Join(r.bodies, ConstHTMLNewPage))))

	if err := pdfg.Create(); err != nil {
		return nil, err
	}

	return pdfg.Buffer(), nil
}

// RenderReceiptHTML renders the payment receipt page, with a QR code of the payment id.
func RenderReceiptHTML(receipt models.ReceiptPDFHTML) (string, error) {
	img, err := qrcode.New(receipt.PaymentID, qrcode.Medium)
	if err != nil {
		return "", err
	}

	encoded, err := EncodeImage(img.Image(256))
	if err != nil {
		return "", err
	}
	receipt.Image = template.URL("data:image/png;base64," + encoded)
	receipt.PatientName = RemoveAccents(receipt.PatientName)
	receipt.DoctorName = RemoveAccents(receipt.DoctorName)

	r := RequestPdf{}
	if err := r.ParseTemplate(receiptTemplate, receipt); err != nil {
		return "", err
	}

	return r.bodies[0], nil
}

func GenerateReceiptPDF(receipt models.ReceiptPDFHTML) (*bytes.Buffer, error) {
	body, err := RenderReceiptHTML(receipt)
	if err != nil {
		return nil, err
	}

	r := RequestPdf{bodies: []string{body}}
	return r.GeneratePDF()
}

func EncodeImage(m image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
