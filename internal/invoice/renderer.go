package invoice

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ImageOpener resolves a line item's image reference to a readable
// byte stream. The uploads store satisfies this.
type ImageOpener interface {
	Open(path string) (io.ReadCloser, error)
}

// Layout in points on portrait A4. Row placement is cursor-relative so
// an order with enough items flows onto additional pages.
const (
	marginX      = 50.0
	titleY       = 60.0
	ruleY        = 135.0
	firstRowY    = 240.0
	rowStep      = 100.0
	imageWidth   = 40.0
	imageRaise   = 70.0 // image sits this far above the row baseline
	qtyX         = 350.0
	priceX       = 450.0
	bottomMargin = 80.0
)

// PDFRenderer draws the invoice document: centered heading, divider
// rule, one row per line item (image, title, qty, price) and a
// right-aligned total.
type PDFRenderer struct {
	images ImageOpener
}

func NewPDFRenderer(images ImageOpener) *PDFRenderer {
	return &PDFRenderer{images: images}
}

func (r *PDFRenderer) Render(ctx context.Context, order *entity.Order, w io.Writer) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()

	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetXY(0, titleY)
	pdf.CellFormat(pageW, 32, "Invoice", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 16)
	pdf.SetX(0)
	pdf.CellFormat(pageW, 20, "Order ID: "+order.ID, "", 1, "C", false, 0, "")

	pdf.SetLineWidth(3)
	pdf.SetLineCapStyle("round")
	pdf.Line(marginX, ruleY, pageW-marginX, ruleY)

	total := decimal.Zero
	y := firstRowY
	for _, it := range order.Items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if y > pageH-bottomMargin {
			pdf.AddPage()
			y = firstRowY
		}

		if err := r.placeImage(pdf, it.ImagePath, y); err != nil {
			return err
		}

		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(marginX, y, fmt.Sprintf("Title: %q", it.Title))
		pdf.Text(qtyX, y, fmt.Sprintf("Qty: %d", it.Qty))
		pdf.SetXY(priceX, y-12)
		pdf.CellFormat(pageW-marginX-priceX, 14, "Price: $ "+it.UnitPrice.String(), "", 0, "R", false, 0, "")

		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty))))
		y += rowStep
	}

	pdf.SetFont("Helvetica", "", 16)
	pdf.SetXY(qtyX, y)
	pdf.CellFormat(pageW-marginX-qtyX, 20, "Total: $ "+total.StringFixed(2), "", 0, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// Output flushes the whole document through w; a failed sink write
	// surfaces here.
	return pdf.Output(w)
}

func (r *PDFRenderer) placeImage(pdf *fpdf.Fpdf, path string, y float64) error {
	typ, ok := imageType(path)
	if !ok {
		return fmt.Errorf("%w: unsupported image %s", ErrMissingAsset, path)
	}
	opt := fpdf.ImageOptions{ImageType: typ}
	if pdf.GetImageInfo(path) == nil {
		rc, err := r.images.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrMissingAsset, path)
		}
		pdf.RegisterImageOptionsReader(path, opt, rc)
		rc.Close()
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMissingAsset, path, err)
		}
	}
	pdf.ImageOptions(path, marginX, y-imageRaise, imageWidth, 0, false, opt, 0, "")
	return nil
}

func imageType(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "PNG", true
	case ".jpg", ".jpeg":
		return "JPG", true
	case ".gif":
		return "GIF", true
	default:
		return "", false
	}
}
