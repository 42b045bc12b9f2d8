package services

import (
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"TakeawayPos/app/models"

	qrcode "github.com/skip2/go-qrcode"
)

// PrintDocument is a rendered thermal-printer page ready for dispatch
type PrintDocument struct {
	Title      string `json:"title"`
	Department string `json:"department,omitempty"`
	HTML       string `json:"html"`
	Copies     int    `json:"copies"`
}

// KOTRender describes one kitchen ticket to materialize
type KOTRender struct {
	Number       int
	Items        []models.CartItem
	IsAdditional bool
	Department   string
	Config       models.KOTConfig
}

// BillRender describes one customer bill to materialize
type BillRender struct {
	BillNumber string
	Items      []models.CartItem
	Subtotal   float64
	Tax        float64
	Total      float64
	TaxRate    float64
	Settings   *models.RestaurantSettings
	Config     models.BillConfig
}

// PrinterService turns orders into printable HTML pages and hands them to
// the operating system's print spooler
type PrinterService struct {
	logger      *LoggerService
	printerName string
}

// NewPrinterService creates a new printer service
func NewPrinterService(logger *LoggerService, printerName string) *PrinterService {
	return &PrinterService{
		logger:      logger,
		printerName: printerName,
	}
}

// paperStyle maps a paper size to the font size, padding and page width used
// in the rendered CSS. 80mm is the default.
func paperStyle(paperSize string) (fontSize, padding, maxWidth string) {
	switch paperSize {
	case "58mm":
		return "10px", "5px", "58mm"
	case "112mm":
		return "14px", "12px", "112mm"
	default:
		return "12px", "8px", "80mm"
	}
}

// smallFont returns the secondary font size used for address lines
func smallFont(fontSize string) string {
	switch fontSize {
	case "10px":
		return "9px"
	case "14px":
		return "12px"
	default:
		return "11px"
	}
}

// pageCSS builds the shared thermal page stylesheet
func pageCSS(fontSize, padding, maxWidth string) string {
	return fmt.Sprintf(`body {
  font-family: Arial, Helvetica, sans-serif;
  font-size: %[1]s;
  padding: %[2]s;
  max-width: %[3]s;
  margin: 0 auto;
  box-sizing: border-box;
}
.h { text-align: center; font-weight: 700; }
hr { border: none; border-top: 1px dashed #000; margin: 5px 0; }
@media print {
  @page { size: %[3]s auto; margin: 0; }
  body { width: %[3]s; max-width: %[3]s; padding: %[2]s; margin: 0; }
}`, fontSize, padding, maxWidth)
}

// RenderKOT materializes one kitchen ticket as a self-contained HTML page
func (s *PrinterService) RenderKOT(r KOTRender) PrintDocument {
	fontSize, padding, maxWidth := paperStyle(r.Config.PaperSize)
	title := fmt.Sprintf("KOT-%d", r.Number)
	now := time.Now().Format("02/01/2006, 15:04:05")

	var b strings.Builder
	fmt.Fprintf(&b, `<!doctype html><html><head><meta charset="utf-8"><title>%s</title><style>%s</style></head><body>`,
		title, pageCSS(fontSize, padding, maxWidth))

	switch r.Config.FormatType {
	case "compact":
		fmt.Fprintf(&b, `<div class="h">KOT %d</div>`, r.Number)
		if r.Department != "" {
			fmt.Fprintf(&b, `<div style="text-align:center">[%s]</div>`, html.EscapeString(r.Department))
		}
		if r.IsAdditional {
			b.WriteString(`<div style="text-align:center;font-weight:700;margin:5px 0">*** ADDITIONAL ***</div>`)
		}
		fmt.Fprintf(&b, `<div>%s</div><div>Takeaway</div><hr/>`, now)
		for _, item := range r.Items {
			fmt.Fprintf(&b, `<div>%s x %d</div>`, html.EscapeString(item.Name), item.Quantity)
		}
		b.WriteString(`<hr/><div style="text-align:center">Generated by POS</div>`)

	case "grouped":
		b.WriteString(`<div class="h">KITCHEN ORDER TICKET</div>`)
		if r.IsAdditional {
			b.WriteString(`<div style="text-align:center;font-weight:700;margin:5px 0">*** ADDITIONAL ITEMS ***</div>`)
		}
		fmt.Fprintf(&b, `<div>Date: %s</div><div>Type: Takeaway</div><hr/>`, now)
		for _, group := range groupByDepartment(r.Items) {
			fmt.Fprintf(&b, `<div style="font-weight:700;margin-top:10px">[%s]</div>`, html.EscapeString(group.Department))
			for _, item := range group.Items {
				fmt.Fprintf(&b, `<div><strong>%s</strong> x %d</div>`, html.EscapeString(item.Name), item.Quantity)
			}
		}
		b.WriteString(`<hr/><div style="text-align:center">Generated by Restaurant POS</div>`)

	default: // detailed
		fmt.Fprintf(&b, `<div class="h">KITCHEN ORDER TICKET #%d</div>`, r.Number)
		if r.Department != "" {
			fmt.Fprintf(&b, `<div style="text-align:center">[%s]</div>`, html.EscapeString(r.Department))
		}
		if r.IsAdditional {
			b.WriteString(`<div style="text-align:center;font-weight:700;margin:5px 0">*** ADDITIONAL ITEMS ***</div>`)
		}
		fmt.Fprintf(&b, `<div>Date: %s</div><div>Type: Takeaway</div><hr/>`, now)
		for _, item := range r.Items {
			fmt.Fprintf(&b, `<div><strong>%s</strong> x %d <span style="float:right">[%s]</span></div>`,
				html.EscapeString(item.Name), item.Quantity, html.EscapeString(item.KitchenDepartment()))
		}
		b.WriteString(`<hr/><div style="text-align:center">Generated by Restaurant POS</div>`)
	}

	b.WriteString(`</body></html>`)

	copies := r.Config.NumberOfCopies
	if copies < 1 {
		copies = 1
	}

	return PrintDocument{
		Title:      title,
		Department: r.Department,
		HTML:       b.String(),
		Copies:     copies,
	}
}

// RenderKOTByDepartment splits the pending lines by kitchen department and
// materializes one ticket per department, all sharing the same KOT number
func (s *PrinterService) RenderKOTByDepartment(r KOTRender) []PrintDocument {
	var docs []PrintDocument
	for _, group := range groupByDepartment(r.Items) {
		deptRender := r
		deptRender.Items = group.Items
		deptRender.Department = group.Department
		docs = append(docs, s.RenderKOT(deptRender))
	}
	return docs
}

// RenderBill materializes a customer bill as a self-contained HTML page
func (s *PrinterService) RenderBill(r BillRender) PrintDocument {
	fontSize, padding, maxWidth := paperStyle(r.Config.PaperSize)
	small := smallFont(fontSize)
	now := time.Now().Format("02/01/2006, 15:04:05")

	var b strings.Builder
	fmt.Fprintf(&b, `<!doctype html><html><head><meta charset="utf-8"><title>%s</title><style>%s</style></head><body>`,
		html.EscapeString(r.BillNumber), pageCSS(fontSize, padding, maxWidth))

	b.WriteString(`<div style="text-align:center;font-weight:700">TAX INVOICE</div>`)
	if r.Settings != nil {
		fmt.Fprintf(&b, `<div style="text-align:center;font-weight:700;margin-top:5px">%s</div>`,
			html.EscapeString(r.Settings.RestaurantName))
		if r.Settings.Address != "" {
			fmt.Fprintf(&b, `<div style="text-align:center;font-size:%s">%s</div>`, small, html.EscapeString(r.Settings.Address))
		}
		if r.Settings.Phone != "" {
			fmt.Fprintf(&b, `<div style="text-align:center;font-size:%s">Ph: %s</div>`, small, html.EscapeString(r.Settings.Phone))
		}
		if r.Settings.Email != "" {
			fmt.Fprintf(&b, `<div style="text-align:center;font-size:%s">Email: %s</div>`, small, html.EscapeString(r.Settings.Email))
		}
	}
	b.WriteString(`<hr/>`)

	switch r.Config.FormatType {
	case "compact":
		fmt.Fprintf(&b, `<div>Bill: %s</div><div>%s</div><div>Type: Takeaway</div><hr/>`,
			html.EscapeString(r.BillNumber), now)
		for _, item := range r.Items {
			fmt.Fprintf(&b, `<div>%s (%d x ₹%.2f) ₹%.2f</div>`,
				html.EscapeString(item.Name), item.Quantity, item.Price, item.LineTotal())
		}
		b.WriteString(`<hr/>`)
		fmt.Fprintf(&b, `<div>Subtotal: ₹%.2f</div>`, r.Subtotal)
		fmt.Fprintf(&b, `<div>GST (%g%%): ₹%.2f</div>`, r.TaxRate, r.Tax)
		fmt.Fprintf(&b, `<div style="font-weight:700">TOTAL: ₹%.2f</div>`, r.Total)

	default: // standard and detailed share the two-column layout
		fmt.Fprintf(&b, `<div>Bill No: %s</div><div>Date: %s</div><div>Type: Takeaway</div><hr/>`,
			html.EscapeString(r.BillNumber), now)
		for _, item := range r.Items {
			fmt.Fprintf(&b, `<div>%s (%d x ₹%.2f) <span style="float:right">₹%.2f</span></div>`,
				html.EscapeString(item.Name), item.Quantity, item.Price, item.LineTotal())
		}
		b.WriteString(`<hr/>`)
		fmt.Fprintf(&b, `<div>Subtotal <span style="float:right">₹%.2f</span></div>`, r.Subtotal)
		fmt.Fprintf(&b, `<div>GST (%g%%) <span style="float:right">₹%.2f</span></div>`, r.TaxRate, r.Tax)
		fmt.Fprintf(&b, `<div style="font-weight:700">TOTAL <span style="float:right">₹%.2f</span></div>`, r.Total)

		// Detailed bills carry a QR with the bill reference for reconciliation
		if r.Config.FormatType == "detailed" {
			if qr := s.billQRCode(r.BillNumber, r.Total); qr != "" {
				fmt.Fprintf(&b, `<div style="text-align:center;margin-top:8px"><img src="data:image/png;base64,%s" width="96" height="96"/></div>`, qr)
			}
		}
	}

	b.WriteString(`</body></html>`)

	return PrintDocument{
		Title:  r.BillNumber,
		HTML:   b.String(),
		Copies: 1,
	}
}

// billQRCode encodes the bill reference as a PNG QR image, base64 encoded.
// Failures are logged and skipped so the bill still prints.
func (s *PrinterService) billQRCode(billNumber string, total float64) string {
	payload := fmt.Sprintf("%s|%.2f", billNumber, total)
	png, err := qrcode.Encode(payload, qrcode.Medium, 96)
	if err != nil {
		s.logger.LogWarning("Failed to generate bill QR code", err.Error())
		return ""
	}
	return base64.StdEncoding.EncodeToString(png)
}

// Dispatch sends a rendered document to the system print spooler. The HTML
// is written to a temp file and handed to the platform print command.
func (s *PrinterService) Dispatch(doc PrintDocument) error {
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("pos-print-%d.html", time.Now().UnixNano()))
	if err := os.WriteFile(tmpFile, []byte(doc.HTML), 0644); err != nil {
		return fmt.Errorf("failed to write print file: %w", err)
	}
	defer os.Remove(tmpFile)

	for i := 0; i < doc.Copies; i++ {
		if err := s.printFile(tmpFile); err != nil {
			return err
		}
	}

	return nil
}

// printFile hands a file to the platform print command
func (s *PrinterService) printFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		script := fmt.Sprintf(`Start-Process -FilePath "%s" -Verb Print -PassThru | %%{ Start-Sleep -Seconds 5; $_ } | Stop-Process`, path)
		cmd = exec.Command("powershell", "-NoProfile", "-Command", script)
	case "darwin", "linux":
		if s.printerName != "" {
			cmd = exec.Command("lp", "-d", s.printerName, path)
		} else {
			cmd = exec.Command("lp", path)
		}
	default:
		return fmt.Errorf("printing not supported on %s", runtime.GOOS)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("print command failed: %w (output: %s)", err, string(output))
	}

	s.logger.LogInfo("Sent document to printer", path)
	return nil
}

// departmentGroup is one kitchen station's share of a ticket
type departmentGroup struct {
	Department string
	Items      []models.CartItem
}

// groupByDepartment splits lines by routing tag, preserving first-seen order
func groupByDepartment(items []models.CartItem) []departmentGroup {
	var groups []departmentGroup
	index := map[string]int{}

	for _, item := range items {
		dept := item.KitchenDepartment()
		i, ok := index[dept]
		if !ok {
			i = len(groups)
			index[dept] = i
			groups = append(groups, departmentGroup{Department: dept})
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	return groups
}
