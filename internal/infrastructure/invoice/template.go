// Package invoice renders GST tax invoices for orders as PDF documents.
package invoice

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// Seller identifies the pharmacy issuing the invoice
type Seller struct {
	Name    string
	Address string
	GSTIN   string
}

// lineView is one item row in the invoice table
type lineView struct {
	Name     string
	HSNCode  string
	Quantity int
	UnitRate string
	GSTRate  string
	Amount   string
}

// taxView is one GST row grouped by HSN code
type taxView struct {
	HSNCode      string
	GSTRate      string
	TaxableValue string
	CGST         string
	SGST         string
	TotalTax     string
}

// invoiceView is the template data for one invoice
type invoiceView struct {
	Seller        Seller
	InvoiceNumber string
	IssuedOn      string
	OrderNumber   string
	OrderDate     string
	CustomerName  string
	Address       string
	IsPickup      bool
	Lines         []lineView
	Taxes         []taxView
	Subtotal      string
	ShippingFee   string
	TaxAmount     string
	TotalAmount   string
}

func money(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

func percent(d decimal.Decimal) string {
	return d.StringFixed(0) + "%"
}

func buildView(o *order.Order, invoiceNumber string, seller Seller, issuedAt time.Time) invoiceView {
	view := invoiceView{
		Seller:        seller,
		InvoiceNumber: invoiceNumber,
		IssuedOn:      issuedAt.Format("02 Jan 2006"),
		OrderNumber:   o.OrderNumber,
		OrderDate:     o.CreatedAt.Format("02 Jan 2006"),
		CustomerName:  o.CustomerName,
		Address:       o.DeliveryAddress,
		IsPickup:      o.Type == order.TypePickup,
		Subtotal:      money(o.Subtotal),
		ShippingFee:   money(o.ShippingFee),
		TaxAmount:     money(o.TaxAmount),
		TotalAmount:   money(o.TotalAmount),
	}

	for _, item := range o.Items {
		view.Lines = append(view.Lines, lineView{
			Name:     item.ProductName,
			HSNCode:  item.HSNCode,
			Quantity: item.Quantity,
			UnitRate: money(item.UnitPrice),
			GSTRate:  percent(item.GSTRate),
			Amount:   money(item.LineTotal),
		})
	}

	for _, tax := range o.TaxDetails {
		view.Taxes = append(view.Taxes, taxView{
			HSNCode:      tax.HSNCode,
			GSTRate:      percent(tax.GSTRate),
			TaxableValue: money(tax.TaxableValue),
			CGST:         money(tax.CGST),
			SGST:         money(tax.SGST),
			TotalTax:     money(tax.TotalTax),
		})
	}

	return view
}

// BuildHTML renders the invoice HTML for an order
func BuildHTML(o *order.Order, invoiceNumber string, seller Seller, issuedAt time.Time) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, buildView(o, invoiceNumber, seller, issuedAt)); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; color: #222; margin: 32px; }
  h1 { font-size: 18px; margin: 0 0 2px; }
  .muted { color: #666; }
  .header { display: flex; justify-content: space-between; margin-bottom: 24px; }
  .header .right { text-align: right; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
  th { text-align: left; border-bottom: 2px solid #222; padding: 6px 8px; font-size: 11px; text-transform: uppercase; }
  td { border-bottom: 1px solid #ddd; padding: 6px 8px; }
  .num { text-align: right; }
  .totals { width: 40%; margin-left: auto; }
  .totals td { border: none; padding: 3px 8px; }
  .totals .grand td { border-top: 2px solid #222; font-weight: bold; font-size: 14px; }
</style>
</head>
<body>
  <div class="header">
    <div>
      <h1>{{.Seller.Name}}</h1>
      <div class="muted">{{.Seller.Address}}</div>
      {{if .Seller.GSTIN}}<div class="muted">GSTIN: {{.Seller.GSTIN}}</div>{{end}}
    </div>
    <div class="right">
      <h1>Tax Invoice</h1>
      <div>{{.InvoiceNumber}}</div>
      <div class="muted">Issued {{.IssuedOn}}</div>
    </div>
  </div>

  <p>
    <strong>Billed to:</strong> {{.CustomerName}}<br>
    {{if .IsPickup}}Store pickup{{else}}{{.Address}}{{end}}<br>
    <span class="muted">Order {{.OrderNumber}} placed {{.OrderDate}}</span>
  </p>

  <table>
    <tr><th>Item</th><th>HSN</th><th class="num">Qty</th><th class="num">Rate</th><th class="num">GST</th><th class="num">Amount</th></tr>
    {{range .Lines}}
    <tr>
      <td>{{.Name}}</td>
      <td>{{.HSNCode}}</td>
      <td class="num">{{.Quantity}}</td>
      <td class="num">{{.UnitRate}}</td>
      <td class="num">{{.GSTRate}}</td>
      <td class="num">{{.Amount}}</td>
    </tr>
    {{end}}
  </table>

  {{if .Taxes}}
  <table>
    <tr><th>HSN</th><th class="num">Rate</th><th class="num">Taxable Value</th><th class="num">CGST</th><th class="num">SGST</th><th class="num">Total Tax</th></tr>
    {{range .Taxes}}
    <tr>
      <td>{{.HSNCode}}</td>
      <td class="num">{{.GSTRate}}</td>
      <td class="num">{{.TaxableValue}}</td>
      <td class="num">{{.CGST}}</td>
      <td class="num">{{.SGST}}</td>
      <td class="num">{{.TotalTax}}</td>
    </tr>
    {{end}}
  </table>
  {{end}}

  <table class="totals">
    <tr><td>Subtotal</td><td class="num">{{.Subtotal}}</td></tr>
    <tr><td>Shipping</td><td class="num">{{.ShippingFee}}</td></tr>
    <tr><td>GST</td><td class="num">{{.TaxAmount}}</td></tr>
    <tr class="grand"><td>Total</td><td class="num">{{.TotalAmount}}</td></tr>
  </table>
</body>
</html>`))
