package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// ReceiptTimeLayout is the Date/Time format printed on receipts.
const ReceiptTimeLayout = "02-Jan-2006 03:04 PM"

// ReceiptData is the order information printed on a receipt
type ReceiptData struct {
	Restaurant     string
	Name           string
	Address        string
	Phone          string
	WhatsAppNumber string
	Items          string
	PaymentType    string
}

// ReceiptFromOrder builds receipt data from a stored order.
func ReceiptFromOrder(o *models.Order) ReceiptData {
	return ReceiptData{
		Name:           o.Name,
		Address:        o.Address,
		Phone:          o.Phone,
		WhatsAppNumber: o.WhatsAppNumber,
		Items:          o.Items,
		PaymentType:    o.PaymentType,
	}
}

// ReceiptFromDraft builds receipt data from an order that was just confirmed.
func ReceiptFromDraft(d models.OrderDraft) ReceiptData {
	return ReceiptData{
		Name:           d.Name,
		Address:        d.Address,
		Phone:          d.Phone,
		WhatsAppNumber: d.WhatsAppNumber,
		Items:          d.Items,
		PaymentType:    d.PaymentType,
	}
}

// GenerateReceipt renders the receipt text. It declines (ok == false) when
// there are no items or no payment type.
func GenerateReceipt(data ReceiptData, now time.Time) (string, bool) {
	items := splitItems(data.Items)
	payment := strings.TrimSpace(data.PaymentType)
	if len(items) == 0 || payment == "" {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s 🕌\n\n", data.Restaurant)
	fmt.Fprintf(&b, "Name: %s 🧑\n", data.Name)
	fmt.Fprintf(&b, "Address: %s 🏠\n", data.Address)
	fmt.Fprintf(&b, "Phone: %s 📞\n", data.Phone)
	fmt.Fprintf(&b, "WhatsApp: %s 💬\n\n", data.WhatsAppNumber)
	fmt.Fprintf(&b, "Date/Time: %s ⏰\n\n", now.Format(ReceiptTimeLayout))
	b.WriteString("--- Order Summary ---\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	fmt.Fprintf(&b, "\nPayment Type: %s 💰\n\n---\n\n", payment)
	b.WriteString("Shukriya! 💖 Umeed hai aapko hamari service pasand aayi! 🙌 Please visit again. 😊👍")

	return b.String(), true
}

// splitItems breaks a free-text item list on commas and newlines.
func splitItems(items string) []string {
	fields := strings.FieldsFunc(items, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
