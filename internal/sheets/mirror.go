// Package sheets mirrors confirmed orders into a Google Sheet so staff can
// follow them without database access. Mirroring is always best-effort: the
// database stays the source of truth.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Ananth-NQI/alarab-orderbot/internal/config"
	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// DateTimeLayout is the format of the Date/Time column, used to find a row again.
const DateTimeLayout = "02-Jan-2006 03:04 PM"

const (
	sheetName    = "Sheet1"
	statusColumn = "I"
)

// Header is the first row of the mirror sheet.
var Header = []string{
	"Name", "Address", "Phone", "Items", "Payment Type", "Notes",
	"WhatsApp Number", "Date/Time", "Status",
}

// ErrRowNotFound is returned when no row matches a status update.
var ErrRowNotFound = errors.New("sheets: order row not found")

// Mirror writes orders to a spreadsheet
type Mirror struct {
	svc           *sheets.Service
	spreadsheetID string
	loc           *time.Location
	log           logrus.FieldLogger
}

// ClientOptions turns the configured service account into client options.
// The value may be the JSON key itself or a path to the key file.
func ClientOptions(cfg config.SheetsConfig) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	creds := strings.TrimSpace(cfg.ServiceAccountJSON)
	if strings.HasPrefix(creds, "{") {
		return append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	return append(opts, option.WithCredentialsFile(creds))
}

// NewMirror connects to the spreadsheet. Dates are written in loc, or local time when nil.
func NewMirror(ctx context.Context, spreadsheetID string, loc *time.Location, log logrus.FieldLogger, opts ...option.ClientOption) (*Mirror, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &Mirror{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		loc:           loc,
		log:           log,
	}, nil
}

// MirrorOrder appends order as a new row, writing the header first on an empty sheet.
func (m *Mirror) MirrorOrder(ctx context.Context, order *models.Order, status string) error {
	if err := m.ensureHeader(ctx); err != nil {
		return err
	}

	row := Row(order, status, m.loc)
	_, err := m.svc.Spreadsheets.Values.
		Append(m.spreadsheetID, sheetName+"!A:I", &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append order row: %w", err)
	}

	m.log.WithFields(logrus.Fields{"whatsapp": order.WhatsAppNumber, "order_id": order.ID}).
		Info("📊 Order mirrored to sheet")
	return nil
}

// UpdateStatus rewrites the status of the newest row for the number and creation time.
func (m *Mirror) UpdateStatus(ctx context.Context, whatsappNumber string, createdAt time.Time, status string) error {
	resp, err := m.svc.Spreadsheets.Values.Get(m.spreadsheetID, sheetName+"!A:I").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: read rows: %w", err)
	}

	stamp := createdAt.In(m.loc).Format(DateTimeLayout)
	for i := len(resp.Values) - 1; i >= 1; i-- {
		row := resp.Values[i]
		if cell(row, 6) != whatsappNumber || cell(row, 7) != stamp {
			continue
		}

		target := fmt.Sprintf("%s!%s%d", sheetName, statusColumn, i+1)
		_, err := m.svc.Spreadsheets.Values.
			Update(m.spreadsheetID, target, &sheets.ValueRange{Values: [][]interface{}{{status}}}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("sheets: update status: %w", err)
		}
		m.log.WithFields(logrus.Fields{"whatsapp": whatsappNumber, "status": status, "row": i + 1}).
			Info("📊 Sheet status updated")
		return nil
	}
	return ErrRowNotFound
}

func (m *Mirror) ensureHeader(ctx context.Context) error {
	resp, err := m.svc.Spreadsheets.Values.Get(m.spreadsheetID, sheetName+"!A1:I1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: read header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	_, err = m.svc.Spreadsheets.Values.
		Append(m.spreadsheetID, sheetName+"!A1:I1", &sheets.ValueRange{Values: [][]interface{}{header}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: write header: %w", err)
	}
	return nil
}

// Row renders an order in column order.
func Row(order *models.Order, status string, loc *time.Location) []interface{} {
	if loc == nil {
		loc = time.Local
	}
	return []interface{}{
		order.Name,
		order.Address,
		order.Phone,
		order.Items,
		order.PaymentType,
		order.Notes,
		order.WhatsAppNumber,
		order.CreatedAt.In(loc).Format(DateTimeLayout),
		status,
	}
}

func cell(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	return fmt.Sprint(row[i])
}

// NoopMirror is used when no spreadsheet is configured
type NoopMirror struct {
	Log logrus.FieldLogger
}

// MirrorOrder logs and does nothing.
func (n NoopMirror) MirrorOrder(_ context.Context, order *models.Order, status string) error {
	n.Log.WithField("whatsapp", order.WhatsAppNumber).Debug("Sheets not configured, order not mirrored")
	return nil
}

// UpdateStatus logs and does nothing.
func (n NoopMirror) UpdateStatus(_ context.Context, whatsappNumber string, _ time.Time, status string) error {
	n.Log.WithFields(logrus.Fields{"whatsapp": whatsappNumber, "status": status}).
		Debug("Sheets not configured, status not mirrored")
	return nil
}
