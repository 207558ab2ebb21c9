package services

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExportPageSize is how many tickets are fetched per page while streaming.
const ExportPageSize = 1000

// AuditExporter streams the per-ticket reconciliation CSV for an event.
// Pagination runs unlocked against the ticket store; an eventually-consistent
// snapshot is acceptable for audit purposes.
type AuditExporter struct {
	tickets TicketStore
}

// NewAuditExporter creates an exporter over the ticket store.
func NewAuditExporter(tickets TicketStore) *AuditExporter {
	return &AuditExporter{tickets: tickets}
}

type priceBucket struct {
	tierID     string
	unitPrice  int64
	currency   string
	count      int
	grossCents int64
}

// Stream writes the reconciliation CSV for one event: a row per ticket in
// purchase-time descending order, a blank line, a PRICE BREAKDOWN label, and
// one summary row per (tier, unit price, currency) bucket. The output is
// deterministic so auditors can diff successive exports.
func (a *AuditExporter) Stream(ctx context.Context, eventID primitive.ObjectID, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"Ticket ID", "Status", "Purchased At", "Tier ID", "Tier Name",
		"Listed Unit Price", "Listed Currency", "Payment Method", "Payment ID",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	buckets := make(map[string]*priceBucket)

	for page := 0; ; page++ {
		tickets, err := a.tickets.PageByEvent(ctx, eventID, page, ExportPageSize)
		if err != nil {
			return err
		}
		for _, t := range tickets {
			row := []string{
				t.ID.Hex(),
				t.Status,
				t.PurchasedAt.UTC().Format("2006-01-02 15:04:05"),
				t.TierID,
				t.TierName,
				formatCents(t.UnitPriceCents),
				t.Currency,
				t.PaymentMethod,
				t.PaymentID,
			}
			if err := cw.Write(row); err != nil {
				return err
			}

			key := t.TierID + "|" + strconv.FormatInt(t.UnitPriceCents, 10) + "|" + t.Currency
			b, ok := buckets[key]
			if !ok {
				b = &priceBucket{tierID: t.TierID, unitPrice: t.UnitPriceCents, currency: t.Currency}
				buckets[key] = b
			}
			b.count++
			b.grossCents += t.UnitPriceCents
		}
		if len(tickets) < ExportPageSize {
			break
		}
	}

	// Blank line, then the grouped summary.
	if err := cw.Write([]string{}); err != nil {
		return err
	}
	if err := cw.Write([]string{"PRICE BREAKDOWN"}); err != nil {
		return err
	}
	if err := cw.Write([]string{"Tier ID", "Unit Price", "Currency", "Count", "Gross"}); err != nil {
		return err
	}

	keys := make([]*priceBucket, 0, len(buckets))
	for _, b := range buckets {
		keys = append(keys, b)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].tierID != keys[j].tierID {
			return keys[i].tierID < keys[j].tierID
		}
		if keys[i].unitPrice != keys[j].unitPrice {
			return keys[i].unitPrice < keys[j].unitPrice
		}
		return keys[i].currency < keys[j].currency
	})
	for _, b := range keys {
		row := []string{
			b.tierID,
			formatCents(b.unitPrice),
			b.currency,
			strconv.Itoa(b.count),
			formatCents(b.grossCents),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatCents renders integer cents as a decimal amount, e.g. 12345 -> 123.45.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
