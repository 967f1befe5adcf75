// Package receipt extracts ride details and the map image reference from a
// bike-share receipt e-mail.
package receipt

import (
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ridetrace/internal/model"
)

var ErrNoHTMLBody = errors.New("receipt has no text/html body")

var (
	rideDateRe     = regexp.MustCompile(`(\w+ \d+, \d{4})\s+AT\s+(\d+:\d+ [AP]M)`)
	startStationRe = regexp.MustCompile(`<td[^>]*>([^<]+)</td>\s*<td[^>]*>\s*<span[^>]*>Start</span>`)
	endStationRe   = regexp.MustCompile(`<td[^>]*>([^<]+)</td>\s*<td[^>]*>\s*<span[^>]*>End</span>`)
	startTimeRe    = regexp.MustCompile(`(?i)<span[^>]*>Start</span><br\s*/?>\s*([\d:]+\s*[ap]m)`)
	endTimeRe      = regexp.MustCompile(`(?i)<span[^>]*>End</span><br\s*/?>\s*([\d:]+\s*[ap]m)`)
	paymentRe      = regexp.MustCompile(`(Mastercard|Visa|American Express)\s*\*(\d{4})`)
	totalRe        = regexp.MustCompile(`Total\s*</td>\s*<td[^>]*>\$([\d.]+)`)
	savingsRe      = regexp.MustCompile(`Saved this trip\s*</td>\s*<td[^>]*>\$([\d.]+)`)
	receiptNoRe    = regexp.MustCompile(`Receipt #\s*(\d+)`)
)

// Receipt is the parsed content of one receipt e-mail.
type Receipt struct {
	Path string

	Date          string
	Time          string
	StartStation  string
	EndStation    string
	StartTime     string
	EndTime       string
	Charges       []model.Charge
	PaymentMethod string
	Total         string
	Savings       string
	ReceiptNumber string

	// MapRef is the src of the map <img>: a cid: reference, a URL or a path.
	MapRef string

	// Inline holds the message's attachments by Content-ID, without brackets.
	Inline map[string][]byte
}

// ParseFile reads and parses an .eml file.
func ParseFile(path string) (*Receipt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt: %w", err)
	}
	defer f.Close()

	r, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	r.Path = path
	return r, nil
}

// Parse reads an RFC 5322 message and extracts the receipt fields from its
// HTML body.
func Parse(r io.Reader) (*Receipt, error) {
	body, inline, err := readMessage(r)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, ErrNoHTMLBody
	}
	rec := ParseHTML(body)
	rec.Inline = inline
	return rec, nil
}

// ParseHTML extracts the receipt fields from an HTML document. Missing fields
// are left empty.
func ParseHTML(body string) *Receipt {
	rec := &Receipt{}
	if m := rideDateRe.FindStringSubmatch(body); m != nil {
		rec.Date, rec.Time = m[1], m[2]
	}
	rec.StartStation = station(startStationRe, body)
	rec.EndStation = station(endStationRe, body)
	rec.StartTime = group(startTimeRe, body)
	rec.EndTime = group(endTimeRe, body)
	if m := paymentRe.FindStringSubmatch(body); m != nil {
		rec.PaymentMethod = m[1] + " *" + m[2]
	}
	rec.Total = group(totalRe, body)
	rec.Savings = group(savingsRe, body)
	rec.ReceiptNumber = group(receiptNoRe, body)

	doc, err := parseDocument(body)
	if err == nil {
		rec.Charges = charges(doc)
		rec.MapRef = mapImage(doc)
	}
	return rec
}

func group(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func station(re *regexp.Regexp, s string) string {
	return strings.TrimSpace(html.UnescapeString(group(re, s)))
}

func (r *Receipt) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", r.Date)
	fmt.Fprintf(&b, "Time: %s\n", r.Time)
	fmt.Fprintf(&b, "Start Location: %s\n", r.StartStation)
	fmt.Fprintf(&b, "End Location: %s\n", r.EndStation)
	fmt.Fprintf(&b, "Start Time: %s\n", r.StartTime)
	fmt.Fprintf(&b, "End Time: %s\n", r.EndTime)
	if len(r.Charges) > 0 {
		b.WriteString("Charges:\n")
		for _, c := range r.Charges {
			fmt.Fprintf(&b, "- %s: $%s\n", c.Label, c.Amount)
		}
	}
	fmt.Fprintf(&b, "Payment Method: %s\n", r.PaymentMethod)
	fmt.Fprintf(&b, "Total: $%s\n", r.Total)
	if r.Savings != "" {
		fmt.Fprintf(&b, "Savings: $%s\n", r.Savings)
	}
	fmt.Fprintf(&b, "Receipt Number: %s\n", r.ReceiptNumber)
	return b.String()
}

// Ride copies the receipt fields into a new ride.
func (r *Receipt) Ride() *model.Ride {
	return &model.Ride{
		ReceiptNumber: r.ReceiptNumber,
		Date:          r.Date,
		Time:          r.Time,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		StartStation:  r.StartStation,
		EndStation:    r.EndStation,
		Charges:       r.Charges,
		PaymentMethod: r.PaymentMethod,
		Total:         r.Total,
		Savings:       r.Savings,
		ImageRef:      r.MapRef,
	}
}
