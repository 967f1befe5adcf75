package receipt

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ridetrace/internal/model"
	"ridetrace/internal/service/receipt/receipttest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRide() receipttest.Ride {
	return receipttest.Ride{
		Start: "W 21 St &amp; 6 Ave",
		End:   "W 52 St &amp; 6 Ave",
		Image: []byte("\x89PNG fake"),
	}
}

func TestParseHTML(t *testing.T) {
	rec := ParseHTML(receipttest.HTML(sampleRide()))

	assert.Equal(t, "OCTOBER 3, 2024", rec.Date)
	assert.Equal(t, "8:15 AM", rec.Time)
	assert.Equal(t, "W 21 St & 6 Ave", rec.StartStation)
	assert.Equal(t, "W 52 St & 6 Ave", rec.EndStation)
	assert.Equal(t, "8:15 am", rec.StartTime)
	assert.Equal(t, "8:32 am", rec.EndTime)
	assert.Equal(t, "Visa *4242", rec.PaymentMethod)
	assert.Equal(t, "4.79", rec.Total)
	assert.Equal(t, "1.20", rec.Savings)
	assert.Equal(t, "1234567", rec.ReceiptNumber)
	assert.Equal(t, "cid:"+receipttest.MapContentID, rec.MapRef)
	assert.Equal(t, []model.Charge{
		{Label: "Ride cost 17 min", Amount: "4.79"},
		{Label: "Member discount", Amount: "0.00"},
		{Label: "Total", Amount: "4.79"},
		{Label: "Saved this trip", Amount: "1.20"},
	}, rec.Charges)
}

func TestParseHTMLMissingFields(t *testing.T) {
	rec := ParseHTML(`<html><body><p>nothing here</p></body></html>`)
	assert.Empty(t, rec.StartStation)
	assert.Empty(t, rec.Date)
	assert.Empty(t, rec.Charges)
	assert.Empty(t, rec.MapRef)
}

func TestMapImageFallsBackToFirstImage(t *testing.T) {
	rec := ParseHTML(`<html><body><img src=""><img src="route.png"><img src="other.png"></body></html>`)
	assert.Equal(t, "route.png", rec.MapRef)
}

func TestParseEML(t *testing.T) {
	ride := sampleRide()
	rec, err := Parse(bytes.NewReader(receipttest.EML(ride)))
	require.NoError(t, err)

	assert.Equal(t, "W 21 St & 6 Ave", rec.StartStation)
	data, err := rec.MapImage(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, ride.Image, data)

	r := rec.Ride()
	assert.Equal(t, "1234567", r.ReceiptNumber)
	assert.Equal(t, rec.MapRef, r.ImageRef)
	assert.Contains(t, rec.String(), "Payment Method: Visa *4242")
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("not a message"))
	assert.Error(t, err)

	plain := "From: a@example.com\r\nContent-Type: text/plain\r\n\r\nhello\r\n"
	_, err = Parse(strings.NewReader(plain))
	assert.ErrorIs(t, err, ErrNoHTMLBody)
}

func TestParseLatin1Body(t *testing.T) {
	msg := "From: a@example.com\r\n" +
		"Content-Type: text/html; charset=iso-8859-1\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n\r\n" +
		"<table><tr><td>Caf=E9 &amp; 5 Ave</td><td><span>Start</span><br>9:00 am</td></tr></table>\r\n"
	rec, err := Parse(strings.NewReader(msg))
	require.NoError(t, err)
	assert.Equal(t, "Café & 5 Ave", rec.StartStation)
}

func TestMapImageSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "map.png"), []byte("local"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote"))
	}))
	defer srv.Close()
	fetcher := NewHTTPFetcher(2 * time.Second)

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{"relative path", "map.png", "local", false},
		{"data uri", "data:image/png;base64,aGVsbG8=", "hello", false},
		{"url", srv.URL + "/map.png", "remote", false},
		{"url not found", srv.URL + "/missing.png", "", true},
		{"missing cid", "cid:nope", "", true},
		{"missing file", "nope.png", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Receipt{Path: filepath.Join(dir, "ride.eml"), MapRef: tt.ref}
			data, err := rec.MapImage(context.Background(), fetcher)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrInvalidImage))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.eml")
	require.NoError(t, os.WriteFile(path, receipttest.EML(sampleRide()), 0o644))

	rec, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, rec.Path)

	_, err = ParseFile(filepath.Join(t.TempDir(), "absent.eml"))
	assert.Error(t, err)
}
