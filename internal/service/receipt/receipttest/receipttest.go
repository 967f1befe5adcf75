// Package receipttest builds receipt e-mails for tests.
package receipttest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
)

// MapContentID is the Content-ID of the attached map image.
const MapContentID = "map-image@ridetrace"

// Ride describes the receipt to render.
type Ride struct {
	Start, End string // already HTML-escaped
	MapSrc     string // defaults to cid:MapContentID
	Image      []byte // attached inline when non-nil
}

// HTML renders a receipt body in the layout of the bike-share e-mails.
func HTML(r Ride) string {
	src := r.MapSrc
	if src == "" {
		src = "cid:" + MapContentID
	}
	return fmt.Sprintf(`<html><body>
<p class="header">OCTOBER 3, 2024 AT 8:15 AM</p>
<img src="https://cdn.example.com/logo.png" alt="logo">
<table>
<tr><td class="station">%s</td><td class="label"><span class="tag">Start</span><br>8:15 am</td></tr>
<tr><td class="station">%s</td><td class="label"><span class="tag">End</span><br>8:32 am</td></tr>
</table>
<img src="%s" alt="Map of your ride" width="600">
<table>
<tr><td>Ride cost<br><small>17 min</small></td><td>$4.79</td></tr>
<tr><td>Member discount</td><td>$0.00</td></tr>
<tr><td>Total</td>
<td>$4.79</td></tr>
<tr><td>Saved this trip</td><td>$1.20</td></tr>
</table>
<p>Visa *4242</p>
<p>Receipt #1234567</p>
</body></html>`, r.Start, r.End, src)
}

// EML renders a multipart/related message with a quoted-printable HTML body
// and, when r.Image is set, a base64 inline image.
func EML(r Ride) []byte {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hp, _ := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/html; charset="utf-8"`},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	qp := quotedprintable.NewWriter(hp)
	_, _ = qp.Write([]byte(HTML(r)))
	_ = qp.Close()

	if r.Image != nil {
		ip, _ := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"image/png"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Id":                {"<" + MapContentID + ">"},
			"Content-Disposition":       {`inline; filename="map.png"`},
		})
		enc := base64.StdEncoding.EncodeToString(r.Image)
		for len(enc) > 76 {
			_, _ = ip.Write([]byte(enc[:76] + "\r\n"))
			enc = enc[76:]
		}
		_, _ = ip.Write([]byte(enc + "\r\n"))
	}
	_ = mw.Close()

	var msg strings.Builder
	msg.WriteString("From: Citi Bike <no-reply@citibikenyc.com>\r\n")
	msg.WriteString("To: rider@example.com\r\n")
	msg.WriteString("Subject: Your ride receipt\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/related; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return []byte(msg.String())
}
