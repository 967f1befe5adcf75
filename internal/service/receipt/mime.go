package receipt

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"

	"golang.org/x/net/html/charset"
)

// maxDepth bounds multipart nesting.
const maxDepth = 8

type part struct {
	header textproto.MIMEHeader
	body   io.Reader
}

// readMessage returns the first text/html body and every part carrying a
// Content-ID.
func readMessage(r io.Reader) (string, map[string][]byte, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read message: %w", err)
	}
	w := &walker{inline: make(map[string][]byte)}
	root := part{header: textproto.MIMEHeader(msg.Header), body: msg.Body}
	if err := w.walk(root, 0); err != nil {
		return "", nil, err
	}
	return w.html, w.inline, nil
}

type walker struct {
	html   string
	inline map[string][]byte
}

func (w *walker) walk(p part, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("multipart nesting deeper than %d", maxDepth)
	}
	ctype := p.header.Get("Content-Type")
	if ctype == "" {
		ctype = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(ctype)
	if err != nil {
		mediaType, params = "application/octet-stream", nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(p.body, params["boundary"])
		for {
			child, err := mr.NextRawPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read %s part: %w", mediaType, err)
			}
			if err := w.walk(part{header: child.Header, body: child}, depth+1); err != nil {
				return err
			}
		}
	}

	data, err := io.ReadAll(decodeTransfer(p.header.Get("Content-Transfer-Encoding"), p.body))
	if err != nil {
		return fmt.Errorf("failed to decode %s part: %w", mediaType, err)
	}

	if id := strings.Trim(p.header.Get("Content-Id"), "<> "); id != "" {
		w.inline[id] = data
	}
	if mediaType == "text/html" && w.html == "" {
		text, err := toUTF8(data, params["charset"])
		if err != nil {
			return err
		}
		w.html = text
	}
	return nil
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	}
	return r
}

func toUTF8(data []byte, label string) (string, error) {
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "us-ascii") {
		return string(data), nil
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to convert charset %q: %w", label, err)
	}
	return string(out), nil
}
