package eml

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"strings"

	"golang.org/x/net/html/charset"
)

type partKind int

const (
	partText partKind = iota
	partAttachment
	partMultipart
)

// classifyPart tags a MIME part by its media type and disposition. Anything
// that is not a text part or a nested multipart is an attachment and stays
// out of the decoded body.
func classifyPart(mediaType, disposition string) partKind {
	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		return partMultipart
	case disposition == "attachment" || disposition == "inline":
		return partAttachment
	case mediaType == "text/plain" || mediaType == "text/html":
		return partText
	default:
		return partAttachment
	}
}

// decodeBody extracts the human-readable text of a message. Text parts are
// concatenated in declaration order, separated by a newline; attachment parts
// are excluded entirely. HTML is kept as raw text. All failures degrade to
// best-effort text so that one bad file cannot abort a batch.
func decodeBody(h HeaderTable, rawBody []byte) string {
	var parts []string
	collectText(h.Get("Content-Type"), h.Get("Content-Transfer-Encoding"), "", bytes.NewReader(rawBody), &parts)
	return strings.Join(parts, "\n")
}

func collectText(contentType, transferEncoding, disposition string, r io.Reader, parts *[]string) {
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Unparsable Content-Type: fall back to plain text.
		if text := readText(r, transferEncoding, ""); text != "" {
			*parts = append(*parts, text)
		}
		return
	}

	switch classifyPart(mediaType, dispositionType(disposition)) {
	case partMultipart:
		collectMultipart(params["boundary"], r, parts)
	case partText:
		if text := readText(r, transferEncoding, params["charset"]); text != "" {
			*parts = append(*parts, text)
		}
	}
}

func collectMultipart(boundary string, r io.Reader, parts *[]string) {
	if boundary == "" {
		return
	}

	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			// io.EOF or a malformed boundary: keep what was collected.
			return
		}

		collectText(
			part.Header.Get("Content-Type"),
			part.Header.Get("Content-Transfer-Encoding"),
			part.Header.Get("Content-Disposition"),
			part,
			parts,
		)
		part.Close()
	}
}

// dispositionType reduces a Content-Disposition value to its type token.
func dispositionType(disposition string) string {
	disposition = strings.TrimSpace(disposition)
	if disposition == "" {
		return ""
	}
	if dtype, _, err := mime.ParseMediaType(disposition); err == nil {
		return dtype
	}
	if idx := strings.IndexByte(disposition, ';'); idx >= 0 {
		disposition = disposition[:idx]
	}
	return strings.ToLower(strings.TrimSpace(disposition))
}

// readText applies transfer and charset decoding and returns trimmed UTF-8
// text. Decode errors keep the bytes read so far; invalid UTF-8 is replaced.
func readText(r io.Reader, transferEncoding, charsetLabel string) string {
	r = decodeTransfer(r, transferEncoding)
	r = decodeCharset(charsetLabel, r)

	data, _ := io.ReadAll(r)
	return strings.ToValidUTF8(strings.TrimSpace(string(data)), "�")
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		// 7bit, 8bit, binary or absent: pass through.
		return r
	}
}

func decodeCharset(label string, r io.Reader) io.Reader {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || label == "utf-8" || label == "us-ascii" || label == "ascii" {
		return r
	}
	cr, err := charset.NewReaderLabel(label, r)
	if err != nil {
		// Unsupported charset: pass the raw bytes through, readText replaces
		// whatever is not valid UTF-8.
		return r
	}
	return cr
}
