package smtp

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

// buildMessage renders a multipart/mixed message with an HTML body and one attachment.
func buildMessage(from string, n domain.Notification, date time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", []*mail.Address{{Address: n.To}})
	h.SetSubject(n.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message writer: %w", err)
	}

	if err := writeHTMLBody(w, n.HTMLBody); err != nil {
		return nil, err
	}
	if len(n.Attachment.Data) > 0 {
		if err := writeAttachment(w, n.Attachment); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message writer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHTMLBody(w *mail.Writer, body string) error {
	iw, err := w.CreateInline()
	if err != nil {
		return fmt.Errorf("create inline part: %w", err)
	}

	var th mail.InlineHeader
	th.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	th.Set("Content-Transfer-Encoding", "quoted-printable")
	pw, err := iw.CreatePart(th)
	if err != nil {
		return fmt.Errorf("create html part: %w", err)
	}
	if _, err := pw.Write([]byte(body)); err != nil {
		return fmt.Errorf("write html part: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close html part: %w", err)
	}
	return iw.Close()
}

func writeAttachment(w *mail.Writer, att domain.Attachment) error {
	var ah mail.AttachmentHeader
	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ah.SetContentType(contentType, nil)
	ah.SetFilename(att.Filename)
	ah.Set("Content-Transfer-Encoding", "base64")

	aw, err := w.CreateAttachment(ah)
	if err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	if _, err := aw.Write(att.Data); err != nil {
		return fmt.Errorf("write attachment: %w", err)
	}
	if err := aw.Close(); err != nil {
		return fmt.Errorf("close attachment: %w", err)
	}
	return nil
}
