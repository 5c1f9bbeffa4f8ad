package usecase

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"time"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
)

const (
	AttachmentFilename = "CV_candidate.pdf"
	receiptTimeLayout  = "02/01/2006 at 15:04"
)

var notificationBody = template.Must(template.New("notification").Parse(`<html>
<body>
    <h2>New CV received - Domain {{.Domain}}</h2>
    <p>A new CV was submitted and automatically classified into your domain.</p>

    <h3>Details:</h3>
    <ul>
        <li><strong>Detected domain:</strong> {{.Domain}}</li>
        <li><strong>Received at:</strong> {{.ReceivedAt}}</li>
{{- range .Attributes}}
        <li><strong>{{.Key}}:</strong> {{.Value}}</li>
{{- end}}
    </ul>

    <p>The CV is attached to this email.</p>

    <p>Regards,<br>
    Automatic Classification System</p>
</body>
</html>
`))

type NotifierUseCase struct {
	recipients domain.RecipientDirectory
	transport  ports.MailTransport
	store      ports.DocumentStore
	logger     *slog.Logger
	now        func() time.Time
}

func NewNotifierUseCase(
	recipients domain.RecipientDirectory,
	transport ports.MailTransport,
	store ports.DocumentStore,
	logger *slog.Logger,
) *NotifierUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifierUseCase{
		recipients: recipients,
		transport:  transport,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

// Notify emails the document to the recipient of d. It reports delivery and never fails otherwise.
func (uc *NotifierUseCase) Notify(
	ctx context.Context,
	d domain.Domain,
	doc *domain.UploadedDocument,
	attributes []domain.Attribute,
) (sent bool) {
	defer func() {
		if rec := recover(); rec != nil {
			uc.logger.Error("notification_panic", "domain", d.String(), "panic", fmt.Sprint(rec))
			sent = false
		}
	}()

	recipient, ok := uc.recipients.Lookup(d)
	if !ok {
		uc.logger.Error("notification_no_recipient", "domain", d.String())
		return false
	}

	msg, err := uc.compose(ctx, d, recipient, doc, attributes)
	if err != nil {
		uc.logger.Error("notification_compose_failed", "domain", d.String(), "error", err)
		return false
	}

	if err := uc.transport.Send(ctx, msg); err != nil {
		uc.logger.Error("notification_send_failed", "domain", d.String(), "recipient", recipient, "error", err)
		return false
	}

	uc.logger.Info("notification_sent", "domain", d.String(), "recipient", recipient)
	return true
}

func (uc *NotifierUseCase) compose(
	ctx context.Context,
	d domain.Domain,
	recipient string,
	doc *domain.UploadedDocument,
	attributes []domain.Attribute,
) (domain.Notification, error) {
	body, err := renderNotificationBody(d, uc.now(), attributes)
	if err != nil {
		return domain.Notification{}, err
	}

	data, err := uc.readDocument(ctx, doc)
	if err != nil {
		return domain.Notification{}, err
	}

	return domain.Notification{
		To:       recipient,
		Subject:  NotificationSubject(d),
		HTMLBody: body,
		Attachment: domain.Attachment{
			Filename:    AttachmentFilename,
			ContentType: "application/pdf",
			Data:        data,
		},
	}, nil
}

func (uc *NotifierUseCase) readDocument(ctx context.Context, doc *domain.UploadedDocument) ([]byte, error) {
	if doc == nil {
		return nil, domain.WrapError(domain.ErrNotification, "read attachment", fmt.Errorf("document is nil"))
	}
	reader, err := uc.store.Open(ctx, doc.Key)
	if err != nil {
		return nil, domain.WrapError(domain.ErrNotification, "read attachment", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrNotification, "read attachment", err)
	}
	return data, nil
}

func NotificationSubject(d domain.Domain) string {
	return "New CV received - Domain " + d.String()
}

func renderNotificationBody(d domain.Domain, receivedAt time.Time, attributes []domain.Attribute) (string, error) {
	var buf bytes.Buffer
	err := notificationBody.Execute(&buf, struct {
		Domain     string
		ReceivedAt string
		Attributes []domain.Attribute
	}{
		Domain:     d.String(),
		ReceivedAt: receivedAt.Format(receiptTimeLayout),
		Attributes: attributes,
	})
	if err != nil {
		return "", fmt.Errorf("render notification body: %w", err)
	}
	return buf.String(), nil
}
