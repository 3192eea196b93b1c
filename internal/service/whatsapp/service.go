package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/config"
	"github.com/mamadbah2/cafepos/internal/domain/models"
	"github.com/mamadbah2/cafepos/internal/service/commands"
	client "github.com/mamadbah2/cafepos/pkg/clients/whatsapp"
)

// ErrMessagingDisabled is returned when WhatsApp credentials are not configured.
var ErrMessagingDisabled = errors.New("whatsapp messaging is disabled")

const (
	sendTimeout      = 10 * time.Second
	seenMessageLimit = 512
)

// MessagingService describes the operations the HTTP layer and scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	Notify(ctx context.Context, text string) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	seen       *seenMessages
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		seen:       newSeenMessages(seenMessageLimit),
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook answers manager commands found in an inbound webhook payload.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if msg.From != s.cfg.ManagerID {
		s.logger.Warn("ignoring message from unknown sender", zap.String("from", msg.From))
		return nil
	}
	if !s.seen.markNew(msg.ID) {
		s.logger.Debug("skipping redelivered message", zap.String("message_id", msg.ID))
		return nil
	}

	text := extractMessageText(msg)
	if text == "" {
		return errors.New("empty message body")
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	switch {
	case errors.Is(err, commands.ErrUnsupportedCommand):
		reply = "Unknown command. " + commands.HelpText
	case err != nil:
		reply = "Sorry, that command failed. Please try again later."
	}

	if sendErr := s.send(ctx, msg.From, reply, false); sendErr != nil {
		s.seen.forget(msg.ID)
		return sendErr
	}
	return err
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

// Notify pushes a message to the configured manager.
func (s *MetaWhatsAppService) Notify(ctx context.Context, text string) error {
	return s.send(ctx, s.cfg.ManagerID, text, false)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, previewURL bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: previewURL,
	})
	return err
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil && msg.Interactive.ButtonReply != nil {
		return msg.Interactive.ButtonReply.ID
	}

	return ""
}

// DisabledService stands in when no WhatsApp credentials are configured.
type DisabledService struct {
	logger *zap.Logger
}

// NewDisabledService returns a MessagingService that rejects every call.
func NewDisabledService(logger *zap.Logger) *DisabledService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisabledService{logger: logger}
}

// VerifyWebhookToken always fails.
func (d *DisabledService) VerifyWebhookToken(string, string, string) (string, error) {
	return "", ErrMessagingDisabled
}

// HandleWebhook drops the payload.
func (d *DisabledService) HandleWebhook(context.Context, models.WebhookPayload) error {
	return ErrMessagingDisabled
}

// SendOutbound always fails.
func (d *DisabledService) SendOutbound(context.Context, models.OutboundMessageRequest) error {
	return ErrMessagingDisabled
}

// Notify logs the message instead of sending it.
func (d *DisabledService) Notify(_ context.Context, text string) error {
	d.logger.Info("whatsapp disabled, notification not sent", zap.Int("length", len(text)))
	return nil
}
