package notification

import (
	"context"

	"fieldbot/utils"

	"go.uber.org/zap"
)

// MessageSender delivers outbound chat messages. The transport itself
// (WhatsApp, Telegram, ...) lives outside this core; implementations wrap
// whatever channel the deployment uses.
type MessageSender interface {
	SendText(ctx context.Context, orgID, phone, text string) error
}

// LogSender is the development fallback: it logs instead of delivering.
type LogSender struct {
	Logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &LogSender{Logger: logger}
}

func (s *LogSender) SendText(_ context.Context, orgID, phone, text string) error {
	s.Logger.Info("outbound message (log sender)",
		zap.String("organizationId", orgID),
		zap.String("phone", phone),
		zap.String("text", text))
	return nil
}
