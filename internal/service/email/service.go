// Package email mails report copies to stakeholders who are not in the
// Telegram chat.
package email

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/report"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

type Service struct {
	provider ports.EmailService
	to       string
	log      *zap.Logger
}

func NewService(cfg config.EmailConfig, log *zap.Logger) *Service {
	var provider ports.EmailService
	if cfg.Enabled {
		provider = NewSendGridProvider(cfg.APIKey, cfg.From, cfg.FromName)
	}
	return &Service{
		provider: provider,
		to:       cfg.To,
		log:      log,
	}
}

// SendReport mails the rendered report. Disabled configuration is a no-op,
// not an error, so schedules work without email credentials.
func (s *Service) SendReport(ctx context.Context, rep *domain.PeriodReport) error {
	if s.provider == nil || s.to == "" {
		return nil
	}

	subject := fmt.Sprintf("Medicod: отчет (%s) от %s", rep.Label, rep.GeneratedAt.Format("02.01.2006"))
	html := telegramToEmailHTML(report.Render(rep))
	if err := s.provider.SendHTML(ctx, s.to, subject, html); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	s.log.Info("Report emailed", zap.String("to", s.to), zap.String("period", rep.Label))
	return nil
}

// telegramToEmailHTML adapts the Telegram HTML subset for mail clients by
// turning newlines into breaks. The tags Telegram allows (b, i, code) are
// already valid HTML.
func telegramToEmailHTML(s string) string {
	return "<div style=\"font-family:monospace\">" +
		strings.ReplaceAll(s, "\n", "<br>\n") +
		"</div>"
}
