// Package journal scrapes backend process logs via journalctl. It is the
// fallback metric source for deployments where the reporting bot has shell
// access to the backend host but no database credentials. Only the error
// section can be served this way; every other query reports the source
// unavailable so the aggregator marks those sections missing.
package journal

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
)

type Source struct {
	unit string
	log  *zap.Logger
}

func NewSource(unit string, log *zap.Logger) ports.MetricSource {
	return &Source{unit: unit, log: log}
}

func (s *Source) Available(ctx context.Context) bool {
	return exec.CommandContext(ctx, "journalctl", "--version").Run() == nil
}

func (s *Source) ErrorCounts(ctx context.Context, w domain.Window) (domain.ErrorSummary, error) {
	out, err := exec.CommandContext(ctx, "journalctl",
		"-u", s.unit,
		"--since", w.From.Format("2006-01-02 15:04:05"),
		"--until", w.To.Format("2006-01-02 15:04:05"),
		"-o", "cat",
		"--no-pager",
	).Output()
	if err != nil {
		s.log.Warn("journalctl query failed", zap.String("unit", s.unit), zap.Error(err))
		return domain.ErrorSummary{}, fmt.Errorf("journalctl: %w", domain.ErrDataSourceUnavailable)
	}

	var sum domain.ErrorSummary
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.ToLower(sc.Text())
		if !strings.Contains(line, "error") {
			continue
		}
		sum.Total++
		if strings.Contains(line, "webhook") {
			sum.Webhook++
		}
	}
	return sum, sc.Err()
}

func (s *Source) PaymentsByDay(ctx context.Context, w domain.Window) ([]domain.PaymentDayRow, error) {
	return nil, fmt.Errorf("payments via journal: %w", domain.ErrDataSourceUnavailable)
}

func (s *Source) FeatureCounts(ctx context.Context, w domain.Window) ([]domain.FeatureUsageRow, error) {
	return nil, fmt.Errorf("features via journal: %w", domain.ErrDataSourceUnavailable)
}

func (s *Source) FunnelCounts(ctx context.Context, w domain.Window) (domain.FunnelCounts, error) {
	return domain.FunnelCounts{}, fmt.Errorf("funnel via journal: %w", domain.ErrDataSourceUnavailable)
}

func (s *Source) AIInvocations(ctx context.Context, w domain.Window) ([]domain.AIInvocationRow, error) {
	return nil, fmt.Errorf("ai invocations via journal: %w", domain.ErrDataSourceUnavailable)
}

func (s *Source) BehaviorStats(ctx context.Context, w domain.Window) (domain.BehaviorSummary, error) {
	return domain.BehaviorSummary{}, fmt.Errorf("behavior via journal: %w", domain.ErrDataSourceUnavailable)
}
