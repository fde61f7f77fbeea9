package analytics

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
)

// SummarizeTokenUsage aggregates AI invocations per model and prices them.
// Cost is computed per invocation, rounded to cents there, and only then
// summed; recomputing from the aggregated token totals drifts on rounding.
// Unknown models are priced at the default tariff and logged once per model.
func (s *Service) SummarizeTokenUsage(rows []domain.AIInvocationRow) domain.TokenUsageSummary {
	type acc struct {
		usage  domain.ModelUsage
		timeMs float64
	}
	byModel := make(map[string]*acc)
	warned := make(map[string]bool)

	for _, r := range rows {
		tariff, known := s.tariffs.Tariff(r.AIModel)
		if !known && !warned[r.AIModel] {
			warned[r.AIModel] = true
			s.log.Warn("Unknown AI model, using default tariff", zap.String("model", r.AIModel))
		}

		cost := float64(r.PromptTokens)/1e6*tariff.InputPerMTok +
			float64(r.CompletionTokens)/1e6*tariff.OutputPerMTok
		cost = math.Round(cost*100) / 100

		a := byModel[r.AIModel]
		if a == nil {
			a = &acc{usage: domain.ModelUsage{Model: r.AIModel}}
			byModel[r.AIModel] = a
		}
		a.usage.Requests++
		a.usage.PromptTokens += r.PromptTokens
		a.usage.CompletionTokens += r.CompletionTokens
		a.usage.TotalTokens += r.PromptTokens + r.CompletionTokens
		a.usage.CostUSD += cost
		a.timeMs += r.AITimeMs
	}

	var sum domain.TokenUsageSummary
	for _, a := range byModel {
		u := a.usage
		u.CostUSD = math.Round(u.CostUSD*100) / 100
		if u.Requests > 0 {
			u.AvgCostPerRequest = math.Round(u.CostUSD/float64(u.Requests)*10000) / 10000
			u.AvgTimeMs = math.Round(a.timeMs / float64(u.Requests))
		}
		sum.Models = append(sum.Models, u)
		sum.TotalRequests += u.Requests
		sum.TotalPromptTokens += u.PromptTokens
		sum.TotalCompletion += u.CompletionTokens
		sum.TotalTokens += u.TotalTokens
		sum.TotalCostUSD += u.CostUSD
	}
	sort.Slice(sum.Models, func(i, j int) bool {
		return sum.Models[i].CostUSD > sum.Models[j].CostUSD
	})

	sum.TotalCostUSD = math.Round(sum.TotalCostUSD*100) / 100
	if sum.TotalRequests > 0 {
		sum.AvgCostPerRequest = math.Round(sum.TotalCostUSD/float64(sum.TotalRequests)*10000) / 10000
	}
	return sum
}
