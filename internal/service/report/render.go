package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
)

var periodTitles = map[string]string{
	PeriodWeek:      "Еженедельный отчет",
	PeriodMonth:     "Отчет за месяц",
	PeriodToday:     "Отчет за сегодня",
	PeriodYesterday: "Отчет за вчера",
}

// Render produces the Telegram HTML rendering of a report. Section order is
// fixed: headline, finances, daily breakdown, funnel, features, errors,
// forecast, AI costs, alerts, narrative, status line.
func Render(rep *domain.PeriodReport) string {
	var b strings.Builder
	cur := rep.Current

	title := periodTitles[rep.Label]
	if title == "" {
		title = "Отчет"
	}
	fmt.Fprintf(&b, "📊 <b>%s Medicod Backend</b>\n", title)
	fmt.Fprintf(&b, "<i>%s</i>\n\n", rep.GeneratedAt.Format("02.01.2006"))

	if cur.Payments.Total == 0 && len(cur.Missing) > 0 {
		b.WriteString("ℹ️ Нет данных за этот период\n")
		renderMissing(&b, cur.Missing)
		return b.String()
	}

	renderFinances(&b, rep)
	renderByDay(&b, cur)
	renderFunnel(&b, cur)
	renderFeatures(&b, rep)
	renderErrors(&b, rep)
	renderForecast(&b, rep)
	renderTokens(&b, cur)
	renderAlerts(&b, rep.Alerts)
	renderAnomalies(&b, rep.Anomalies)
	renderHealth(&b, rep.Health)

	if rep.Narrative != "" {
		fmt.Fprintf(&b, "🤖 <b>Комментарий AI</b>\n%s\n\n", rep.Narrative)
	}
	renderMissing(&b, cur.Missing)
	b.WriteString(statusLine(rep.Alerts))
	return b.String()
}

func renderFinances(b *strings.Builder, rep *domain.PeriodReport) {
	p := rep.Current.Payments
	b.WriteString("💰 <b>Финансовая статистика</b>\n")
	fmt.Fprintf(b, "• Платежей: <b>%d</b>%s\n", p.Total, deltaSuffix(rep.Comparison, func(c *domain.Comparison) domain.Delta { return c.Payments.Total }))
	fmt.Fprintf(b, "• Выручка: <b>%.0f₽</b>%s\n", p.Revenue, deltaSuffix(rep.Comparison, func(c *domain.Comparison) domain.Delta { return c.Payments.Revenue }))
	fmt.Fprintf(b, "• Средний чек: <b>%.0f₽</b>%s\n\n", p.AvgCheck, deltaSuffix(rep.Comparison, func(c *domain.Comparison) domain.Delta { return c.Payments.AvgCheck }))
}

func renderByDay(b *strings.Builder, cur *domain.PeriodMetrics) {
	if len(cur.Payments.ByDay) == 0 {
		return
	}
	days := make([]string, 0, len(cur.Payments.ByDay))
	for d := range cur.Payments.ByDay {
		days = append(days, d)
	}
	sort.Strings(days)
	if len(days) > 7 {
		days = days[len(days)-7:]
	}

	b.WriteString("📅 <b>Динамика по дням</b>\n")
	for _, d := range days {
		stat := cur.Payments.ByDay[d]
		fmt.Fprintf(b, "• %s: %d платежей, %.0f₽\n", d, stat.Count, stat.Revenue)
	}
	b.WriteString("\n")
}

var funnelStageTitles = map[string]string{
	"landing":             "Лендинг",
	"viewed_info":         "Изучили сервис",
	"uploaded_analysis":   "Загрузили анализ",
	"viewed_results":      "Посмотрели результат",
	"clicked_payment":     "Нажали оплатить",
	"payment_page_opened": "Открыли оплату",
	"payment_completed":   "Оплатили",
	"returning_users":     "Вернулись",
}

func renderFunnel(b *strings.Builder, cur *domain.PeriodMetrics) {
	if len(cur.Funnel.Stages) == 0 {
		return
	}
	b.WriteString("🔥 <b>Воронка конверсии</b>\n")
	for _, st := range cur.Funnel.Stages {
		title := funnelStageTitles[st.Name]
		if title == "" {
			title = st.Name
		}
		fmt.Fprintf(b, "• %s: %d (%.2f%% от лендинга)\n", title, st.Count, st.FromLanding)
	}
	b.WriteString("\n")
}

func renderFeatures(b *strings.Builder, rep *domain.PeriodReport) {
	f := rep.Current.Features
	b.WriteString("🤖 <b>Использование функций</b>\n")
	fmt.Fprintf(b, "• OCR запросов: %d%s\n", f.OCR, deltaSuffix(rep.Comparison, func(c *domain.Comparison) domain.Delta { return c.Features.OCR }))
	fmt.Fprintf(b, "• AI анализ: %d%s\n\n", f.AI, deltaSuffix(rep.Comparison, func(c *domain.Comparison) domain.Delta { return c.Features.AI }))
}

func renderErrors(b *strings.Builder, rep *domain.PeriodReport) {
	e := rep.Current.Errors
	if e.Total == 0 {
		b.WriteString("✅ Ошибок нет\n\n")
		return
	}
	b.WriteString("⚠️ <b>Ошибки</b>\n")
	fmt.Fprintf(b, "• Всего: %d%s\n", e.Total, deltaSuffix(rep.Comparison, func(c *domain.Comparison) domain.Delta { return c.Errors.Total }))
	if e.Webhook > 0 {
		fmt.Fprintf(b, "• Webhook ошибки: %d\n", e.Webhook)
	}
	b.WriteString("\n")
}

func renderForecast(b *strings.Builder, rep *domain.PeriodReport) {
	f := rep.Forecast
	b.WriteString("🔮 <b>Прогноз</b>\n")
	fmt.Fprintf(b, "• Средняя выручка в день: %.0f₽\n", f.DailyAvg)
	fmt.Fprintf(b, "• Прогноз на месяц: <b>%.0f₽</b>", f.MonthlyProjection)
	if f.MonthlyGoal > 0 {
		fmt.Fprintf(b, " (цель %.0f₽)", f.MonthlyGoal)
	}
	b.WriteString("\n\n")
}

func renderTokens(b *strings.Builder, cur *domain.PeriodMetrics) {
	t := cur.Tokens
	if t.TotalRequests == 0 {
		return
	}
	b.WriteString("🧠 <b>AI токены и стоимость</b>\n")
	fmt.Fprintf(b, "• Запросов: %d\n", t.TotalRequests)
	fmt.Fprintf(b, "• Токенов: %d (prompt %d / completion %d)\n", t.TotalTokens, t.TotalPromptTokens, t.TotalCompletion)
	fmt.Fprintf(b, "• Стоимость: $%.2f (средняя $%.4f/запрос)\n", t.TotalCostUSD, t.AvgCostPerRequest)
	for _, m := range t.Models {
		fmt.Fprintf(b, "• %s: %d запросов, $%.2f\n", m.Model, m.Requests, m.CostUSD)
	}
	b.WriteString("\n")
}

func renderAlerts(b *strings.Builder, alerts *domain.AlertSet) {
	if alerts == nil || alerts.Total() == 0 {
		return
	}
	groups := []struct {
		emoji string
		title string
		items []domain.Finding
	}{
		{"🚨", "Критично", alerts.Critical},
		{"⚠️", "Предупреждения", alerts.Warning},
		{"💡", "Возможности", alerts.Opportunity},
	}
	for _, g := range groups {
		if len(g.items) == 0 {
			continue
		}
		fmt.Fprintf(b, "%s <b>%s</b>\n", g.emoji, g.title)
		for i, f := range g.items {
			fmt.Fprintf(b, "%d. <b>%s</b>\n", i+1, f.Title)
			fmt.Fprintf(b, "   %s\n", f.Message)
			if f.Impact != "" {
				fmt.Fprintf(b, "   Влияние: %s\n", f.Impact)
			}
			if f.Action != "" {
				fmt.Fprintf(b, "   Действие: %s\n", f.Action)
			}
		}
		b.WriteString("\n")
	}
}

func renderAnomalies(b *strings.Builder, anomalies []domain.Anomaly) {
	if len(anomalies) == 0 {
		return
	}
	b.WriteString("🔍 <b>Аномалии</b>\n")
	for _, a := range anomalies {
		fmt.Fprintf(b, "• %s\n", a.Message)
	}
	b.WriteString("\n")
}

func renderHealth(b *strings.Builder, h *domain.HealthScore) {
	if h == nil {
		return
	}
	emoji := "🔴"
	switch {
	case h.Overall >= 80:
		emoji = "🟢"
	case h.Overall >= 60:
		emoji = "🟡"
	}
	fmt.Fprintf(b, "🏥 <b>Health Score:</b> %s %d/100 (%s)\n", emoji, h.Overall, h.Grade)
	fmt.Fprintf(b, "<i>%s</i>\n\n", h.Status)
}

func renderMissing(b *strings.Builder, missing []string) {
	if len(missing) == 0 {
		return
	}
	fmt.Fprintf(b, "⚠️ <i>Нет данных по секциям: %s</i>\n\n", strings.Join(missing, ", "))
}

// statusLine closes the report: critical beats warning beats stable.
func statusLine(alerts *domain.AlertSet) string {
	switch {
	case alerts.NeedsImmediateAttention():
		return "🚨 <i>Требуется немедленное внимание</i>"
	case alerts != nil && len(alerts.Warning) > 0:
		return "⚠️ <i>Есть зоны для внимания</i>"
	default:
		return "✅ <i>Система работает стабильно</i>"
	}
}

func deltaSuffix(cmp *domain.Comparison, pick func(*domain.Comparison) domain.Delta) string {
	if cmp == nil {
		return ""
	}
	d := pick(cmp)
	return fmt.Sprintf(" (%+d%% %s)", d.Percent, d.Emoji)
}
