package report

import (
	"fmt"
	"strings"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
)

const narrativeSystemPrompt = `Ты бизнес-аналитик медицинского сервиса Medicod.
Пользователи загружают анализы крови, оплачивают расшифровку и получают AI-интерпретацию.
Дай краткий комментарий к метрикам за период: 2-3 главных вывода и одну рекомендацию.
Пиши по-русски, без воды, до 120 слов. Не повторяй цифры, которые уже есть в отчете,
объясняй что они значат для бизнеса.`

const questionSystemPrompt = `Ты бизнес-аналитик медицинского сервиса Medicod.
Отвечай на вопросы владельца продукта, опираясь только на предоставленные метрики.
Если данных для ответа не хватает, скажи об этом прямо. Пиши по-русски, кратко.`

// narrativePrompt serializes the report into the metric context the model
// comments on.
func narrativePrompt(rep *domain.PeriodReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Данные Medicod Backend за период %q:\n\n", rep.Label)
	writeMetricsContext(&b, rep)
	return b.String()
}

func questionPrompt(rep *domain.PeriodReport, question string) string {
	var b strings.Builder
	b.WriteString("Метрики Medicod Backend за последнюю неделю:\n\n")
	writeMetricsContext(&b, rep)
	fmt.Fprintf(&b, "\nВопрос: %s\n", question)
	return b.String()
}

func writeMetricsContext(b *strings.Builder, rep *domain.PeriodReport) {
	cur := rep.Current

	b.WriteString("Финансы:\n")
	fmt.Fprintf(b, "- Платежей: %d\n", cur.Payments.Total)
	fmt.Fprintf(b, "- Выручка: %.0f₽\n", cur.Payments.Revenue)
	fmt.Fprintf(b, "- Средний чек: %.0f₽\n", cur.Payments.AvgCheck)

	if rep.Comparison != nil {
		b.WriteString("\nДинамика к прошлому периоду:\n")
		fmt.Fprintf(b, "- Выручка: %+d%% (%s)\n", rep.Comparison.Payments.Revenue.Percent, rep.Comparison.Payments.Revenue.Trend)
		fmt.Fprintf(b, "- Платежи: %+d%%\n", rep.Comparison.Payments.Total.Percent)
		fmt.Fprintf(b, "- Ошибки: %+d%%\n", rep.Comparison.Errors.Total.Percent)
	}

	b.WriteString("\nИспользование функций:\n")
	fmt.Fprintf(b, "- OCR запросов: %d\n", cur.Features.OCR)
	fmt.Fprintf(b, "- AI анализов: %d\n", cur.Features.AI)

	b.WriteString("\nОшибки:\n")
	fmt.Fprintf(b, "- Всего: %d\n", cur.Errors.Total)
	fmt.Fprintf(b, "- Webhook: %d\n", cur.Errors.Webhook)

	if cur.Tokens.TotalRequests > 0 {
		b.WriteString("\nAI расходы:\n")
		fmt.Fprintf(b, "- Запросов: %d, стоимость $%.2f\n", cur.Tokens.TotalRequests, cur.Tokens.TotalCostUSD)
	}

	if rep.Health != nil {
		fmt.Fprintf(b, "\nHealth Score: %d/100 (%s)\n", rep.Health.Overall, rep.Health.Grade)
	}

	if rep.Alerts != nil && rep.Alerts.Total() > 0 {
		fmt.Fprintf(b, "\nАлерты: %d критичных, %d предупреждений, %d возможностей\n",
			len(rep.Alerts.Critical), len(rep.Alerts.Warning), len(rep.Alerts.Opportunity))
	}

	fmt.Fprintf(b, "\nПрогноз на месяц: %.0f₽ при цели %.0f₽\n", rep.Forecast.MonthlyProjection, rep.Forecast.MonthlyGoal)

	if len(cur.Missing) > 0 {
		fmt.Fprintf(b, "\nНет данных по секциям: %s\n", strings.Join(cur.Missing, ", "))
	}
}
