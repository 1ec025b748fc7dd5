package status

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ukuts/arshin/internal/enrich"
	"github.com/ukuts/arshin/internal/table"
)

var (
	styleFound   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleMissing = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleHeading = lipgloss.NewStyle().Bold(true)
)

// Console renders one colored line per processed row and the final tally.
// It is injected into the pipeline behind an interface so outcome logic
// stays testable without any terminal dependency.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Start announces the run before the first row.
func (c *Console) Start(total int, outputPath string) {
	fmt.Fprintf(c.out, "Начинаем обработку %d строк. Результат пишется в %s в реальном времени.\n\n", total, outputPath)
}

// Row renders the status line for one processed row. Misses get a second
// line with the query URL so the operator can check the registry by hand.
func (c *Console) Row(index, total int, deviceNumber string, res enrich.Result, row table.Row) {
	prefix := fmt.Sprintf("[%d/%d] Прибор: %-15s", index, total, deviceNumber)

	switch res.Outcome {
	case enrich.OutcomeAlreadyFilled:
		fmt.Fprintf(c.out, "%s %s\n", prefix, styleSkipped.Render(fmt.Sprintf("-> Уже заполнен (ID: %s)", row["vri_id"])))
	case enrich.OutcomeSkipped:
		fmt.Fprintf(c.out, "%s %s\n", prefix, styleSkipped.Render("-> Нет номера прибора (пропуск)"))
	case enrich.OutcomeNotFound:
		fmt.Fprintf(c.out, "%s %s\n", prefix, styleMissing.Render("-> Не найдено"))
		fmt.Fprintf(c.out, "     Ссылка для проверки: %s\n", res.QueryURL)
	case enrich.OutcomeFound:
		fmt.Fprintf(c.out, "%s %s\n", prefix, styleFound.Render(fmt.Sprintf("-> Найдено! Дата: %s (ID: %s)", row["verification_date"], row["vri_id"])))
	}
}

// Report prints the final counter block. The skipped line only appears
// when something was actually skipped.
func (c *Console) Report(stats enrich.Stats) {
	rule := strings.Repeat("=", 30)

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, rule)
	fmt.Fprintln(c.out, styleHeading.Render("ИТОГОВЫЙ ОТЧЕТ:"))
	fmt.Fprintln(c.out, rule)
	fmt.Fprintf(c.out, "Всего строк:        %d\n", stats.Total)
	fmt.Fprintln(c.out, styleSkipped.Render(fmt.Sprintf("Было заполнено:     %d", stats.AlreadyFilled)))
	fmt.Fprintln(c.out, styleFound.Render(fmt.Sprintf("Найдено API:        %d", stats.Found)))
	fmt.Fprintln(c.out, styleMissing.Render(fmt.Sprintf("Не найдено:         %d", stats.NotFound)))
	if stats.Skipped > 0 {
		fmt.Fprintf(c.out, "Пропущено (пустые): %d\n", stats.Skipped)
	}
	fmt.Fprintln(c.out, rule)
}

// Nop discards all progress output; used in tests and JSON mode.
type Nop struct{}

func (Nop) Start(int, string)                              {}
func (Nop) Row(int, int, string, enrich.Result, table.Row) {}
func (Nop) Report(enrich.Stats)                            {}
