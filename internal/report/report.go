// Package report renders completion statistics as a markdown document.
package report

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/julianstephens/habit/internal/models"
)

// Renderers are cached by wrap width
var rendererCache sync.Map // map[int]*glamour.TermRenderer

func getRenderer(width int) (*glamour.TermRenderer, error) {
	if cached, ok := rendererCache.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}

	rendererCache.Store(width, renderer)
	return renderer, nil
}

// Markdown builds the report for a window of days ending on today.
func Markdown(stats []models.HabitStat, days int, today time.Time) string {
	var b strings.Builder

	start := today.AddDate(0, 0, -(days - 1))
	fmt.Fprintf(&b, "# Habit report\n\n")
	fmt.Fprintf(&b, "%s to %s (%d %s)\n\n", models.FormatDay(start), models.FormatDay(today), days, plural(days, "day"))

	if len(stats) == 0 {
		b.WriteString("_No habits tracked yet._\n")
		return b.String()
	}

	b.WriteString("| Habit | Done | Completion |\n")
	b.WriteString("| --- | ---: | ---: |\n")

	var total float64
	best := stats[0]
	for _, s := range stats {
		fmt.Fprintf(&b, "| %s | %d/%d | %.1f%% |\n", escapeCell(s.Name), s.Completed, s.Days, s.Percent)
		total += s.Percent
		if s.Percent > best.Percent {
			best = s
		}
	}

	fmt.Fprintf(&b, "\n**Average completion:** %.1f%%\n", total/float64(len(stats)))
	if best.Completed > 0 {
		fmt.Fprintf(&b, "\n**Most consistent:** %s\n", escapeInline(best.Name))
	}

	return b.String()
}

// Render formats markdown for the terminal. The raw markdown is returned
// alongside any renderer error.
func Render(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}

	renderer, err := getRenderer(width)
	if err != nil {
		return md, err
	}

	out, err := renderer.Render(md)
	if err != nil {
		return md, err
	}
	return out, nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(escapeInline(s), "|", `\|`)
}

func escapeInline(s string) string {
	replacer := strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`")
	return replacer.Replace(s)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
