package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habit/internal/cli"
	"github.com/julianstephens/habit/internal/logger"
	"github.com/julianstephens/habit/internal/models"
	"github.com/julianstephens/habit/internal/report"
)

type AddCmd struct {
	Name string `arg:"" optional:"" help:"Habit name. Prompts when omitted."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	name := c.Name
	if name == "" {
		var err error
		name, err = ctx.Prompter.Input("Habit name", models.ValidateHabitName)
		if err != nil {
			return err
		}
	}

	habit, err := ctx.Store.AddHabit(name)
	if err != nil {
		return err
	}
	logger.Info("Added habit", "id", habit.ID, "name", habit.Name)

	ctx.Printf("%s Added habit: %s\n", cli.Glyph(true), habit.Name)
	ctx.PerformAutomaticBackup()
	return nil
}

type DoneCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *DoneCmd) Run(ctx *cli.Context) error {
	entry, err := ctx.Store.MarkDone(c.Name)
	if err != nil {
		return err
	}
	logger.Info("Marked habit done", "habit_id", entry.HabitID, "day", entry.Day)

	ctx.Printf("%s Marked '%s' as done for today!\n", cli.Glyph(true), c.Name)
	return nil
}

type ListCmd struct {
	All bool `help:"Compute today's status with a single joined query. Output is the same."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.ListHabits(c.All)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		ctx.Println(cli.EmptyHabitsMessage)
		return nil
	}

	for _, habit := range habits {
		ctx.Printf("%s %s\n", cli.Glyph(habit.IsCompletedToday()), habit.Name)
	}
	return nil
}

type StatsCmd struct {
	Days   int  `help:"Number of days to show stats for (default from config, 7)."`
	Report bool `help:"Render a markdown report instead of bars."`
	Width  int  `help:"Wrap width for the report." default:"80"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	days := ctx.StatsDays(c.Days)

	stats, err := ctx.Store.GetStats(days)
	if err != nil {
		return err
	}

	if c.Report {
		md := report.Markdown(stats, days, ctx.Today())
		out, err := report.Render(md, c.Width)
		if err != nil {
			logger.Warn("Failed to render report, printing markdown", "error", err)
		}
		ctx.Printf("%s", out)
		return nil
	}

	if len(stats) == 0 {
		ctx.Println(cli.EmptyHabitsMessage)
		return nil
	}

	ctx.Println(cli.Header(fmt.Sprintf("Stats for the last %d %s:", days, pluralDays(days))))
	for _, s := range stats {
		ctx.Println(cli.StatLine(s.Name, s.Percent, ctx.BarWidth()))
	}
	return nil
}

type LogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

const logNameWidth = 20

func (c *LogCmd) Run(ctx *cli.Context) error {
	if c.Days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", c.Days)
	}

	var selected []models.Habit
	if c.Habit != "" {
		habit, found, err := ctx.Store.GetHabitByName(c.Habit)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("habit %q not found", c.Habit)
		}
		selected = []models.Habit{habit}
	} else {
		habits, err := ctx.Store.ListHabits(false)
		if err != nil {
			return err
		}
		selected = habits
	}

	if len(selected) == 0 {
		ctx.Println(cli.EmptyHabitsMessage)
		return nil
	}

	endDay := models.StartOfDay(ctx.Today())
	startDay := endDay.AddDate(0, 0, -(c.Days - 1))

	ctx.Println(cli.Header(fmt.Sprintf("Habit log (last %d %s):", c.Days, pluralDays(c.Days))))
	ctx.Println()

	var header strings.Builder
	header.WriteString(padName("Habit"))
	for i := 0; i < c.Days; i++ {
		fmt.Fprintf(&header, " %5s", startDay.AddDate(0, 0, i).Format("01/02"))
	}
	ctx.Println(header.String())
	ctx.Println(strings.Repeat("-", logNameWidth+6*c.Days))

	for _, habit := range selected {
		entries, err := ctx.Store.GetEntriesForHabit(habit.ID, models.FormatDay(startDay), models.FormatDay(endDay))
		if err != nil {
			return err
		}

		doneDays := make(map[string]bool, len(entries))
		for _, e := range entries {
			doneDays[e.Day] = true
		}

		var row strings.Builder
		row.WriteString(padName(habit.Name))
		for i := 0; i < c.Days; i++ {
			day := models.FormatDay(startDay.AddDate(0, 0, i))
			if doneDays[day] {
				row.WriteString("   " + cli.Glyph(true) + "  ")
			} else {
				row.WriteString("   ·  ")
			}
		}
		ctx.Println(row.String())
	}

	return nil
}

// padName truncates or pads a habit name to the log's name column.
func padName(name string) string {
	runes := []rune(name)
	if len(runes) > logNameWidth {
		return string(runes[:logNameWidth-3]) + "..."
	}
	return name + strings.Repeat(" ", logNameWidth-len(runes))
}

func pluralDays(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
