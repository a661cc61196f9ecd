package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/habit/internal/backup"
	"github.com/julianstephens/habit/internal/config"
	"github.com/julianstephens/habit/internal/logger"
	"github.com/julianstephens/habit/internal/storage"
)

type Context struct {
	Store      storage.Provider
	Config     *config.Config
	ConfigPath string // empty means the default location
	Out        io.Writer
	Prompter   Prompter
	Now        func() time.Time
}

// NewContext wires a context writing to stdout with interactive prompts.
func NewContext(store storage.Provider, cfg *config.Config) *Context {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Context{
		Store:    store,
		Config:   cfg,
		Out:      os.Stdout,
		Prompter: HuhPrompter{},
		Now:      time.Now,
	}
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Today returns the current time from the context clock
func (c *Context) Today() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// StatsDays returns days unless it is zero, in which case the configured default.
func (c *Context) StatsDays(days int) int {
	if days != 0 {
		return days
	}
	if c.Config != nil && c.Config.StatsDays > 0 {
		return c.Config.StatsDays
	}
	return config.Default().StatsDays
}

// BarWidth returns the configured stats bar width
func (c *Context) BarWidth() int {
	if c.Config != nil && c.Config.BarWidth > 0 {
		return c.Config.BarWidth
	}
	return config.Default().BarWidth
}

// PerformAutomaticBackup creates an automatic backup and only logs failures
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
