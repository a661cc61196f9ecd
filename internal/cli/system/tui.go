package system

import (
	"github.com/julianstephens/habit/internal/cli"
	"github.com/julianstephens/habit/internal/lockfile"
	"github.com/julianstephens/habit/internal/tui"
)

type TuiCmd struct {
	Days int `help:"Window for the stats pane (default from config, 7)."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	return tui.Run(ctx.Store, ctx.StatsDays(c.Days), lockfile.PathFor(ctx.Store.GetConfigPath()))
}
