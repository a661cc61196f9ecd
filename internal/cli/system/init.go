package system

import (
	"os"

	"github.com/julianstephens/habit/internal/cli"
	"github.com/julianstephens/habit/internal/config"
)

type InitCmd struct {
	WriteConfig bool `help:"Also write the effective settings to the config file if none exists."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("%s Database initialized at: %s\n", cli.Glyph(true), ctx.Store.GetConfigPath())

	if c.WriteConfig {
		return writeConfig(ctx)
	}
	return nil
}

func writeConfig(ctx *cli.Context) error {
	path := ctx.ConfigPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	path = config.ExpandPath(path)

	if _, err := os.Stat(path); err == nil {
		ctx.Printf("Config already exists at: %s\n", path)
		return nil
	}

	if err := ctx.Config.Save(path); err != nil {
		return err
	}
	ctx.Printf("%s Config written to: %s\n", cli.Glyph(true), path)
	return nil
}
