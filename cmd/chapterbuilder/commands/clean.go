package commands

import (
	"fmt"

	"git.home.luguber.info/inful/chapterbuilder/internal/pipeline"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	Only []string `short:"o" sep:"," help:"Clean only these branches (the built DLL is always removed)"`
}

func (c *CleanCmd) Run(g *Global, root *CLI) error {
	cfg, reg, err := loadRegistry(root.Config, c.Only)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg, g.runner(), pipeline.WithProgress(g.progress()))
	if err != nil {
		return err
	}
	removed, err := p.Clean(reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Removed %d stale outputs\n", len(removed))
	return nil
}
