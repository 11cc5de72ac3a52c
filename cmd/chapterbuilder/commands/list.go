package commands

import (
	"fmt"
	"text/tabwriter"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Only []string `short:"o" sep:"," help:"List only these branches"`
}

func (l *ListCmd) Run(g *Global, root *CLI) error {
	cfg, reg, err := loadRegistry(root.Config, l.Only)
	if err != nil {
		return err
	}

	fmt.Fprintf(g.out(), "Repository: %s (%s)\n", cfg.RepoPath(), cfg.Repository.VCS)
	fmt.Fprintf(g.out(), "Artifact:   %s\n\n", cfg.BuiltArtifactPath())

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tBRANCH\tDATA FOLDER\tDLL\tARCHIVE")
	for i, s := range reg.Specs() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, s.BranchName(), s.DataFolderName(), s.OutputDllPath(), s.OutputArchivePath())
	}
	return tw.Flush()
}
