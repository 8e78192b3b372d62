package cli

import (
	"fmt"
	"strconv"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/cbout22/gh-asset/internal/github"
)

// newListCmd creates the `list` command.
// Usage: gh-asset list [--repo R] [--token T]
func newListCmd(a *app) *cobra.Command {
	var token, repo string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List releases and their assets",
		Long: `Lists the releases of the repository (first page only) with the name and
size of every asset, in the order the API returns them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, repo, token)
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository as owner/name (default: inferred from the git remote)")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token (only needed for private repositories)")

	return cmd
}

func (a *app) runList(cmd *cobra.Command, repoFlag, token string) error {
	repo, err := a.repoFlag(repoFlag)
	if err != nil {
		return err
	}
	timeout, err := a.timeout()
	if err != nil {
		return err
	}

	svc := a.service(cmd, timeout, true)
	repo, releases, err := svc.List(cmd.Context(), repo, token)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(releases) == 0 {
		fmt.Fprintf(out, "No releases found in %s.\n", repo)
		return nil
	}

	fmt.Fprintln(out, releaseTable(releases))
	return nil
}

// releaseTable renders one row per asset; releases without assets get a
// single row with an empty asset column.
func releaseTable(releases []github.Release) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("TAG", "ASSET", "SIZE")
	for _, rel := range releases {
		if len(rel.Assets) == 0 {
			table.AddRow(rel.TagName, "", "")
			continue
		}
		for _, asset := range rel.Assets {
			table.AddRow(rel.TagName, asset.Name, strconv.FormatInt(asset.Size, 10))
		}
	}
	return table
}
