package cli

import (
	"github.com/spf13/cobra"

	"github.com/cbout22/gh-asset/internal/transfer"
)

// newUpCmd creates the `up` command.
// Usage: gh-asset up <file> <tag> [--token T] [--repo R]
func newUpCmd(a *app) *cobra.Command {
	var token, repo string

	cmd := &cobra.Command{
		Use:   "up <file> <tag>",
		Short: "Upload a file as an asset of the release tagged <tag>",
		Long: `Uploads <file> to the release tagged <tag>. The asset is named after the
file's base name. The API response is printed as returned; GitHub rejects
an asset whose name already exists in the release.

Example:
  gh-asset up dist/tool-linux-amd64.tar.gz v1.2.0`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			switch len(args) {
			case 0:
				return nil, cobra.ShellCompDirectiveDefault
			case 1:
				return a.completeTags(cmd, repo, token, toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUp(cmd, args[0], args[1], repo, token)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "GitHub token (overrides the token environment variable)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository as owner/name (default: inferred from the git remote)")

	return cmd
}

func (a *app) runUp(cmd *cobra.Command, file, tag, repoFlag, token string) error {
	repo, err := a.repoFlag(repoFlag)
	if err != nil {
		return err
	}
	timeout, err := a.timeout()
	if err != nil {
		return err
	}

	svc := a.service(cmd, timeout, true)
	_, err = svc.Up(cmd.Context(), transfer.UpOptions{
		File:  file,
		Tag:   tag,
		Repo:  repo,
		Token: token,
	})
	return err
}
