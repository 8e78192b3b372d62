package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/cbout22/gh-asset/internal/transfer"
)

// newGetCmd creates the `get` command.
// Usage: gh-asset get <name> [--repo R] [--token T] [--dir D]
func newGetCmd(a *app) *cobra.Command {
	var token, repo, dir string

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Download the release asset called <name>",
		Long: `Downloads the first asset called <name>, scanning releases in the order the
API lists them, into a local file of the same name. An existing file is
overwritten.

A token is only needed for private repositories: when the repository is not
visible anonymously the token is read from the environment or asked for.

Example:
  gh-asset get tool-linux-amd64.tar.gz --repo my-org/tool`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return a.completeAssets(cmd, repo, token, toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGet(cmd, args[0], repo, token, dir)
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository as owner/name (default: inferred from the git remote)")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token (only needed for private repositories)")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the asset into")

	return cmd
}

func (a *app) runGet(cmd *cobra.Command, name, repoFlag, token, dir string) error {
	repo, err := a.repoFlag(repoFlag)
	if err != nil {
		return err
	}
	timeout, err := a.timeout()
	if err != nil {
		return err
	}

	svc := a.service(cmd, timeout, true)
	svc.NewProgress = func(total int64, description string) transfer.Progress {
		w := cmd.ErrOrStderr()
		return progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		)
	}

	res, err := svc.Get(cmd.Context(), transfer.GetOptions{
		Name:  name,
		Repo:  repo,
		Token: token,
		Dir:   dir,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s (%d bytes) from %s\n", res.Path, res.Bytes, res.Repo)
	return nil
}
