package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cbout22/gh-asset/internal/github"
)

// completionTimeout keeps shell completion from blocking the shell.
const completionTimeout = time.Second

// completionReleases lists releases for completion. It never prompts and
// returns nil on any error.
func (a *app) completionReleases(cmd *cobra.Command, repoFlag, token string) []github.Release {
	if err := a.setup(cmd); err != nil {
		return nil
	}
	repo, err := a.repoFlag(repoFlag)
	if err != nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc := a.service(cmd, completionTimeout, false)
	_, releases, err := svc.List(ctx, repo, token)
	if err != nil {
		return nil
	}
	return releases
}

// completeTags suggests release tags.
func (a *app) completeTags(cmd *cobra.Command, repoFlag, token, toComplete string) ([]string, cobra.ShellCompDirective) {
	var completions []string
	for _, rel := range a.completionReleases(cmd, repoFlag, token) {
		if !strings.HasPrefix(rel.TagName, toComplete) {
			continue
		}
		desc := rel.Name
		if desc == "" {
			desc = "Release"
		}
		completions = append(completions, formatCompletionLine(rel.TagName, desc))
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeAssets suggests asset names, each once, described by the first
// release carrying it.
func (a *app) completeAssets(cmd *cobra.Command, repoFlag, token, toComplete string) ([]string, cobra.ShellCompDirective) {
	var completions []string
	seen := make(map[string]bool)
	for _, rel := range a.completionReleases(cmd, repoFlag, token) {
		for _, asset := range rel.Assets {
			if seen[asset.Name] || !strings.HasPrefix(asset.Name, toComplete) {
				continue
			}
			seen[asset.Name] = true
			completions = append(completions, formatCompletionLine(asset.Name, rel.TagName))
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// formatCompletionLine joins a value and its description the way cobra
// expects ("value\tdescription").
func formatCompletionLine(value, desc string) string {
	desc = strings.ReplaceAll(desc, "\t", " ")
	if len(desc) > 60 {
		desc = desc[:57] + "..."
	}
	return value + "\t" + desc
}
