package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/workspace"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List workspaces",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var (
	listPorcelain bool
	listStatus    bool
)

func init() {
	listCmd.Flags().BoolVar(&listPorcelain, "porcelain", false, "Print workspace paths only")
	listCmd.Flags().BoolVar(&listStatus, "status", false, "Show uncommitted and unpushed counts")
	rootCmd.AddCommand(listCmd)
}

const shortHeadLen = 8

func runList(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a := application()

	repo, err := a.Repo(ctx, "")
	if err != nil {
		return err
	}
	infos, err := repo.Provider.List(ctx)
	if err != nil {
		return err
	}

	p := a.Printer
	if listPorcelain {
		for _, info := range infos {
			p.Raw("%s", info.Path)
		}
		return nil
	}

	if len(infos) == 0 {
		p.Info("No workspaces found")
		return nil
	}

	renderWorkspaces(p.Out(), infos, listStatus, func(path string) string {
		return workspaceState(ctx, repo.Provider, path)
	})
	return nil
}

// renderWorkspaces writes the workspace table. state is only called when
// withStatus is set.
func renderWorkspaces(w io.Writer, infos []workspace.Info, withStatus bool, state func(path string) string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"Path", "Branch", "Head", "Flags"}
	if withStatus {
		header = append(header, "Status")
	}
	t.AppendHeader(header)

	for _, info := range infos {
		row := table.Row{info.Path, workspaceLabel(info), shortHead(info.Head), strings.Join(workspaceFlags(info), ",")}
		if withStatus {
			row = append(row, state(info.Path))
		}
		t.AppendRow(row)
	}
	t.Render()
}

// workspaceLabel is the branch, else the jj workspace name, else "(detached)".
func workspaceLabel(info workspace.Info) string {
	switch {
	case info.Branch != "":
		return info.Branch
	case info.Name != "":
		return info.Name
	}
	return "(detached)"
}

func shortHead(head string) string {
	if len(head) > shortHeadLen {
		return head[:shortHeadLen]
	}
	return head
}

func workspaceFlags(info workspace.Info) []string {
	flags := []string{}
	if info.IsMain {
		flags = append(flags, "main")
	}
	if info.IsLocked {
		flags = append(flags, "locked")
	}
	return flags
}

// workspaceState summarizes changes and unpushed commits, e.g. "2M 1? ↑3".
func workspaceState(ctx context.Context, p workspace.Provider, path string) string {
	status, err := p.Status(ctx, path)
	if err != nil {
		logging.Debug("status failed", "path", path, "error", err)
		return "?"
	}
	unpushed, err := p.Unpushed(ctx, path)
	if err != nil {
		logging.Debug("unpushed check failed", "path", path, "error", err)
	}
	return formatState(status, unpushed)
}

func formatState(status workspace.Status, unpushed workspace.Unpushed) string {
	parts := lo.Compact([]string{
		countPart(status.Modified, "M"),
		countPart(status.Deleted, "D"),
		countPart(status.Untracked, "?"),
	})
	if status.HasUncommittedChanges && len(parts) == 0 {
		parts = append(parts, "dirty")
	}
	if unpushed.HasUnpushed {
		parts = append(parts, lo.Ternary(unpushed.Count > 0, fmt.Sprintf("↑%d", unpushed.Count), "↑"))
	}
	if len(parts) == 0 {
		return "clean"
	}
	return strings.Join(parts, " ")
}

func countPart(n int, suffix string) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
