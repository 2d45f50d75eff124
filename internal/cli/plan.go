package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abentley/tree-transform/internal/batch"
	"github.com/abentley/tree-transform/transform"
	"github.com/abentley/tree-transform/tree"
)

var planFile string

var planCmd = &cobra.Command{
	Use:   "plan [root]",
	Short: "Show the ordered rename plan a batch would produce",
	Long: `Generate the rename plan for a batch file against the tree rooted at
[root] (default: current directory) without applying anything.

The plan lists every primitive rename in execution order: first relocations
into the staging area, deepest paths first, then placements into final
positions, shallowest first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		renames, err := planBatch(root, planFile)
		if err != nil {
			return err
		}
		return printPlan(renames)
	},
}

// planBatch stages the batch in a dry-run scope and captures the plan.
func planBatch(root, file string) ([]tree.Rename, error) {
	b, err := batch.Load(file)
	if err != nil {
		return nil, err
	}
	var renames []tree.Rename
	tf := transform.NewDryRun(tree.NewFSTree(root))
	err = tf.Run(func(p *transform.Pending) error {
		if err := b.Stage(p); err != nil {
			return err
		}
		renames, err = p.GenerateRenames()
		return err
	})
	if err != nil {
		return nil, err
	}
	return renames, nil
}

// planJSON is the --json shape of a plan.
type planJSON struct {
	Renames []renameJSON `json:"renames"`
}

type renameJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func printPlan(renames []tree.Rename) error {
	if jsonOutput {
		out := planJSON{Renames: make([]renameJSON, 0, len(renames))}
		for _, r := range renames {
			out.Renames = append(out.Renames, renameJSON{From: r.OldPath, To: r.NewPath})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	PrintSection("Rename Plan")
	if len(renames) == 0 {
		PrintInfo("No changes.")
		return nil
	}
	items := make([]string, 0, len(renames))
	for _, r := range renames {
		items = append(items, fmt.Sprintf("%s -> %s", r.OldPath, r.NewPath))
	}
	PrintList(items, 1)
	PrintInfo("")
	PrintInfo(fmt.Sprintf("Total: %s", PrintCount(len(renames), "rename", "renames")))
	return nil
}

func init() {
	planCmd.Flags().StringVarP(&planFile, "file", "f", "treetx.yaml", "Batch file to plan")
}
