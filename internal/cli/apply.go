package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abentley/tree-transform/internal/batch"
	"github.com/abentley/tree-transform/transform"
	"github.com/abentley/tree-transform/tree"
)

var (
	applyFile   string
	applyDryRun bool
)

var applyCmd = &cobra.Command{
	Use:   "apply [root]",
	Short: "Apply a batch of tree changes in one safe pass",
	Long: `Realize a batch file against the tree rooted at [root] (default:
current directory).

All new content is staged inside a temporary subtree first; the tree is only
modified once the complete rename plan has been generated. A failure before
that point leaves the tree untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		if applyDryRun {
			renames, err := planBatch(root, applyFile)
			if err != nil {
				return err
			}
			PrintWarning("Dry run - nothing applied.")
			return printPlan(renames)
		}

		b, err := batch.Load(applyFile)
		if err != nil {
			return err
		}
		var count int
		tf := transform.New(tree.NewFSTree(root))
		err = tf.Run(func(p *transform.Pending) error {
			if err := b.Stage(p); err != nil {
				return err
			}
			renames, err := p.GenerateRenames()
			if err != nil {
				return err
			}
			count = len(renames)
			return nil
		})
		if err != nil {
			return err
		}
		PrintSuccess(fmt.Sprintf("Applied %s", PrintCount(count, "rename", "renames")))
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "treetx.yaml", "Batch file to apply")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show the plan without applying")
}
