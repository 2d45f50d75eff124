package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/abentley/tree-transform/tree"
)

var lsCmd = &cobra.Command{
	Use:   "ls [root]",
	Short: "Recursively list a tree with recorded modes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		t := tree.NewFSTree(root)
		subs, err := t.IterSubpaths(".")
		if err != nil {
			return err
		}
		sort.Strings(subs)

		if jsonOutput {
			type entryJSON struct {
				Path string `json:"path"`
				Mode string `json:"mode"`
			}
			out := make([]entryJSON, 0, len(subs))
			for _, p := range subs {
				mode, err := t.FileMode(p)
				if err != nil {
					return err
				}
				out = append(out, entryJSON{Path: p, Mode: fmt.Sprintf("%04o", mode)})
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		for _, p := range subs {
			mode, err := t.FileMode(p)
			if err != nil {
				return err
			}
			PrintInfo(fmt.Sprintf("%04o  %s", uint32(mode), p))
		}
		return nil
	},
}
