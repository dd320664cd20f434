package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	resetYes       bool
	resetAnnotated bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the encoding store",
	Long:  "Deletes the encoding store. With --annotated, saved annotated images are removed too.",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		if resetYes || confirm(reader, os.Stdout, "⚠️  Are you sure you want to delete the encoding store?") {
			fmt.Println("🗑️  Clearing encoding store...")
			if err := Store.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset store: %w", err)
			}
		}

		if resetAnnotated {
			if resetYes || confirm(reader, os.Stdout, "⚠️  Are you sure you want to delete all annotated images?") {
				fmt.Println("🗑️  Clearing annotated images...")
				removeDir(Cfg.SaveDir)
			}
		}

		fmt.Println("✨ Reset complete.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip confirmation prompts")
	resetCmd.Flags().BoolVar(&resetAnnotated, "annotated", false, "Also delete saved annotated images")
	rootCmd.AddCommand(resetCmd)
}

func confirm(r *bufio.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

func removeDir(path string) {
	if err := os.RemoveAll(path); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
	}
}
