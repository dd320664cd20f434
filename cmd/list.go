package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/facepipe/internal/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the labels in the encoding store",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc, err := Store.Load(cmd.Context())
		if errors.Is(err, store.ErrNotFound) {
			fmt.Println("No encoding store found. Run with --train first.")
			return nil
		}
		if err != nil {
			return err
		}
		printLabels(enc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func printLabels(enc *store.Encodings) {
	labels := enc.Labels()
	if len(labels) == 0 {
		fmt.Println("No labels found in store.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "LABEL\tENCODINGS")
	fmt.Fprintln(w, "-----\t---------")
	for _, l := range labels {
		fmt.Fprintf(w, "%s\t%d\n", l.Name, l.Count)
	}
	w.Flush()

	fmt.Printf("\n%d encoding(s), model %s, training set as of %s\n", enc.Len(), enc.Model, enc.CreatedAt.Local().Format("2006-01-02 15:04"))
}
