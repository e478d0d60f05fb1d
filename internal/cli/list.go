package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every calc object in the catalog",
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	defs := e.Registry.List()
	if len(defs) == 0 {
		fmt.Println("No calc objects registered.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OBJECT_ID\tNAME\tPARENT\tCACHED")
	for _, d := range defs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", d.ObjectID, d.ObjectName, d.ParentID, d.HasCache())
	}
	return w.Flush()
}
