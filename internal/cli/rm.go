package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rmCmd)
}

var rmCmd = &cobra.Command{
	Use:   "rm OBJECT_ID",
	Short: "Remove a calc object from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func runRm(cmd *cobra.Command, args []string) error {
	id := args[0]

	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := e.Store.Delete(id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no such object: %s", id)
	}
	e.Registry.Delete(id)

	fmt.Printf("Removed %s\n", id)
	return nil
}
