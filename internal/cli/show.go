package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show OBJECT_ID",
	Short: "Show detailed information about a calc object",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	d, err := e.Store.Get(id)
	if err != nil {
		return err
	}

	fmt.Printf("Object ID:   %s\n", d.ObjectID)
	fmt.Printf("Name:        %s\n", d.ObjectName)
	fmt.Printf("Custom tag:  %s\n", d.CustomTag)
	fmt.Printf("Parent:      %s\n", d.ParentID)
	fmt.Printf("Remark:      %s\n", d.Remark)
	fmt.Printf("Sort number: %d\n", d.SortNumber)
	fmt.Printf("LRU maxsize: %d\n", d.LRUMaxSize)
	fmt.Printf("TTL seconds: %d\n", d.TTLSeconds)
	fmt.Printf("Updated:     %s\n", d.LastUpdatedTime.Format("2006-01-02 15:04:05"))
	fmt.Println("Code:")
	fmt.Println(indent(d.PythonCode))
	fmt.Println("Expression:")
	fmt.Println(indent(d.PythonExpr))

	if a, err := e.Registry.Get(id); err == nil {
		if params, err := a.Params(); err == nil {
			fmt.Printf("Parameters:  %s\n", strings.Join(params, ", "))
		}
	}

	return nil
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
