package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/homedeck/homedeck/internal/hub"
)

var (
	addHubName string
	addHubType string
)

var hubsCmd = &cobra.Command{
	Use:   "hubs",
	Short: "Manage registered hubs",
}

var hubsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered hubs",
	RunE:  runHubsList,
}

var hubsAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Probe and register a hub",
	Args:  cobra.ExactArgs(1),
	RunE:  runHubsAdd,
}

var hubsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a hub",
	Args:  cobra.ExactArgs(1),
	RunE:  runHubsRemove,
}

var hubsSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Make a hub current",
	Args:  cobra.ExactArgs(1),
	RunE:  runHubsSelect,
}

func init() {
	hubsAddCmd.Flags().StringVar(&addHubName, "name", "", "display name for the hub")
	hubsAddCmd.Flags().StringVar(&addHubType, "type", "remote", "hub type (local, cloud, remote)")

	hubsCmd.AddCommand(hubsListCmd)
	hubsCmd.AddCommand(hubsAddCmd)
	hubsCmd.AddCommand(hubsRemoveCmd)
	hubsCmd.AddCommand(hubsSelectCmd)
}

func runHubsList(_ *cobra.Command, _ []string) error {
	var out struct {
		Hubs []hub.Hub `json:"hubs"`
	}
	if err := apiRequest("GET", "/api/v1/hubs", nil, &out); err != nil {
		return err
	}
	printHubTable(out.Hubs)
	return nil
}

func printHubTable(hubs []hub.Hub) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tURL\tTYPE\tSTATUS\tDEFAULT")
	for _, h := range hubs {
		def := ""
		if h.IsDefault {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", h.ID, h.Name, h.URL, h.Type, h.Status, def)
	}
	w.Flush() //nolint:errcheck
}

func runHubsAdd(_ *cobra.Command, args []string) error {
	name := addHubName
	if name == "" {
		name = args[0]
	}
	var created hub.Hub
	err := apiRequest("POST", "/api/v1/hubs", map[string]string{
		"url": args[0], "name": name, "type": addHubType,
	}, &created)
	if err != nil {
		return err
	}
	fmt.Printf("registered hub %s (%s)\n", created.ID, created.Name)
	return nil
}

func runHubsRemove(_ *cobra.Command, args []string) error {
	if err := apiRequest("DELETE", "/api/v1/hubs/"+args[0], nil, nil); err != nil {
		return err
	}
	fmt.Printf("removed hub %s\n", args[0])
	return nil
}

func runHubsSelect(_ *cobra.Command, args []string) error {
	var current hub.Hub
	if err := apiRequest("POST", "/api/v1/hubs/"+args[0]+"/select", nil, &current); err != nil {
		return err
	}
	fmt.Printf("current hub is now %s (%s)\n", current.ID, current.Name)
	return nil
}
