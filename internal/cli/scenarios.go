package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/homedeck/homedeck/internal/scenario"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Manage scenarios",
}

var scenariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenarios",
	RunE:  runScenariosList,
}

var scenariosRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Execute a scenario on the current hub",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenariosRun,
}

func init() {
	scenariosCmd.AddCommand(scenariosListCmd)
	scenariosCmd.AddCommand(scenariosRunCmd)
}

func runScenariosList(_ *cobra.Command, _ []string) error {
	var out struct {
		Scenarios []scenario.Scenario `json:"scenarios"`
	}
	if err := apiRequest("GET", "/api/v1/scenarios", nil, &out); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tENABLED\tACTIONS")
	for _, sc := range out.Scenarios {
		enabled := "no"
		if sc.Enabled {
			enabled = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sc.ID, sc.Name, enabled, strings.Join(sc.Actions, ", "))
	}
	w.Flush() //nolint:errcheck
	return nil
}

func runScenariosRun(_ *cobra.Command, args []string) error {
	if err := apiRequest("POST", "/api/v1/scenarios/"+args[0]+"/execute", nil, nil); err != nil {
		return err
	}
	fmt.Printf("executed scenario %s\n", args[0])
	return nil
}
