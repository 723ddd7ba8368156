package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leadscope/sitediag/internal/report"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect saved diagnosis results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved results, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := report.NewRepository(resultsDir)
		if err != nil {
			return err
		}
		summaries, err := repo.List()
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No saved results.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DOMAIN\tSTATUS\tTECH\tLOAD\tERRORS\tVULNS\tFILE")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				s.Domain,
				formatStatusWithColor(string(s.Status)),
				s.Tech,
				s.LoadTime,
				s.ConsoleErrorCount,
				s.VulnerabilitiesCount,
				s.Filename,
			)
		}
		return w.Flush()
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <filename>",
	Short: "Print one saved result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := report.NewRepository(resultsDir)
		if err != nil {
			return err
		}
		result, err := repo.Get(args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
}
