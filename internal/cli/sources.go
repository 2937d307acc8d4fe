package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/hackscout/internal/ui"
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the sources scrape can crawl",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		crawlers := a.Registry.List()
		maxLen := 0
		for _, c := range crawlers {
			maxLen = max(maxLen, len(c.Name()))
		}

		w := cmd.OutOrStdout()
		writeSection(w, "Sources")
		for _, c := range crawlers {
			padding := strings.Repeat(" ", maxLen-len(c.Name())+2)
			fmt.Fprintf(w, "  %s%s%s\n", ui.Cyan(c.Name()), padding, ui.Dim(fmt.Sprintf("%s [%s]", c.Description(), c.Provider())))
		}
		fmt.Fprintln(w)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
