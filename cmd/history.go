package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/authscope/authscope-cli/internal/config"
	"github.com/authscope/authscope-cli/internal/history"
	"github.com/authscope/authscope-cli/internal/observability"
)

// newHistoryCmd creates the `history` command, which prints the persisted
// list of previously submitted URLs.
func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Prints recently analyzed target URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config: %w", err)
			}

			store, err := history.NewStore(cfg.History, observability.GetLogger())
			if err != nil {
				return err
			}

			entries, err := store.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("No history yet.")
				return nil
			}

			for _, e := range entries {
				cmd.Printf("%s  %s  %s\n",
					e.SubmittedAt.Local().Format("2006-01-02 15:04"), e.ID, e.URL)
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newHistoryCmd())
}
