package main

import (
	"fmt"
	"time"

	"securebank/internal/views"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const clearScreen = "\033[H\033[2J"

func (c *cli) dashboardCmd() *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Balances, stats and recent transactions",
		Args:  cobra.NoArgs,
		RunE: c.private(func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				interval = c.cfg.Dashboard.PollInterval
			}
			d := views.NewDashboard(c.accounts, c.txs, interval, c.logger)
			defer d.Stop()
			out := cmd.OutOrStdout()

			if !watch {
				data, err := d.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, views.RenderDashboard(data, time.Now()))
				return nil
			}

			d.Watch(cmd.Context(), func(s views.State[views.DashboardData]) {
				if s.Loading {
					return
				}
				fmt.Fprint(out, clearScreen)
				if s.Loaded {
					fmt.Fprintln(out, views.RenderDashboard(s.Data, time.Now()))
				}
				if s.Err != nil {
					fmt.Fprintln(out, views.ErrorStyle.Render(displayError(s.Err)))
				}
				fmt.Fprintln(out, views.MutedStyle.Render(fmt.Sprintf("Refreshing every %s; Ctrl+C to quit.", interval)))
			})
			<-cmd.Context().Done()
			c.logger.Debug("Dashboard watch stopped", zap.Error(cmd.Context().Err()))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep refreshing until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (defaults to dashboard.poll_interval)")
	return cmd
}
