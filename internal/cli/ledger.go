package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/models"
)

func init() {
	rootCmd.AddCommand(simplifyCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(tokenCmd)
}

var simplifyCmd = &cobra.Command{
	Use:   "simplify GROUP_ID",
	Short: "Remove balances below one cent from a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.ledger.Simplify(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d balance(s) from group %s\n", removed, args[0])
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance USER_ID",
	Short: "Print a user's balance across all groups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		balance, err := a.reporter.GetUserBalance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printBalance(cmd.OutOrStdout(), balance, cfg.Currency)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token USER_ID",
	Short: "Issue an API token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is not configured")
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.store.GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		token, err := a.jwt.Generate(user)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func printBalance(w io.Writer, b *models.UserBalance, currency string) {
	fmt.Fprintf(w, "%s (%s)\n", b.UserName, b.UserID)
	fmt.Fprintf(w, "  You owe:      %s\n", b.TotalOwed.Format(currency))
	fmt.Fprintf(w, "  You are owed: %s\n", b.TotalOwedBy.Format(currency))
	fmt.Fprintf(w, "  Net:          %s\n", b.NetBalance.Format(currency))

	for _, g := range b.Groups {
		name := g.GroupName
		if name == "" {
			name = g.GroupID
		}
		fmt.Fprintf(w, "\n  %s\n", name)
		for _, cp := range g.Counterparties {
			if cp.Amount.IsNegative() {
				fmt.Fprintf(w, "    %s owes you %s\n", cp.UserID, cp.Amount.Neg().Format(currency))
			} else {
				fmt.Fprintf(w, "    you owe %s %s\n", cp.UserID, cp.Amount.Format(currency))
			}
		}
	}
}

