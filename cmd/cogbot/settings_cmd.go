package main

import (
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/cogbot"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect persisted category settings",
	}

	var guild int64
	show := &cobra.Command{
		Use:   "show <scope-id>",
		Short: "Prints the explicit settings of a channel or server",
		Long: "Prints the explicit settings stored for a channel or server id. " +
			"With --guild the scope is treated as a channel in that server and the " +
			"effective value of every category is shown.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scopeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: scope id %q", cogbot.ErrInvalidInput, args[0])
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			store, err := openStorage(a.cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := checkStorage(cmd.Context(), store); err != nil {
				return err
			}

			manager, err := newManager(a.cfg, store, cogbot.NopLogger())
			if err != nil {
				return err
			}
			manager.Load(cmd.Context())

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if cmd.Flags().Changed("guild") {
				views, err := manager.Effective(scopeID, guild)
				if err != nil {
					return err
				}
				fmt.Fprintln(tw, "CATEGORY\tSERVER\tCHANNEL\tEFFECTIVE")
				for _, v := range views {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Category, v.Guild, v.Channel, v.Effective)
				}
				return tw.Flush()
			}

			scope := manager.Scope(scopeID)
			if len(scope) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "no settings stored for %d\n", scopeID)
				return err
			}
			cats := make([]string, 0, len(scope))
			for cat := range scope {
				cats = append(cats, cat)
			}
			sort.Strings(cats)
			fmt.Fprintln(tw, "CATEGORY\tSTATE")
			for _, cat := range cats {
				fmt.Fprintf(tw, "%s\t%s\n", cat, scope[cat])
			}
			return tw.Flush()
		},
	}
	show.Flags().Int64Var(&guild, "guild", 0, "server id; resolves the scope as a channel in this server")

	cmd.AddCommand(show)
	return cmd
}
