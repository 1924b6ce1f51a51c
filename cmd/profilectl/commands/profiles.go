package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dtroode/profilekeeper/internal/model"
	"github.com/dtroode/profilekeeper/internal/service"
)

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *service.Profile) error {
				entries, err := svc.List(ctx)
				if err != nil {
					return err
				}
				if opts.output == OutputJSON {
					return writeJSON(cmd.OutOrStdout(), entries)
				}
				return writeTable(cmd.OutOrStdout(), entries)
			})
		},
	}
}

func newGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *service.Profile) error {
				p, err := svc.Get(ctx, args[0])
				if err != nil {
					return err
				}
				entry := model.ProfileEntry{Key: args[0], Profile: p}
				if opts.output == OutputJSON {
					return writeJSON(cmd.OutOrStdout(), entry)
				}
				return writeTable(cmd.OutOrStdout(), []model.ProfileEntry{entry})
			})
		},
	}
}

func newSaveCommand(opts *options) *cobra.Command {
	var (
		p     model.Profile
		attrs map[string]string
	)

	cmd := &cobra.Command{
		Use:   "save <key>",
		Short: "Create or replace a profile",
		Long: `Save stores the profile under key, replacing any profile already stored there.
Attributes not passed with --attr are dropped.`,
		Example: `  profilectl save alice --name Alice --bio "likes Go" --attr city=Oslo --attr lang=en`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Attributes = attrs
			return opts.withService(cmd, func(ctx context.Context, svc *service.Profile) error {
				if err := svc.Save(ctx, args[0], p.Normalize()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "display name")
	cmd.Flags().StringVar(&p.Bio, "bio", "", "free text biography")
	cmd.Flags().StringToStringVar(&attrs, "attr", nil, "attribute as key=value, repeatable")

	return cmd
}

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a profile",
		Long:  `Delete removes the profile stored under key. Deleting an absent key succeeds.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *service.Profile) error {
				if err := svc.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, entries []model.ProfileEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No profiles stored.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tNAME\tBIO\tATTRIBUTES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Key, e.Profile.Name, e.Profile.Bio, formatAttributes(e.Profile.Attributes))
	}
	return tw.Flush()
}

func formatAttributes(attrs map[string]string) string {
	pairs := make([]string, 0, len(attrs))
	for k, v := range attrs {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
