package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"animecat/internal/identity"
	"animecat/internal/session"
)

func newMappingCommand(ctx *commandContext) *cobra.Command {
	mappingCmd := &cobra.Command{
		Use:   "mapping",
		Short: "Inspect and manage persisted Shikimori id mappings",
		Long: `Inspect and manage persisted Shikimori id mappings.

A mapping is written the first time an item resolves and is trusted from then
on. If Shikimori later merges or deletes an entry, remove the mapping so the
next resolve searches again.

Commands:
  get      - Show the mapping for an item without network access
  list     - List all mappings, newest first
  remove   - Remove a specific mapping by number (see 'list' for numbers)
  clear    - Remove all mappings`,
	}

	mappingCmd.AddCommand(newMappingGetCommand(ctx))
	mappingCmd.AddCommand(newMappingListCommand(ctx))
	mappingCmd.AddCommand(newMappingRemoveCommand(ctx))
	mappingCmd.AddCommand(newMappingClearCommand(ctx))

	return mappingCmd
}

func newMappingGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <item-id>",
		Short: "Show the persisted Shikimori id for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID := strings.TrimSpace(args[0])
			return ctx.withSession(func(sess *session.Session) error {
				id, found := sess.Resolver.CachedMapping(commandCtx(cmd), itemID)
				if ctx.JSONMode() {
					payload := map[string]any{"item_id": itemID, "found": found}
					if found {
						payload["shikimori_id"] = id
					}
					return writeJSON(cmd, payload)
				}
				if !found {
					fmt.Fprintf(cmd.OutOrStdout(), "No mapping for %s\n", itemID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %d\n", itemID, id)
				return nil
			})
		},
	}
}

func newMappingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all persisted mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(sess *session.Session) error {
				mappings, err := sess.Mappings.List(commandCtx(cmd))
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if mappings == nil {
						mappings = []identity.Mapping{}
					}
					return writeJSON(cmd, mappings)
				}

				out := cmd.OutOrStdout()
				if len(mappings) == 0 {
					fmt.Fprintln(out, "Mappings: empty")
					return nil
				}
				tbl := newListTable(true,
					column{title: "Item"},
					column{title: "Shikimori", numeric: true},
					column{title: "Query"},
					column{title: "Resolved"})
				for _, m := range mappings {
					tbl.add(m.LocalID, shikimoriCell(m.ExternalID), m.Query, relativeTime(m.ResolvedAt))
				}
				fmt.Fprintf(out, "Mappings: %s entries\n", humanize.Comma(int64(len(mappings))))
				fmt.Fprintln(out, tbl)
				return nil
			})
		},
	}
}

func newMappingRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <number>",
		Short: "Remove a specific mapping by number",
		Long: `Remove a specific mapping by its number from 'animecat mapping list'.

Example:
  animecat mapping list        # Shows numbered list of mappings
  animecat mapping remove 2    # Removes entry #2 from the list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryNum, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil || entryNum < 1 {
				return fmt.Errorf("invalid entry number: %s (must be a positive integer)", args[0])
			}
			return ctx.withSession(func(sess *session.Session) error {
				runCtx := commandCtx(cmd)
				mappings, err := sess.Mappings.List(runCtx)
				if err != nil {
					return err
				}
				if entryNum > len(mappings) {
					return fmt.Errorf("entry %d not found (have %d mappings)", entryNum, len(mappings))
				}
				target := mappings[entryNum-1]
				if err := sess.Mappings.Remove(runCtx, target.LocalID); err != nil {
					return fmt.Errorf("remove mapping: %w", err)
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{
						"removed":      true,
						"entry":        entryNum,
						"item_id":      target.LocalID,
						"shikimori_id": target.ExternalID,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed mapping %d (%s -> %d)\n", entryNum, target.LocalID, target.ExternalID)
				return nil
			})
		},
	}
}

func newMappingClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all mappings",
		Long:  "Delete all persisted mappings. Items will be searched again the next time they are resolved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(sess *session.Session) error {
				runCtx := commandCtx(cmd)
				// An unreadable collection is still cleared; the count is then unknown.
				mappings, listErr := sess.Mappings.List(runCtx)
				count := len(mappings)
				if listErr == nil && count == 0 {
					if ctx.JSONMode() {
						return writeJSON(cmd, map[string]any{"removed": 0})
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Mappings are already empty")
					return nil
				}
				if err := sess.Mappings.Clear(runCtx); err != nil {
					return err
				}
				if listErr != nil {
					if ctx.JSONMode() {
						return writeJSON(cmd, map[string]any{"removed": "unknown"})
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared unreadable mappings (%v)\n", listErr)
					return nil
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"removed": count})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d mappings\n", count)
				return nil
			})
		},
	}
}
