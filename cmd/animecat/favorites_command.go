package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"animecat/internal/favorites"
	"animecat/internal/session"
)

func newFavoritesCommand(ctx *commandContext) *cobra.Command {
	favoritesCmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "List and toggle favorite catalog items",
	}

	favoritesCmd.AddCommand(newFavoritesListCommand(ctx))
	favoritesCmd.AddCommand(newFavoritesToggleCommand(ctx))
	favoritesCmd.AddCommand(newFavoritesCheckCommand(ctx))

	return favoritesCmd
}

type favoriteView struct {
	favorites.Entry
	ShikimoriID int64 `json:"shikimori_id,omitempty"`
}

func newFavoritesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorites in the order they were added",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(sess *session.Session) error {
				runCtx := commandCtx(cmd)
				entries := sess.Favorites.List(runCtx)

				views := make([]favoriteView, 0, len(entries))
				for _, entry := range entries {
					// Cached mappings only; listing never hits the network.
					id, _ := sess.Resolver.CachedMapping(runCtx, entry.ItemID)
					views = append(views, favoriteView{Entry: entry, ShikimoriID: id})
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, views)
				}

				out := cmd.OutOrStdout()
				if len(views) == 0 {
					fmt.Fprintln(out, "Favorites: empty")
					return nil
				}
				tbl := newListTable(true,
					column{title: "Item"},
					column{title: "Shikimori", numeric: true},
					column{title: "Added"})
				for _, view := range views {
					tbl.add(view.ItemID, shikimoriCell(view.ShikimoriID), relativeTime(view.AddedAt))
				}
				fmt.Fprintln(out, tbl)
				return nil
			})
		},
	}
}

func newFavoritesToggleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <item-id>",
		Short: "Add an item to favorites, or remove it if already present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID := strings.TrimSpace(args[0])
			if itemID == "" {
				return fmt.Errorf("item id must not be empty")
			}
			return ctx.withSession(func(sess *session.Session) error {
				added := sess.Favorites.Toggle(commandCtx(cmd), itemID)
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"item_id": itemID, "favorite": added})
				}
				if added {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites\n", itemID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites\n", itemID)
				}
				return nil
			})
		},
	}
}

func newFavoritesCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <item-id>",
		Short: "Report whether an item is a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID := strings.TrimSpace(args[0])
			return ctx.withSession(func(sess *session.Session) error {
				favorite := sess.Favorites.IsFavorite(commandCtx(cmd), itemID)
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"item_id": itemID, "favorite": favorite})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Favorite: %s\n", yesNo(favorite))
				return nil
			})
		},
	}
}
