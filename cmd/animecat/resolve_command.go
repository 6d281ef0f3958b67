package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"animecat/internal/catalog"
	"animecat/internal/identity"
	"animecat/internal/session"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		itemID    string
		name      string
		english   string
		year      int
		typeCode  string
		itemsPath string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Find the Shikimori id for catalog items",
		Long: `Find the Shikimori id for one catalog item or a JSON file of items.

A persisted mapping is returned without any network access. Otherwise the
item's name is searched on Shikimori (falling back to the English name) and
the best candidate is stored for next time.

Examples:
  animecat resolve --id 42 --name "Sousou no Frieren" --year 2023 --type tv
  animecat resolve --items catalog.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []catalog.Item
			if strings.TrimSpace(itemsPath) != "" {
				loaded, err := loadItems(itemsPath)
				if err != nil {
					return err
				}
				items = loaded
			} else {
				item := catalog.Item{
					ID:   itemID,
					Name: catalog.Name{Main: name, English: english},
					Year: year,
				}
				if strings.TrimSpace(typeCode) != "" {
					item.Type = &catalog.TypeRef{Code: typeCode}
				}
				if err := item.Validate(); err != nil {
					return fmt.Errorf("%w (use --id and --name, or --items)", err)
				}
				items = []catalog.Item{item}
			}

			return ctx.withSession(func(sess *session.Session) error {
				runCtx := commandCtx(cmd)
				var results []identity.Result
				if len(items) == 1 {
					results = []identity.Result{sess.Resolver.Resolve(runCtx, items[0])}
				} else {
					results = sess.Resolver.ResolveBatch(runCtx, items)
				}
				if err := runCtx.Err(); err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, results)
				}
				renderResults(cmd, sess.Config.Shikimori.BaseURL, results)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&itemID, "id", "", "Local catalog item id")
	cmd.Flags().StringVar(&name, "name", "", "Primary item name")
	cmd.Flags().StringVar(&english, "english", "", "English name used when the primary search finds nothing")
	cmd.Flags().IntVar(&year, "year", 0, "Release year used to pick between candidates")
	cmd.Flags().StringVar(&typeCode, "type", "", "Release type code (tv, movie, ova, ona, special)")
	cmd.Flags().StringVar(&itemsPath, "items", "", "JSON file containing an array of catalog items")
	cmd.MarkFlagsMutuallyExclusive("items", "id")
	cmd.MarkFlagsMutuallyExclusive("items", "name")

	return cmd
}

func loadItems(path string) ([]catalog.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items file: %w", err)
	}
	var items []catalog.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse items file: %w", err)
	}
	if len(items) == 0 {
		return nil, errors.New("items file contains no items")
	}
	return items, nil
}

func renderResults(cmd *cobra.Command, baseURL string, results []identity.Result) {
	out := cmd.OutOrStdout()
	if len(results) == 1 {
		res := results[0]
		if !res.Found {
			fmt.Fprintf(out, "No Shikimori match for %s\n", res.ItemID)
			return
		}
		fmt.Fprintf(out, "%s -> %d (%s)\n", res.ItemID, res.ExternalID, describeSource(res))
		fmt.Fprintf(out, "%s/animes/%d\n", strings.TrimRight(baseURL, "/"), res.ExternalID)
		return
	}

	tbl := newListTable(true,
		column{title: "Item"},
		column{title: "Shikimori", numeric: true},
		column{title: "Source"},
		column{title: "Query"})
	found := 0
	for _, res := range results {
		var id int64
		if res.Found {
			id = res.ExternalID
			found++
		}
		tbl.add(res.ItemID, shikimoriCell(id), describeSource(res), res.Query)
	}
	fmt.Fprintln(out, tbl)
	fmt.Fprintf(out, "Resolved %d of %d items\n", found, len(results))
}

func describeSource(res identity.Result) string {
	switch {
	case !res.Found:
		return "not found"
	case res.Source == identity.SourceSearch && res.Reason != "":
		return fmt.Sprintf("search: %s", res.Reason)
	default:
		return res.Source
	}
}
