// cmd/glucoguide/foods.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mcp-glucoguide/internal/models"
)

var (
	foodsLimit int
	foodsJSON  bool
)

var foodsCmd = &cobra.Command{
	Use:   "foods",
	Short: "Browse the food database",
}

var foodsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search foods by name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFoodsSearch,
}

var foodsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List food categories",
	Args:  cobra.NoArgs,
	RunE:  runFoodsCategories,
}

func init() {
	foodsSearchCmd.Flags().IntVar(&foodsLimit, "limit", 20, "Maximum number of foods to list")
	foodsCmd.PersistentFlags().BoolVar(&foodsJSON, "json", false, "Output JSON")

	foodsCmd.AddCommand(foodsSearchCmd)
	foodsCmd.AddCommand(foodsCategoriesCmd)
	rootCmd.AddCommand(foodsCmd)
}

func runFoodsSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	catalog, err := openCatalog(ctx, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer catalog.Close()

	foods, err := catalog.SearchFoods(ctx, strings.Join(args, " "), foodsLimit)
	if err != nil {
		return err
	}

	if foodsJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(foods)
	}
	renderFoods(cmd.OutOrStdout(), foods)
	return nil
}

func renderFoods(w io.Writer, foods []models.Food) {
	if len(foods) == 0 {
		fmt.Fprintln(w, "No foods found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tGI\tCARBS/100G\tSERVING\tCATEGORY")
	for _, f := range foods {
		gi := "-"
		if f.GI != nil {
			gi = fmt.Sprintf("%.0f", *f.GI)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.0fg\t%s\n", f.Name, gi, f.Facts.Carbs, f.ServingSizeGrams, f.Category)
	}
	tw.Flush()
}

func runFoodsCategories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	catalog, err := openCatalog(ctx, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer catalog.Close()

	categories, err := catalog.Categories(ctx)
	if err != nil {
		return err
	}

	if foodsJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(categories)
	}
	for _, c := range categories {
		fmt.Fprintln(cmd.OutOrStdout(), c)
	}
	return nil
}
