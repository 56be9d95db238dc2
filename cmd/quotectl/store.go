package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/document"
	"github.com/verandameister/quotedesk/internal/platform/db"
	"github.com/verandameister/quotedesk/internal/quotes"
	"github.com/verandameister/quotedesk/report"
)

func newMigrateCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the remote schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !env.cfg.RemoteEnabled() {
				return errors.New("PG_DSN is not set")
			}
			version, err := db.Migrate(env.cfg.PGDSN)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func newSeedCatalogCmd(env *cliEnv) *cobra.Command {
	var (
		file  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "seed-catalog",
		Short: "Store the built-in catalog, or one read from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tree, err := loadSeed(file)
			if err != nil {
				return err
			}
			stores, err := env.openStores(ctx)
			if err != nil {
				return err
			}
			defer stores.Close()

			if !force {
				if _, stored, err := stores.Local.StoredCatalog(ctx); err != nil {
					return err
				} else if stored {
					return errors.New("a catalog is already stored, use --force to replace it")
				}
			}
			if err := stores.Fallback.SaveCatalog(ctx, tree); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d categories, %d articles\n", len(tree), countArticles(tree))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog to store instead of the built-in one")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing catalog")
	return cmd
}

func newNextNumberCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "next-number",
		Short: "Print the number the next quote will get",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stores, err := env.openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()

			number, err := quotes.NewService(stores.Fallback, env.logger).NextNumber(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), number)
			return nil
		},
	}
}

func newRenderCmd(env *cliEnv) *cobra.Command {
	var (
		output string
		html   bool
	)
	cmd := &cobra.Command{
		Use:   "render <quote-id>",
		Short: "Render a quote or invoice to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stores, err := env.openStores(ctx)
			if err != nil {
				return err
			}
			defer stores.Close()

			q, err := quotes.NewService(stores.Fallback, env.logger).Get(ctx, args[0])
			if err != nil {
				return err
			}
			renderer := report.NewRenderer(document.DefaultCompany(), report.NewClient(env.cfg.GotenbergURL))
			var body []byte
			if html {
				body, err = renderer.HTML(q)
			} else {
				body, err = renderer.PDF(ctx, q)
			}
			if err != nil {
				return err
			}
			if output == "" {
				output = report.FileName(q)
				if html {
					output = output[:len(output)-len(".pdf")] + ".html"
				}
			}
			if err := os.WriteFile(output, body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(body))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, defaults to the document file name")
	cmd.Flags().BoolVar(&html, "html", false, "write the print HTML instead of a PDF")
	return cmd
}

func newResyncCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Push the local cache to the remote store now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stores, err := env.openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()

			if err := stores.Fallback.Resync(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "store mode: %s\n", stores.Fallback.Mode(cmd.Context()))
			return nil
		},
	}
}

func loadSeed(file string) (catalog.Catalog, error) {
	if file == "" {
		return catalog.Seed()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return catalog.ParseYAML(data)
}

func countArticles(tree catalog.Catalog) int {
	n := 0
	for _, main := range tree {
		for _, sub := range main.SubCategories {
			n += len(sub.Articles)
		}
	}
	return n
}
