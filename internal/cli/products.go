package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vietddude/catalog/internal/catalog"
	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/core/resilience"
	"github.com/vietddude/catalog/internal/infra/storage/postgres"
)

var (
	listPage int
	listSize int
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Inspect products in the database",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of products",
	Run:   runProductsList,
}

var productsGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a single product",
	Args:  cobra.ExactArgs(1),
	Run:   runProductsGet,
}

func init() {
	productsListCmd.Flags().IntVar(&listPage, "page", 0, "zero-based page index")
	productsListCmd.Flags().IntVar(&listSize, "size", 10, "page size")
	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsGetCmd)
	rootCmd.AddCommand(productsCmd)
}

// withService runs fn against a catalog service backed by the configured database.
func withService(fn func(ctx context.Context, svc *catalog.Service) error) {
	ctx := context.Background()
	cfg := loadConfig()
	db := openDB(ctx, cfg)
	defer func() {
		_ = db.Close()
	}()

	runner := resilience.NewRunner(cfg.Execution.Workers, nil)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = runner.Shutdown(shutdownCtx)
	}()

	svc := catalog.NewService(
		postgres.NewProductRepo(db),
		resilience.NewPolicy(runner, cfg.Execution.Resilience()),
		resilience.NewRecoveryHandler(nil),
		catalog.WithTransient(postgres.IsTransient),
	)
	if err := fn(ctx, svc); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func renderProducts(products ...domain.Product) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name", "Price")
	for _, p := range products {
		table.Append([]string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			fmt.Sprintf("%.2f", p.Price),
		})
	}
	table.Render()
}

func runProductsList(cmd *cobra.Command, args []string) {
	withService(func(ctx context.Context, svc *catalog.Service) error {
		page, err := svc.List(ctx, domain.PageRequest{Index: listPage, Size: listSize})
		if err != nil {
			return err
		}
		renderProducts(page.Items...)
		fmt.Printf("page %d of %d (%d products)\n", page.Index+1, page.TotalPages(), page.Total)
		return nil
	})
}

func runProductsGet(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Printf("Invalid product id: %v\n", err)
		os.Exit(1)
	}

	withService(func(ctx context.Context, svc *catalog.Service) error {
		p, err := svc.Get(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			fmt.Printf("Product %d not found\n", id)
			return nil
		}
		if err != nil {
			return err
		}
		renderProducts(p)
		return nil
	})
}
