// cart is a terminal front end for the storefront cart. The cart lives in a file store on
// this machine; products are looked up through the catalog API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/logger"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/storage"
)

const usage = `usage: cart [flags] <command> [args]

commands:
  list            show the cart
  products        show the catalog
  add <id>        add one unit of a product
  remove <id>     remove a product line
  clear           empty the cart
  wipe            delete the stored cart
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "cart: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg := config.FromEnv()

	var (
		dir        = cfg.Cart.FileDir
		key        = cfg.Cart.StorageKey
		catalogURL = cfg.CatalogURL
		verbose    bool
	)
	flagSet := pflag.NewFlagSet("cart", pflag.ContinueOnError)
	flagSet.SetOutput(stdout)
	flagSet.Usage = func() {
		fmt.Fprint(stdout, usage, "\nflags:\n")
		flagSet.PrintDefaults()
	}
	flagSet.StringVar(&dir, "dir", dir, "directory holding the cart file")
	flagSet.StringVar(&key, "key", key, "storage key of the cart")
	flagSet.StringVar(&catalogURL, "catalog", catalogURL, "base URL of the catalog API")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log cart activity to stderr")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		flagSet.Usage()
		return errors.New("missing command")
	}

	log := logger.Nop()
	if verbose {
		l, err := logger.New(cfg.LogMode)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer l.Sync()
		log = l
	}

	kv, err := storage.NewFile(dir)
	if err != nil {
		return err
	}
	store := cartsvc.NewStore(kv, key, log)
	products := catalog.NewClient(catalogURL)

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "list":
		return printCart(stdout, cartsvc.New(ctx, store, log).Snapshot())
	case "products":
		list, err := products.List(ctx)
		if err != nil {
			return fmt.Errorf("fetch products: %w", err)
		}
		return printProducts(stdout, list)
	case "add":
		id, err := oneArg(cmd, cmdArgs)
		if err != nil {
			return err
		}
		p, err := products.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("fetch product %s: %w", id, err)
		}
		cart := cartsvc.New(ctx, store, log)
		cart.AddToCart(ctx, *p)
		if cart.NotificationVisible() {
			fmt.Fprintln(stdout, "Item added to cart successfully!")
		}
		return printCart(stdout, cart.Snapshot())
	case "remove":
		id, err := oneArg(cmd, cmdArgs)
		if err != nil {
			return err
		}
		cart := cartsvc.New(ctx, store, log)
		cart.RemoveFromCart(ctx, id)
		return printCart(stdout, cart.Snapshot())
	case "clear":
		cart := cartsvc.New(ctx, store, log)
		cart.ClearCart(ctx)
		return printCart(stdout, cart.Snapshot())
	case "wipe":
		if err := store.Wipe(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Cart storage wiped.")
		return nil
	default:
		flagSet.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func oneArg(cmd string, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("%s expects exactly one product id", cmd)
	}
	return args[0], nil
}

func printCart(w io.Writer, s cartsvc.Snapshot) error {
	if len(s.Entries) == 0 {
		_, err := fmt.Fprintln(w, "Your cart is empty.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QTY\tPRODUCT\tPRICE\tSUBTOTAL\tID")
	for _, e := range s.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.Quantity, e.Product.Name, e.Product.Price.StringFixed(2), e.Subtotal().StringFixed(2), e.Product.ID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Items: %d\nTotal: $%s\n", s.TotalItems, s.TotalPrice.StringFixed(2))
	return err
}

func printProducts(w io.Writer, products []domain.Product) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2))
	}
	return tw.Flush()
}
