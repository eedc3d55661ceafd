// cmd/cartctl/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	credentialout "storefront/internal/adapters/out/credential"
	httpout "storefront/internal/adapters/out/http"
	sqliteout "storefront/internal/adapters/out/sqlite"
	cartdom "storefront/internal/domain/cart"
	checkoutdom "storefront/internal/domain/checkout"
	"storefront/internal/platform/di"
)

// localDevice is the device id of the machine running cartctl.
const localDevice = "local"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cartctl:", err)
		os.Exit(1)
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "storefront-local.db"
	}
	return filepath.Join(home, ".storefront", "local.db")
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cartctl",
		Usage: "manage the storefront cart from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Value: defaultDBPath(), EnvVars: []string{"STOREFRONT_CARTCTL_DB"}, Usage: "local storage file"},
			&cli.StringFlag{Name: "backend", Value: httpout.DefaultBaseURL, EnvVars: []string{"STOREFRONT_BACKEND_BASE_URL", "BACKEND_BASE_URL"}},
			&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
		},
		Before: func(c *cli.Context) error {
			log.SetOutput(os.Stderr)
			if c.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "cart",
				Usage: "show or change the cart",
				Subcommands: []*cli.Command{
					{Name: "show", Usage: "print the cart", Action: withSession(cartShow)},
					{
						Name:  "add",
						Usage: "add a product",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "id", Required: true},
							&cli.StringFlag{Name: "name"},
							&cli.StringFlag{Name: "price", Value: "0"},
							&cli.IntFlag{Name: "qty", Value: 1},
							&cli.StringFlag{Name: "image"},
						},
						Action: withSession(cartAdd),
					},
					{
						Name:  "update",
						Usage: "set a product's quantity (values below 1 are ignored)",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "id", Required: true},
							&cli.IntFlag{Name: "qty", Required: true},
						},
						Action: withSession(cartUpdate),
					},
					{
						Name:   "remove",
						Usage:  "remove a product",
						Flags:  []cli.Flag{&cli.Int64Flag{Name: "id", Required: true}},
						Action: withSession(cartRemove),
					},
					{Name: "clear", Usage: "empty the cart", Action: withSession(cartClear)},
				},
			},
			{
				Name:  "login",
				Usage: "log in and merge the guest cart into the account cart",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"STOREFRONT_PASSWORD"}},
				},
				Action: withSession(login),
			},
			{Name: "logout", Usage: "forget the stored token", Action: withSession(logout)},
			{
				Name:  "checkout",
				Usage: "place an order for the current cart",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "method", Value: string(checkoutdom.COD), Usage: "cod | momo | vnpay | payos"},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "phone", Required: true},
					&cli.StringFlag{Name: "address", Required: true},
				},
				Action: withSession(checkout),
			},
			{
				Name:  "orders",
				Usage: "list, cancel or return orders of the logged-in account",
				Subcommands: []*cli.Command{
					{Name: "list", Usage: "print the order history, newest first", Action: withSession(ordersList)},
					{
						Name:   "cancel",
						Usage:  "cancel an order that has not shipped yet",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
						Action: withSession(ordersCancel),
					},
					{
						Name:   "return",
						Usage:  "request a return for a delivered order",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
						Action: withSession(ordersReturn),
					},
				},
			},
		},
	}
}

type sessionAction func(c *cli.Context, s *di.DeviceSession) error

// withSession opens local storage and wires the local device session.
func withSession(fn sessionAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		db, err := sqliteout.Open(c.String("db"))
		if err != nil {
			return err
		}
		defer db.Close()

		s := di.NewDeviceSession(localDevice, db.Device(localDevice), di.SessionDeps{
			Backend:   httpout.NewClient(c.String("backend"), c.Duration("timeout")),
			Validator: credentialout.NewJWTValidator(),
		})
		if err := s.Cart.Start(c.Context); err != nil {
			log.Printf("[cartctl] WARN: start: %v", err)
		}
		return fn(c, s)
	}
}

func cartShow(c *cli.Context, s *di.DeviceSession) error {
	printCart(c.App.Writer, s)
	return nil
}

func cartAdd(c *cli.Context, s *di.DeviceSession) error {
	price, err := decimal.NewFromString(strings.TrimSpace(c.String("price")))
	if err != nil {
		return fmt.Errorf("--price: %w", err)
	}
	line := cartdom.CartLine{
		ProductID: c.Int64("id"),
		Name:      c.String("name"),
		UnitPrice: price,
		Quantity:  c.Int("qty"),
		ImageRef:  c.String("image"),
	}
	if err := s.Cart.AddItem(c.Context, line); err != nil {
		return userErr(err)
	}
	printCart(c.App.Writer, s)
	return nil
}

func cartUpdate(c *cli.Context, s *di.DeviceSession) error {
	if err := s.Cart.UpdateQuantity(c.Context, c.Int64("id"), c.Int("qty")); err != nil {
		return userErr(err)
	}
	printCart(c.App.Writer, s)
	return nil
}

func cartRemove(c *cli.Context, s *di.DeviceSession) error {
	if err := s.Cart.RemoveItem(c.Context, c.Int64("id")); err != nil {
		return userErr(err)
	}
	printCart(c.App.Writer, s)
	return nil
}

func cartClear(c *cli.Context, s *di.DeviceSession) error {
	if err := s.Cart.ClearCart(c.Context); err != nil {
		return userErr(err)
	}
	printCart(c.App.Writer, s)
	return nil
}

func login(c *cli.Context, s *di.DeviceSession) error {
	cred, err := s.Auth.Login(c.Context, c.String("email"), c.String("password"))
	if err != nil && cred.Token == "" {
		return err
	}
	fmt.Fprintf(c.App.Writer, "logged in as %s\n", cred.Subject)
	if err != nil {
		fmt.Fprintf(c.App.ErrWriter, "warning: cart could not be synchronised: %v\n", err)
	}
	printCart(c.App.Writer, s)
	return nil
}

func logout(c *cli.Context, s *di.DeviceSession) error {
	if err := s.Auth.Logout(c.Context); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", err)
	}
	fmt.Fprintln(c.App.Writer, "logged out")
	printCart(c.App.Writer, s)
	return nil
}

func checkout(c *cli.Context, s *di.DeviceSession) error {
	method, err := checkoutdom.ParsePaymentMethod(c.String("method"))
	if err != nil {
		return err
	}
	customer := checkoutdom.Customer{
		Name:    c.String("name"),
		Email:   c.String("email"),
		Phone:   c.String("phone"),
		Address: c.String("address"),
	}

	ctx, cancel := context.WithTimeout(c.Context, 2*c.Duration("timeout"))
	defer cancel()

	res, err := s.Checkout.PlaceOrder(ctx, customer, method)
	if err != nil {
		if res.Order.ID != "" {
			return fmt.Errorf("order %s placed but payment link failed: %w", res.Order.ID, err)
		}
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "order %s (%s)\n", res.Order.ID, res.Method)
	fmt.Fprintf(w, "subtotal  %s\nshipping  %s\ntotal     %s\n", res.Quote.Subtotal, res.Quote.ShippingFee, res.Quote.GrandTotal)
	if res.RedirectURL != "" {
		fmt.Fprintf(w, "pay at: %s\n", res.RedirectURL)
	}
	return nil
}

func ordersList(c *cli.Context, s *di.DeviceSession) error {
	return printOrders(c, s)
}

func ordersCancel(c *cli.Context, s *di.DeviceSession) error {
	if err := s.Orders.Cancel(c.Context, c.String("id")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "order %s cancelled\n", c.String("id"))
	return printOrders(c, s)
}

func ordersReturn(c *cli.Context, s *di.DeviceSession) error {
	if err := s.Orders.Return(c.Context, c.String("id")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "return requested for order %s\n", c.String("id"))
	return printOrders(c, s)
}

func printOrders(c *cli.Context, s *di.DeviceSession) error {
	orders, err := s.Orders.MyOrders(c.Context)
	if err != nil {
		return err
	}
	w := c.App.Writer
	if len(orders) == 0 {
		fmt.Fprintln(w, "no orders")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tTOTAL\tACTIONS")
	for _, o := range orders {
		date := "-"
		if !o.CreatedAt.IsZero() {
			date = o.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		var actions []string
		if o.CanCancel() {
			actions = append(actions, "cancel")
		}
		if o.CanReturn() {
			actions = append(actions, "return")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.ID, date, o.Status, o.Total, strings.Join(actions, ","))
	}
	return tw.Flush()
}

func userErr(err error) error {
	if err == nil {
		return nil
	}
	msg := cartdom.UserMessage(err)
	if msg == err.Error() {
		return err
	}
	return fmt.Errorf("%s (%w)", msg, err)
}

func printCart(w io.Writer, s *di.DeviceSession) {
	lines := s.Cart.Lines()
	fmt.Fprintf(w, "mode: %s\n", s.Cart.Mode())
	if len(lines) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", l.ProductID, l.Name, l.UnitPrice, l.Quantity, l.Subtotal())
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "items: %d  total: %s\n", lines.ItemCount(), lines.Total())
}
