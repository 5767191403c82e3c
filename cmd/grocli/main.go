package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"grocli/cmd/grocli/ui"
	"grocli/internal/anim"
	"grocli/internal/api"
	"grocli/internal/cart"
	"grocli/internal/config"
	"grocli/internal/logging"
	"grocli/internal/notify"
	"grocli/internal/session"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiURL     string
	timeout    time.Duration

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "grocli",
	Short: "grocli - QuickBasket grocery delivery in your terminal",
	Long: `grocli is the terminal client for the QuickBasket grocery delivery
service: browse the catalog, fill a basket, apply coupons, and place orders
without leaving your shell. Delivery partners use the same binary to work
their assigned orders.

Run without arguments to start the interactive shopping interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "grocli" && cmd.CalledAs() == "grocli" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShop()
	},
}

// loginCmd authenticates from the shell; useful for scripting and for
// logging in before starting the TUI.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to QuickBasket",
	RunE:  runLogin,
}

// logoutCmd clears the persisted session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear stored credentials",
	RunE:  runLogout,
}

// ordersCmd prints order history without entering the TUI.
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Print your order history",
	RunE:  runOrders,
}

// partnerCmd prints a delivery partner's assigned orders.
var partnerCmd = &cobra.Command{
	Use:   "partner",
	Short: "Print your assigned deliveries",
	RunE:  runPartner,
}

// versionCmd prints the client version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the grocli version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Printf("grocli %s\n", cfg.Version)
		return nil
	},
}

var loginPhone string

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.grocli/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (or set GROCLI_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout for non-interactive commands")

	loginCmd.Flags().StringVar(&loginPhone, "phone", "", "Phone number (prompted when omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(partnerCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildServices wires the shared stores every command variant runs on.
func buildServices(cfg *config.Config) (*api.Client, *session.Store) {
	creds := session.NewFileStore(cfg.CredentialsPath())

	// The client and the session store reference each other: the store
	// calls the client to authenticate, the client reads the store's token
	// per request. The token source closure breaks the construction cycle.
	var sess *session.Store
	client := api.New(cfg.API.BaseURL, cfg.GetAPITimeout(), api.WithTokenSource(func() string {
		if sess == nil {
			return ""
		}
		return sess.Token()
	}))
	sess = session.NewStore(creds, client)
	sess.Restore()
	return client, sess
}

// runShop starts the interactive TUI.
func runShop() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Initialize(config.Dir()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
	defer logging.CloseAll()
	logging.Boot("grocli %s starting", cfg.Version)

	client, sess := buildServices(cfg)

	store := cart.NewStore(cfg.Cart, client)

	// The signal's timer and the credentials watcher both fire off the
	// bubbletea loop; they push messages through the program handle, which
	// is assigned before Run starts pumping.
	var program *tea.Program

	signal := cart.NewSignal(cfg.Cart.GetAutoHide(), func(shown bool) {
		if program != nil {
			program.Send(ui.VisibilityChangedMsg{Shown: shown})
		}
	})
	signal.Attach(store)
	defer signal.Close()

	coord := anim.NewCoordinator(cfg.Cart.GetFlyDuration(), cfg.Cart.TargetCoalescePx)

	tokens := notify.NewTokenStore(filepath.Join(config.Dir(), "device.json"))
	notifier := notify.NewManager(tokens, client)

	if cfg.Session.WatchCredentials {
		watcher, err := session.NewWatcher(sess, func(snap session.Snapshot) {
			if program != nil {
				program.Send(ui.SessionRefreshedMsg{Snapshot: snap})
			}
		})
		if err != nil {
			logging.SessionError("credentials watcher unavailable: %v", err)
		} else if err := watcher.Start(); err != nil {
			logging.SessionError("credentials watcher failed to start: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	model := ui.NewModel(ui.Deps{
		Client:  client,
		Cart:    store,
		Signal:  signal,
		Session: sess,
		Coord:   coord,
		Notify:  notifier,
		Styles:  ui.NewStyles(ui.DetectTheme()),
	})

	program = tea.NewProgram(model, tea.WithAltScreen())

	// Register the device token for a restored session in the background.
	if snap := sess.Snapshot(); snap.Identity != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := notifier.EnsureRegistered(ctx); err != nil {
				logging.Notify("registration skipped: %v", err)
			}
		}()
	}

	_, err = program.Run()
	return err
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, sess := buildServices(cfg)

	reader := bufio.NewReader(os.Stdin)
	phone := loginPhone
	if phone == "" {
		fmt.Print("Phone: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		phone = strings.TrimSpace(line)
	}
	fmt.Print("Password: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	password := strings.TrimSpace(line)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ok, err := sess.Login(ctx, phone, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("phone number or password is incorrect")
	}

	snap := sess.Snapshot()
	logger.Info("logged in", zap.String("role", string(snap.Identity.Role)))
	fmt.Printf("Signed in as %s (%s)\n", snap.Identity.Name, snap.Identity.Role)

	tokens := notify.NewTokenStore(filepath.Join(config.Dir(), "device.json"))
	if err := notify.NewManager(tokens, client).EnsureRegistered(ctx); err != nil {
		logger.Warn("device registration failed", zap.Error(err))
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, sess := buildServices(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	sess.Logout(ctx)
	fmt.Println("Signed out.")
	return nil
}

func runOrders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, sess := buildServices(cfg)
	if sess.Snapshot().Identity == nil {
		return fmt.Errorf("not signed in (run `grocli login`)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	orders, err := client.OrderHistory(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("%s  %-16s %-10s %s\n",
			o.CreatedAt.Format("2006-01-02 15:04"), o.ID, o.Status, o.Total.Rupees())
	}
	return nil
}

func runPartner(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, sess := buildServices(cfg)
	if sess.Snapshot().Identity == nil {
		return fmt.Errorf("not signed in (run `grocli login`)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	orders, err := client.AssignedOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("Nothing assigned right now.")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("%-16s %-18s %s  %s, %s\n",
			o.ID, o.Status, o.Total.Rupees(), o.Address.Line1, o.Address.City)
	}
	return nil
}
