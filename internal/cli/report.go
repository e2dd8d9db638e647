package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tellor-io/telliot-kadena/internal/chainweb"
	"github.com/tellor-io/telliot-kadena/internal/config"
	"github.com/tellor-io/telliot-kadena/internal/contracts"
	"github.com/tellor-io/telliot-kadena/internal/feeds"
	"github.com/tellor-io/telliot-kadena/internal/keystore"
	"github.com/tellor-io/telliot-kadena/internal/logger"
	"github.com/tellor-io/telliot-kadena/internal/metrics"
	"github.com/tellor-io/telliot-kadena/internal/reporter"
	"github.com/tellor-io/telliot-kadena/internal/tui"
)

var settingsStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 2)

type reportOptions struct {
	account          string
	network          string
	queryTag         string
	buildSpot        bool
	gasLimit         int
	gasPrice         float64
	waitPeriod       int
	stake            float64
	minNativeBalance float64
	submitOnce       bool
	password         string
	yes              bool
	metricsAddr      string
}

func newReportCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report values to the Tellor oracle",
		Long: `Report spot prices to the Tellor oracle on Kadena.

The reporter keeps the account staked, honors the reporter lock and submits
a fresh price every wait period. Telliot will automatically stake more TRB
if your stake falls below the amount required to report; use --stake to
stake more than required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.account, "account", "a", "", "Name of the keyset used for reporting and staking (picked interactively when omitted)")
	cmd.Flags().StringVarP(&opts.network, "network", "n", "", "Network to report on (testnet04 or mainnet)")
	cmd.Flags().StringVarP(&opts.queryTag, "query-tag", "q", "", "Select a datafeed by query tag (e.g. kda-usd-spot)")
	cmd.Flags().BoolVarP(&opts.buildSpot, "build-spot", "b", false, "Build a spot price datafeed from asset/currency input")
	cmd.Flags().IntVar(&opts.gasLimit, "gas-limit", 150000, "Gas limit for submit transactions")
	cmd.Flags().Float64Var(&opts.gasPrice, "gas-price", 1.0e-7, "Gas price for submit transactions")
	cmd.Flags().IntVarP(&opts.waitPeriod, "wait-period", "w", 7, "Seconds between reporting rounds")
	cmd.Flags().Float64VarP(&opts.stake, "stake", "s", 10.0, "Total TRB stake to maintain")
	cmd.Flags().Float64Var(&opts.minNativeBalance, "min-native-token-balance", 0.25, "Minimum KDA balance required to report")
	cmd.Flags().BoolVar(&opts.submitOnce, "submit-once", false, "Submit a single value and exit")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "Keyset password (prompted when omitted)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the settings confirmation prompt")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Expose prometheus metrics on this address (e.g. :9090)")

	cobra.CheckErr(cmd.MarkFlagRequired("network"))
	return cmd
}

func runReport(opts *reportOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.network != "" {
		cfg.Main.Network = opts.network
	}
	logger.SetLevel(cfg.Main.LogLevel)

	store, err := keystore.NewStore()
	if err != nil {
		return err
	}
	keyset, err := selectKeyset(store, opts.account, cfg.Main.ChainID)
	if err != nil {
		return err
	}
	fmt.Printf("Using keyset: %v\n", keyset.Addresses())

	// The keyset decides the chain it reports on.
	if len(keyset.Chains()) > 0 {
		cfg.Main.ChainID = keyset.Chains()[0]
	}

	endpoint, err := cfg.GetEndpoint()
	if err != nil {
		return fmt.Errorf("accounts and/or endpoint unset: %w", err)
	}

	datafeed, catalog, err := chooseDatafeed(opts)
	if err != nil {
		return err
	}

	printReporterSettings(opts, cfg.Main.ChainID)
	if !opts.yes {
		if _, err := promptLine("Press [ENTER] to confirm settings"); err != nil {
			return err
		}
	}

	if !keyset.IsUnlocked() {
		password := opts.password
		if password == "" {
			password, err = promptPassword(fmt.Sprintf("Enter password for %s keyfile", keyset.Name))
			if err != nil {
				return err
			}
		}
		if err := keyset.Unlock(password); err != nil {
			return err
		}
	}
	defer keyset.Lock()

	client := chainweb.NewClient(endpoint)
	oracle := contracts.NewTellorFlex(client, keyset, opts.gasPrice, opts.gasLimit)
	token := contracts.NewToken(client)

	if opts.metricsAddr != "" {
		go metrics.Serve(opts.metricsAddr)
	}

	rep, err := reporter.New(reporter.Params{
		Account:          keyset.Name,
		Oracle:           oracle,
		Token:            token,
		Datafeed:         datafeed,
		Catalog:          catalog,
		WaitPeriod:       time.Duration(opts.waitPeriod) * time.Second,
		Stake:            opts.stake,
		MinNativeBalance: opts.minNativeBalance,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.submitOnce {
		_, err := rep.ReportOnce(ctx)
		return err
	}
	return rep.Report(ctx, 0)
}

// selectKeyset resolves the reporting keyset. With a name it must match
// exactly; without one, every keyset usable on the configured chain is a
// candidate and the picker prompts when several match.
func selectKeyset(store *keystore.Store, name string, chainID int) (*keystore.Keyset, error) {
	filter := keystore.FindFilter{Name: name, ChainID: -1}
	if name == "" {
		filter.ChainID = chainID
	}

	keysets, err := store.Find(filter)
	if err != nil {
		return nil, err
	}
	if len(keysets) == 0 {
		if name == "" {
			return nil, fmt.Errorf(
				"no keysets found for chain %d; add one with: kadena keyset add", chainID)
		}
		return nil, fmt.Errorf(
			"no keyset found named %q; add one with: kadena keyset add", name)
	}
	return tui.PickKeyset(keysets)
}

// chooseDatafeed resolves the feed from the flags: an interactively built
// spot feed, a catalog tag, or nil for a random suggestion each round.
func chooseDatafeed(opts *reportOptions) (*feeds.DataFeed, *feeds.Catalog, error) {
	catalog := feeds.NewCatalog()

	if opts.buildSpot {
		fmt.Println("Building SpotPrice feed:")
		asset, err := promptLine("Enter value for query parameter asset")
		if err != nil {
			return nil, nil, err
		}
		currency, err := promptLine("Enter value for query parameter currency")
		if err != nil {
			return nil, nil, err
		}
		feed, err := feeds.BuildSpotFeed(asset, currency)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to build datafeed from provided input: %w", err)
		}
		return feed, catalog, nil
	}

	if opts.queryTag != "" {
		feed, err := catalog.LookupFeed(opts.queryTag)
		if err != nil {
			return nil, nil, err
		}
		return feed, catalog, nil
	}
	return nil, catalog, nil
}

func printReporterSettings(opts *reportOptions, chainID int) {
	query := "synchronized queries"
	if opts.queryTag != "" {
		query = opts.queryTag
	}

	settings := fmt.Sprintf(
		"Reporting query: %s\n"+
			"Current chain ID: %d\n"+
			"Gas limit: %d\n"+
			"Gas price: %g\n"+
			"Desired stake amount: %g\n"+
			"Minimum KDA balance required to report: %g",
		query, chainID, opts.gasLimit, opts.gasPrice, opts.stake, opts.minNativeBalance)

	fmt.Fprintln(os.Stderr, settingsStyle.Render(settings))
}
