package reporter

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/tellor-io/telliot-kadena/internal/feeds"
	"github.com/tellor-io/telliot-kadena/internal/logger"
	"github.com/tellor-io/telliot-kadena/internal/metrics"
	"github.com/tellor-io/telliot-kadena/internal/models"
)

// reporterLockWindow is 12 hours, shared between every stake multiple.
const reporterLockWindow = 43200 * time.Second

// defaultCheckURL answers quickly and is already in the reporter's egress
// set, which makes it a reasonable connectivity probe.
const defaultCheckURL = "https://api.coingecko.com/api/v3/ping"

// Oracle is the subset of the tellorflex module the reporter drives.
type Oracle interface {
	SubmitValue(ctx context.Context, queryID, value string, nonce int64, queryData string) (string, error)
	DepositStake(ctx context.Context, amount float64) (string, error)
	GetStakerInfo(ctx context.Context, staker string) (*models.StakerInfo, error)
	GetNewValueCountByQueryID(ctx context.Context, queryID string) (int64, error)
	StakeAmount(ctx context.Context) (float64, error)
}

// TokenReader reads staking token and native coin balances.
type TokenReader interface {
	Balance(ctx context.Context, account string) (float64, error)
	NativeBalance(ctx context.Context, account string) (float64, error)
}

// Params configures a Reporter.
type Params struct {
	Account    string
	Oracle     Oracle
	Token      TokenReader
	Datafeed   *feeds.DataFeed // nil picks a random catalog feed each round
	Catalog    *feeds.Catalog
	WaitPeriod time.Duration
	// Stake is the user-chosen stake in whole TRB; zero means the oracle's
	// requirement decides.
	Stake float64
	// MinNativeBalance is the KDA balance required to attempt a report.
	MinNativeBalance float64
	CheckURL         string
}

// Reporter submits spot prices to the oracle on an interval, keeping the
// account staked and honoring the reporter lock.
type Reporter struct {
	account          string
	oracle           Oracle
	token            TokenReader
	datafeed         *feeds.DataFeed
	catalog          *feeds.Catalog
	waitPeriod       time.Duration
	stake            float64
	minNativeBalance float64
	checkURL         string

	randomFeed  bool
	stakerInfo  *models.StakerInfo
	stakeAmount float64

	now func() time.Time
}

// New creates a reporter. The catalog is required when no datafeed is fixed.
func New(params Params) (*Reporter, error) {
	if params.Account == "" {
		return nil, fmt.Errorf("reporter account name is required")
	}
	if params.Datafeed == nil && params.Catalog == nil {
		return nil, fmt.Errorf("either a datafeed or a feed catalog is required")
	}
	if params.WaitPeriod <= 0 {
		params.WaitPeriod = 10 * time.Second
	}
	if params.CheckURL == "" {
		params.CheckURL = defaultCheckURL
	}
	logger.Info("Reporting with account: %s", params.Account)
	return &Reporter{
		account:          params.Account,
		oracle:           params.Oracle,
		token:            params.Token,
		datafeed:         params.Datafeed,
		catalog:          params.Catalog,
		waitPeriod:       params.WaitPeriod,
		stake:            params.Stake,
		minNativeBalance: params.MinNativeBalance,
		checkURL:         params.CheckURL,
		randomFeed:       params.Datafeed == nil,
		now:              time.Now,
	}, nil
}

// DepositStake deposits amount grains after checking the wallet covers it.
func (r *Reporter) DepositStake(ctx context.Context, amount float64) error {
	walletBalance, err := r.token.Balance(ctx, r.account)
	if err != nil {
		return fmt.Errorf("error reading wallet TRB balance: %w", err)
	}
	logger.Info("Current wallet TRB balance: %g", walletBalance)
	if amount/1e18 > walletBalance {
		return fmt.Errorf("not enough TRB in the account to cover the stake")
	}

	if _, err := r.oracle.DepositStake(ctx, amount); err != nil {
		return fmt.Errorf(
			"unable to deposit stake: %w. Make sure %s has enough of the current chain's currency and the oracle's currency (TRB)",
			err, r.account)
	}
	metrics.StakeDeposits.Inc()
	return nil
}

// EnsureStaked keeps the account's staked balance at or above the oracle's
// requirement and the user-chosen stake, depositing the difference.
func (r *Reporter) EnsureStaked(ctx context.Context) error {
	stakeAmount, err := r.oracle.StakeAmount(ctx)
	if err != nil {
		return fmt.Errorf("unable to read current stake amount: %w", err)
	}
	logger.Info("Current oracle stake amount: %g TRB", stakeAmount/1e18)

	stakerInfo, err := r.oracle.GetStakerInfo(ctx, r.account)
	if err != nil {
		return fmt.Errorf("unable to read staker info: %w", err)
	}
	if r.stakerInfo == nil {
		r.stakerInfo = stakerInfo
	}

	// A drop in staked balance between rounds usually means a dispute is
	// barring part of the stake.
	if r.stakerInfo.StakeBalance > stakerInfo.StakeBalance {
		r.stakerInfo.StakeBalance = stakerInfo.StakeBalance
		logger.Info("Your staked balance has decreased and the account might be in dispute")
	}

	if !stakerInfo.IsStaked {
		if err := r.DepositStake(ctx, stakeAmount); err != nil {
			return fmt.Errorf("unable to deposit initial stake: %w", err)
		}
		r.stakerInfo.StakeBalance += stakeAmount
		r.stakerInfo.IsStaked = true
		logger.Info("Successfully deposited initial stake")
	}

	r.stakerInfo.LastReport = stakerInfo.LastReport
	r.stakerInfo.ReportsCount = stakerInfo.ReportsCount

	logger.Info("Staker info: start date %d, staked balance %g TRB, locked balance %g, last report %d, reports count %d",
		stakerInfo.StartDate, stakerInfo.StakeBalance/1e18, stakerInfo.LockedBalance,
		stakerInfo.LastReport, stakerInfo.ReportsCount)

	if r.stakeAmount != 0 {
		if r.stakeAmount < stakeAmount {
			logger.Info("Stake amount has increased possibly due to TRB price change.")
		} else if r.stakeAmount > stakeAmount {
			logger.Info("Stake amount has decreased possibly due to TRB price change.")
		}
	}
	r.stakeAmount = stakeAmount

	stakedBalance := r.stakerInfo.StakeBalance
	chosenStake := r.stake * 1e18
	if r.stakeAmount > stakedBalance || chosenStake > stakedBalance {
		logger.Info("Depositing stake...")
		diff := math.Max(r.stakeAmount-stakedBalance, chosenStake-stakedBalance)
		if err := r.DepositStake(ctx, diff); err != nil {
			return err
		}
		r.stakerInfo.StakeBalance += diff
	}
	return nil
}

// CheckReporterLock returns an error while the account is still inside the
// reporter lock, with the time remaining.
func (r *Reporter) CheckReporterLock() error {
	if r.stakerInfo == nil || r.stakeAmount == 0 {
		return fmt.Errorf("unable to calculate reporter lock remaining time")
	}
	multiples := math.Floor(r.stakerInfo.StakeBalance / r.stakeAmount)
	if multiples < 1 {
		multiples = 1
	}
	lock := reporterLockWindow / time.Duration(multiples)
	unlocksAt := time.Unix(r.stakerInfo.LastReport, 0).Add(lock)
	remaining := unlocksAt.Sub(r.now()).Round(time.Second)
	if remaining > 0 {
		return fmt.Errorf("currently in reporter lock, time left: %s", remaining)
	}
	return nil
}

// FetchDatafeed returns the feed to report, suggesting a random catalog feed
// when none is fixed.
func (r *Reporter) FetchDatafeed() *feeds.DataFeed {
	if r.randomFeed {
		logger.Info("Fetching random datafeed...")
		r.datafeed = r.catalog.SuggestRandomFeed()
	}
	return r.datafeed
}

// IsOnline probes the connectivity check URL.
func (r *Reporter) IsOnline(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.checkURL, nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// HasNativeToken checks the account holds enough KDA to pay gas.
func (r *Reporter) HasNativeToken(ctx context.Context) bool {
	balance, err := r.token.NativeBalance(ctx, r.account)
	if err != nil {
		logger.Warn("Error fetching native token balance for %s: %v", r.account, err)
		return false
	}
	if balance < r.minNativeBalance {
		logger.Warn("%s has insufficient native tokens. Balance: %g, expected: %g.",
			r.account, balance, r.minNativeBalance)
		return false
	}
	return true
}

// ReportOnce runs a single reporting round: ensure staked, check the lock,
// fetch a fresh price and submit it. Returns the receipt status.
func (r *Reporter) ReportOnce(ctx context.Context) (string, error) {
	started := r.now()

	if err := r.EnsureStaked(ctx); err != nil {
		return "", err
	}
	if err := r.CheckReporterLock(); err != nil {
		return "", err
	}

	datafeed := r.FetchDatafeed()
	if datafeed == nil {
		return "", fmt.Errorf("unable to suggest datafeed")
	}
	logger.Info("Current query: %s", datafeed.Query.Descriptor())

	price, err := datafeed.FetchNewDatapoint(ctx)
	if err != nil {
		return "", fmt.Errorf("unable to retrieve updated datafeed value: %w", err)
	}

	queryData := datafeed.Query.QueryData()
	queryID := datafeed.Query.QueryID()
	value := FormatValue(price)

	nonce, err := r.oracle.GetNewValueCountByQueryID(ctx, queryID)
	if err != nil {
		return "", fmt.Errorf("unable to get nonce: %w", err)
	}

	logger.Info("Sending submit-value transaction")
	receipt, err := r.oracle.SubmitValue(ctx, queryID, value, nonce, queryData)
	if err != nil {
		metrics.ReportsFailed.Inc()
		return "", fmt.Errorf("unable to submit value: %w", err)
	}

	metrics.ReportsSubmitted.Inc()
	metrics.LastReportedPrice.WithLabelValues(datafeed.Query.Tag()).Set(price)
	metrics.SubmissionDuration.Observe(r.now().Sub(started).Seconds())
	logger.Info("Reported %s = %g (receipt %s)", datafeed.Query.Tag(), price, receipt)
	return receipt, nil
}

// Report runs reporting rounds every wait period until ctx is canceled.
// A positive count limits the number of rounds.
func (r *Reporter) Report(ctx context.Context, count int) error {
	for round := 0; count <= 0 || round < count; round++ {
		if r.IsOnline(ctx) {
			if r.HasNativeToken(ctx) {
				if _, err := r.ReportOnce(ctx); err != nil {
					logger.Warn("%v", err)
				}
			}
		} else {
			logger.Warn("Unable to connect to the internet!")
		}

		logger.Info("Sleeping for %s", r.waitPeriod)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.waitPeriod):
		}
	}
	return nil
}
