package reporter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellor-io/telliot-kadena/internal/feeds"
	"github.com/tellor-io/telliot-kadena/internal/models"
)

type fakeOracle struct {
	stakeAmount   float64
	stakerInfo    models.StakerInfo
	valueCount    int64
	deposits      []float64
	submitted     []string
	submitErr     error
	stakerInfoErr error
}

func (o *fakeOracle) SubmitValue(ctx context.Context, queryID, value string, nonce int64, queryData string) (string, error) {
	if o.submitErr != nil {
		return "", o.submitErr
	}
	o.submitted = append(o.submitted, queryID)
	return models.StatusSuccess, nil
}

func (o *fakeOracle) DepositStake(ctx context.Context, amount float64) (string, error) {
	o.deposits = append(o.deposits, amount)
	o.stakerInfo.StakeBalance += amount
	o.stakerInfo.IsStaked = true
	return models.StatusSuccess, nil
}

func (o *fakeOracle) GetStakerInfo(ctx context.Context, staker string) (*models.StakerInfo, error) {
	if o.stakerInfoErr != nil {
		return nil, o.stakerInfoErr
	}
	info := o.stakerInfo
	return &info, nil
}

func (o *fakeOracle) GetNewValueCountByQueryID(ctx context.Context, queryID string) (int64, error) {
	return o.valueCount, nil
}

func (o *fakeOracle) StakeAmount(ctx context.Context) (float64, error) {
	return o.stakeAmount, nil
}

type fakeToken struct {
	balance       float64
	nativeBalance float64
}

func (t *fakeToken) Balance(ctx context.Context, account string) (float64, error) {
	return t.balance, nil
}

func (t *fakeToken) NativeBalance(ctx context.Context, account string) (float64, error) {
	return t.nativeBalance, nil
}

type fixedSource struct{ price float64 }

func (s *fixedSource) Name() string { return "fixed" }

func (s *fixedSource) FetchPrice(ctx context.Context, asset, currency string) (float64, error) {
	return s.price, nil
}

func newTestReporter(t *testing.T, oracle *fakeOracle, token *fakeToken) *Reporter {
	t.Helper()
	feed := feeds.NewDataFeed(feeds.NewSpotPrice("kda", "usd"), &fixedSource{price: 0.961782})
	rep, err := New(Params{
		Account:          "reporter",
		Oracle:           oracle,
		Token:            token,
		Datafeed:         feed,
		WaitPeriod:       time.Millisecond,
		MinNativeBalance: 0.25,
	})
	require.NoError(t, err)
	return rep
}

func TestFormatValue(t *testing.T) {
	// b64url of "9.61782e+17", "5000000000000000.0" and "1e+18".
	assert.Equal(t, "OS42MTc4MmUrMTc", FormatValue(0.961782))
	assert.Equal(t, "NTAwMDAwMDAwMDAwMDAwMC4w", FormatValue(0.005))
	assert.Equal(t, "MWUrMTg", FormatValue(1.0))
}

func TestFormatGrains(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{5e15, "5000000000000000.0"},
		{9999999999999998.0, "9999999999999998.0"},
		{1e16, "1e+16"},
		{9.61782e17, "9.61782e+17"},
		{1.8504200000000001e21, "1.8504200000000001e+21"},
		{123456789.0, "123456789.0"},
		{0.5, "0.5"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{0, "0.0"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatGrains(tc.in), "formatGrains(%v)", tc.in)
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorContains(t, err, "account name")

	_, err = New(Params{Account: "reporter"})
	assert.ErrorContains(t, err, "datafeed or a feed catalog")
}

func TestEnsureStakedDepositsInitialStake(t *testing.T) {
	oracle := &fakeOracle{stakeAmount: 250e18}
	token := &fakeToken{balance: 1000}
	rep := newTestReporter(t, oracle, token)

	require.NoError(t, rep.EnsureStaked(context.Background()))
	require.Len(t, oracle.deposits, 1)
	assert.Equal(t, 250e18, oracle.deposits[0])
}

func TestEnsureStakedTopsUpToChosenStake(t *testing.T) {
	oracle := &fakeOracle{
		stakeAmount: 250e18,
		stakerInfo:  models.StakerInfo{IsStaked: true, StakeBalance: 250e18},
	}
	token := &fakeToken{balance: 1000}

	feed := feeds.NewDataFeed(feeds.NewSpotPrice("kda", "usd"), &fixedSource{price: 1})
	rep, err := New(Params{
		Account:  "reporter",
		Oracle:   oracle,
		Token:    token,
		Datafeed: feed,
		Stake:    500, // whole TRB, above the current staked balance
	})
	require.NoError(t, err)

	require.NoError(t, rep.EnsureStaked(context.Background()))
	require.Len(t, oracle.deposits, 1)
	assert.Equal(t, 250e18, oracle.deposits[0])
}

func TestEnsureStakedAlreadyStaked(t *testing.T) {
	oracle := &fakeOracle{
		stakeAmount: 250e18,
		stakerInfo:  models.StakerInfo{IsStaked: true, StakeBalance: 250e18},
	}
	rep := newTestReporter(t, oracle, &fakeToken{balance: 1000})

	require.NoError(t, rep.EnsureStaked(context.Background()))
	assert.Empty(t, oracle.deposits)
}

func TestDepositStakeInsufficientWallet(t *testing.T) {
	oracle := &fakeOracle{}
	token := &fakeToken{balance: 10} // 10 TRB cannot cover 250
	rep := newTestReporter(t, oracle, token)

	err := rep.DepositStake(context.Background(), 250e18)
	assert.ErrorContains(t, err, "not enough TRB")
	assert.Empty(t, oracle.deposits)
}

func TestCheckReporterLock(t *testing.T) {
	oracle := &fakeOracle{
		stakeAmount: 250e18,
		stakerInfo:  models.StakerInfo{IsStaked: true, StakeBalance: 250e18},
	}
	rep := newTestReporter(t, oracle, &fakeToken{balance: 1000})

	t.Run("before staker info is known", func(t *testing.T) {
		assert.Error(t, rep.CheckReporterLock())
	})

	require.NoError(t, rep.EnsureStaked(context.Background()))

	t.Run("inside the lock", func(t *testing.T) {
		rep.stakerInfo.LastReport = time.Now().Unix()
		err := rep.CheckReporterLock()
		assert.ErrorContains(t, err, "reporter lock")
	})

	t.Run("after the lock", func(t *testing.T) {
		rep.stakerInfo.LastReport = time.Now().Add(-13 * time.Hour).Unix()
		assert.NoError(t, rep.CheckReporterLock())
	})

	t.Run("double stake halves the lock", func(t *testing.T) {
		rep.stakerInfo.StakeBalance = 500e18
		rep.stakerInfo.LastReport = time.Now().Add(-7 * time.Hour).Unix()
		assert.NoError(t, rep.CheckReporterLock())

		rep.stakerInfo.StakeBalance = 250e18
		assert.Error(t, rep.CheckReporterLock())
	})
}

func TestReportOnce(t *testing.T) {
	oracle := &fakeOracle{
		stakeAmount: 250e18,
		stakerInfo: models.StakerInfo{
			IsStaked:     true,
			StakeBalance: 250e18,
			LastReport:   time.Now().Add(-24 * time.Hour).Unix(),
		},
		valueCount: 4,
	}
	rep := newTestReporter(t, oracle, &fakeToken{balance: 1000, nativeBalance: 5})

	receipt, err := rep.ReportOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, receipt)
	require.Len(t, oracle.submitted, 1)
	assert.Equal(t, "EWnklLBmDXxZh0jXcOHS7xoFwA6aWvle7NmnkvQIp_w", oracle.submitted[0])
}

func TestReportOnceBlockedByLock(t *testing.T) {
	oracle := &fakeOracle{
		stakeAmount: 250e18,
		stakerInfo: models.StakerInfo{
			IsStaked:     true,
			StakeBalance: 250e18,
			LastReport:   time.Now().Unix(),
		},
	}
	rep := newTestReporter(t, oracle, &fakeToken{balance: 1000, nativeBalance: 5})

	_, err := rep.ReportOnce(context.Background())
	assert.ErrorContains(t, err, "reporter lock")
	assert.Empty(t, oracle.submitted)
}

func TestReportOnceSubmitError(t *testing.T) {
	oracle := &fakeOracle{
		stakeAmount: 250e18,
		stakerInfo: models.StakerInfo{
			IsStaked:     true,
			StakeBalance: 250e18,
			LastReport:   time.Now().Add(-24 * time.Hour).Unix(),
		},
		submitErr: fmt.Errorf("node unavailable"),
	}
	rep := newTestReporter(t, oracle, &fakeToken{balance: 1000, nativeBalance: 5})

	_, err := rep.ReportOnce(context.Background())
	assert.ErrorContains(t, err, "unable to submit value")
}

func TestHasNativeToken(t *testing.T) {
	oracle := &fakeOracle{}

	rep := newTestReporter(t, oracle, &fakeToken{nativeBalance: 5})
	assert.True(t, rep.HasNativeToken(context.Background()))

	rep = newTestReporter(t, oracle, &fakeToken{nativeBalance: 0.1})
	assert.False(t, rep.HasNativeToken(context.Background()))
}

func TestIsOnline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"gecko_says": "(V3) To the Moon!"}`))
	}))
	defer server.Close()

	oracle := &fakeOracle{}
	rep := newTestReporter(t, oracle, &fakeToken{})
	rep.checkURL = server.URL
	assert.True(t, rep.IsOnline(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer down.Close()
	rep.checkURL = down.URL
	assert.False(t, rep.IsOnline(context.Background()))
}

func TestReportStopsOnContextCancel(t *testing.T) {
	oracle := &fakeOracle{
		stakeAmount: 250e18,
		stakerInfo:  models.StakerInfo{IsStaked: true, StakeBalance: 250e18},
	}
	rep := newTestReporter(t, oracle, &fakeToken{balance: 1000})
	rep.checkURL = "http://127.0.0.1:0" // offline, rounds only sleep

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rep.Report(ctx, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReportHonorsCount(t *testing.T) {
	oracle := &fakeOracle{
		stakeAmount: 250e18,
		stakerInfo:  models.StakerInfo{IsStaked: true, StakeBalance: 250e18},
	}
	rep := newTestReporter(t, oracle, &fakeToken{balance: 1000})
	rep.checkURL = "http://127.0.0.1:0" // offline, rounds only sleep

	require.NoError(t, rep.Report(context.Background(), 2))
}
