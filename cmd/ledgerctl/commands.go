package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"money-tracking/internal/config"
	"money-tracking/internal/database"
	"money-tracking/internal/demo"
	"money-tracking/internal/ledger"
	"money-tracking/internal/rates"
	"money-tracking/internal/util"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Globals struct {
	Config string `help:"Config file (defaults to ./config.yaml when present)." type:"path" short:"c"`
}

type Commands struct {
	Migrate  MigrateCmd  `cmd:"" help:"Create or upgrade the ledger store."`
	Onboard  OnboardCmd  `cmd:"" help:"Create the default accounts and categories."`
	Balances BalancesCmd `cmd:"" help:"Print account balances and net worth."`
	Convert  ConvertCmd  `cmd:"" help:"Change the working currency, converting every amount."`
	Sweep    SweepCmd    `cmd:"" help:"Flag planifications whose deadline has passed."`
	Demo     DemoCmd     `cmd:"" help:"Fill the ledger with generated activity."`
}

// env is an opened, migrated store.
type env struct {
	cfg *config.Config
	db  *gorm.DB
	svc *ledger.Service
}

func open(g *Globals) (*env, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	db, err := database.InitWithLogLevel(cfg.Database, "silent")
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	if err := database.Seed(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return &env{cfg: cfg, db: db, svc: ledger.New(db, ledger.WithLimits(cfg.Ledger))}, nil
}

func (e *env) close() { _ = database.Close(e.db) }

type MigrateCmd struct{}

func (cmd *MigrateCmd) Run(ctx *kong.Context, g *Globals) error {
	e, err := open(g)
	if err != nil {
		return err
	}
	defer e.close()
	v, err := database.SchemaVersion(e.db)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout, "schema version %d\n", v)
	return nil
}

type OnboardCmd struct {
	Bank     string `help:"Initial bank balance, e.g. 1500.00." default:"0"`
	Cash     string `help:"Initial cash balance." default:"0"`
	Currency string `help:"ISO currency code; defaults to ledger.default_currency."`
}

func (cmd *OnboardCmd) Run(ctx *kong.Context, g *Globals) error {
	bank, err := util.ParseAmount(cmd.Bank)
	if err != nil {
		return fmt.Errorf("--bank: %w", err)
	}
	cash, err := util.ParseAmount(cmd.Cash)
	if err != nil {
		return fmt.Errorf("--cash: %w", err)
	}
	e, err := open(g)
	if err != nil {
		return err
	}
	defer e.close()
	if err := e.svc.Onboard(context.Background(), ledger.OnboardInput{
		BankInitial: bank,
		CashInitial: cash,
		Currency:    cmd.Currency,
	}); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Stdout, "onboarding completed")
	return nil
}

type BalancesCmd struct{}

func (cmd *BalancesCmd) Run(ctx *kong.Context, g *Globals) error {
	e, err := open(g)
	if err != nil {
		return err
	}
	defer e.close()
	return printBalances(context.Background(), ctx.Stdout, e.svc)
}

func printBalances(ctx context.Context, w io.Writer, svc *ledger.Service) error {
	currency, err := svc.Currency(ctx)
	if err != nil {
		return err
	}
	accounts, err := svc.ListAccounts(ctx)
	if err != nil {
		return err
	}
	worth, err := svc.NetWorth(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", a.Name, a.Type, util.DisplayAmount(a.Balance, currency))
	}
	fmt.Fprintf(tw, "net worth\t\t%s\t\n", util.DisplayAmount(worth, currency))
	return tw.Flush()
}

type ConvertCmd struct {
	Code string `arg:"" help:"Target currency code."`
	Rate string `help:"Units of the target per unit of the current currency; fetched when omitted."`
}

func (cmd *ConvertCmd) Run(ctx *kong.Context, g *Globals) error {
	e, err := open(g)
	if err != nil {
		return err
	}
	defer e.close()

	bg := context.Background()
	code := strings.ToUpper(cmd.Code)
	current, err := e.svc.Currency(bg)
	if err != nil {
		return err
	}

	var rate decimal.Decimal
	if cmd.Rate != "" {
		if rate, err = decimal.NewFromString(cmd.Rate); err != nil {
			return fmt.Errorf("--rate: %w", err)
		}
	} else {
		client := rates.New(e.cfg.Rates.BaseURL, e.cfg.Rates.TTL, nil)
		if rate, err = client.Rate(bg, current, code); err != nil {
			return err
		}
	}

	if err := e.svc.ChangeCurrency(bg, code, rate); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout, "converted %s -> %s at %s\n", current, code, rate)
	return printBalances(bg, ctx.Stdout, e.svc)
}

type SweepCmd struct{}

func (cmd *SweepCmd) Run(ctx *kong.Context, g *Globals) error {
	e, err := open(g)
	if err != nil {
		return err
	}
	defer e.close()
	n, err := e.svc.CheckExpired(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout, "%d planification(s) expired\n", n)
	return nil
}

type DemoCmd struct {
	Seed   int64 `help:"Random seed; 0 picks one."`
	Days   int   `help:"Days of history to generate." default:"30"`
	PerDay int   `help:"Movements per day." default:"3"`
}

func (cmd *DemoCmd) Run(ctx *kong.Context, g *Globals) error {
	e, err := open(g)
	if err != nil {
		return err
	}
	defer e.close()

	sum, err := demo.Run(context.Background(), e.db, demo.Options{
		Seed:     cmd.Seed,
		Days:     cmd.Days,
		PerDay:   cmd.PerDay,
		End:      time.Now().UTC(),
		Currency: e.cfg.Ledger.DefaultCurrency,
		Options:  []ledger.Option{ledger.WithLimits(e.cfg.Ledger)},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout, "%d transactions, %d transfers, %d skipped, %d planification(s)\n",
		sum.Transactions, sum.Transfers, sum.Skipped, sum.Planifications)
	return printBalances(context.Background(), ctx.Stdout, e.svc)
}
