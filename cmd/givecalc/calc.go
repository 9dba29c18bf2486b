package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/boddenberg/givecalc-bfa-go/internal/calc"
	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/observability"
	"github.com/boddenberg/givecalc-bfa-go/internal/service"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagJurisdiction string
	flagMode         string
	flagBoth         bool

	flagWages        float64
	flagSelfEmployed float64
	flagState        string
	flagMarried      bool
	flagChildren     int
	flagInNYC        bool
	flagDonation     float64
	flagTarget       float64
	flagPercentage   bool
	flagMortgage     float64
	flagRealEstate   float64
	flagYear         int

	flagRegion  string
	flagGiftAid float64
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run one calculation against the engine and print the result",
	Example: `  givecalc calc --income 120000 --state NY --nyc --donation 10000
  givecalc calc --mode target --target 5 --percentage
  givecalc calc --jurisdiction uk --income 60000 --region SCOTLAND --gift-aid 2000`,
	RunE: runCalc,
}

func init() {
	us, uk := domain.DefaultFormState(), domain.DefaultUKFormState()

	f := calcCmd.Flags()
	f.StringVarP(&flagJurisdiction, "jurisdiction", "j", string(domain.JurisdictionUS), "Tax system: us or uk")
	f.StringVarP(&flagMode, "mode", "m", string(us.Mode), "US calculation mode: amount or target")
	f.BoolVar(&flagBoth, "both", false, "US only: run the amount and target calculations concurrently")

	f.Float64Var(&flagWages, "income", us.Income.WagesAndSalaries, "Wages and salaries (US) or employment income (UK)")
	f.Float64Var(&flagSelfEmployed, "self-employment", 0, "Self-employment income")
	f.StringVar(&flagState, "state", us.StateCode, "US state code")
	f.BoolVar(&flagMarried, "married", false, "Married filing jointly")
	f.IntVar(&flagChildren, "children", 0, "Number of children")
	f.BoolVar(&flagInNYC, "nyc", false, "Lives in New York City (NY only)")
	f.Float64Var(&flagDonation, "donation", us.DonationAmount, "US donation amount")
	f.Float64Var(&flagTarget, "target", us.TargetReduction, "US target net-income reduction")
	f.BoolVar(&flagPercentage, "percentage", us.IsPercentage, "Target is a percentage of net income")
	f.Float64Var(&flagMortgage, "mortgage-interest", 0, "Mortgage interest deduction")
	f.Float64Var(&flagRealEstate, "real-estate-taxes", 0, "Real estate taxes deduction")
	f.IntVar(&flagYear, "year", domain.DefaultTaxYear, "Tax year")

	f.StringVar(&flagRegion, "region", uk.Region, "UK region")
	f.Float64Var(&flagGiftAid, "gift-aid", uk.GiftAid, "UK Gift Aid donation")
}

// formFromFlags builds the calculation form for j from the command line.
func formFromFlags(j domain.Jurisdiction) calc.Form {
	form := calc.DefaultForm()
	if j == domain.JurisdictionUK {
		form.UK = domain.UKFormState{
			Income: domain.UKIncome{
				EmploymentIncome:     flagWages,
				SelfEmploymentIncome: flagSelfEmployed,
			},
			Region:      strings.ToUpper(strings.TrimSpace(flagRegion)),
			GiftAid:     flagGiftAid,
			IsMarried:   flagMarried,
			NumChildren: flagChildren,
			Year:        flagYear,
		}
		return form
	}
	form.US = domain.FormState{
		Income: domain.Income{
			WagesAndSalaries:     flagWages,
			SelfEmploymentIncome: flagSelfEmployed,
		},
		StateCode:   strings.ToUpper(strings.TrimSpace(flagState)),
		IsMarried:   flagMarried,
		NumChildren: flagChildren,
		InNYC:       flagInNYC,
		Deductions: domain.Deductions{
			MortgageInterest: flagMortgage,
			RealEstateTaxes:  flagRealEstate,
		},
		DonationAmount:  flagDonation,
		Mode:            domain.Mode(strings.ToLower(flagMode)),
		TargetReduction: flagTarget,
		IsPercentage:    flagPercentage,
		Year:            flagYear,
	}
	return form
}

func runCalc(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	j, err := domain.ParseJurisdiction(flagJurisdiction)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	dispatcher := calc.NewDispatcher(newEngineClient(cfg, logger), observability.NewMetrics(), logger)
	ctx := cmd.Context()
	form := formFromFlags(j)

	if !flagBoth || j != domain.JurisdictionUS {
		bundle, err := service.CalculateOnce(ctx, dispatcher, form, j)
		if err != nil {
			return err
		}
		printBundle(cmd.OutOrStdout(), bundle)
		return nil
	}

	amountForm, targetForm := form, form
	amountForm.US.Mode = domain.ModeAmount
	targetForm.US.Mode = domain.ModeTarget

	var amount, target *domain.DisplayBundle
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		amount, err = service.CalculateOnce(gCtx, dispatcher, amountForm, j)
		return err
	})
	g.Go(func() error {
		var err error
		target, err = service.CalculateOnce(gCtx, dispatcher, targetForm, j)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printBundle(out, amount)
	fmt.Fprintln(out)
	printBundle(out, target)
	return nil
}

func money(currency string, v float64) string {
	symbol := "$"
	if currency == domain.CurrencyGBP {
		symbol = "£"
	}
	if v < 0 {
		return "-" + symbol + humanize.FormatFloat("#,###.##", -v)
	}
	return symbol + humanize.FormatFloat("#,###.##", v)
}

func printBundle(w io.Writer, b *domain.DisplayBundle) {
	fmt.Fprintf(w, "%s calculation (%s)\n", strings.ToUpper(string(b.Jurisdiction)), b.Kind)
	fmt.Fprintf(w, "  Donation:                 %s\n", money(b.Currency, b.DonationAmount))
	fmt.Fprintf(w, "  Charity receives:         %s\n", money(b.Currency, b.CharityReceives))
	fmt.Fprintf(w, "  Tax savings:              %s\n", money(b.Currency, b.TaxSavings))
	fmt.Fprintf(w, "  Marginal savings rate:    %s%%\n", humanize.FormatFloat("#.#", b.MarginalSavingsRate*100))
	fmt.Fprintf(w, "  Net income before:        %s\n", money(b.Currency, b.BaselineNetIncome))
	fmt.Fprintf(w, "  Net income after:         %s\n", money(b.Currency, b.NetIncomeAfterDonation))
	if b.Kind == domain.ModeTarget {
		fmt.Fprintf(w, "  Actual reduction:         %s (%s%%)\n",
			money(b.Currency, b.ActualReduction), humanize.FormatFloat("#.##", b.ActualPercentage))
	}
	fmt.Fprintf(w, "  Curve points:             %s\n", humanize.Comma(int64(len(b.Curve))))
}
