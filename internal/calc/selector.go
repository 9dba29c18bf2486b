package calc

import (
	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/cache"
)

// Select picks the bundle the browser renders for mode and jurisdiction j.
// UK results are normalized into the shared shape and the US ones ignored. In
// US target mode an amount result stands in when no target result exists.
// It returns nil when there is nothing to show.
func Select(amount *domain.AmountResult, target *domain.TargetResult, uk *domain.UKResult, mode domain.Mode, j domain.Jurisdiction) *domain.DisplayBundle {
	if j == domain.JurisdictionUK {
		return fromUK(uk)
	}
	if mode == domain.ModeTarget && target != nil {
		return fromTarget(target)
	}
	return fromAmount(amount)
}

// SelectEntry is Select over a cache entry.
func SelectEntry(e cache.Entry, mode domain.Mode, j domain.Jurisdiction) *domain.DisplayBundle {
	return Select(e.Amount, e.Target, e.UK, mode, j)
}

func fromAmount(r *domain.AmountResult) *domain.DisplayBundle {
	if r == nil {
		return nil
	}
	return &domain.DisplayBundle{
		Kind:                   domain.ModeAmount,
		Jurisdiction:           domain.JurisdictionUS,
		Currency:               domain.CurrencyUSD,
		DonationAmount:         r.DonationAmount,
		CharityReceives:        r.DonationAmount,
		BaselineNetTax:         r.BaselineNetTax,
		NetTaxAtDonation:       r.NetTaxAtDonation,
		TaxSavings:             r.TaxSavings,
		MarginalSavingsRate:    r.MarginalSavingsRate,
		BaselineNetIncome:      r.BaselineNetIncome,
		NetIncomeAfterDonation: r.NetIncomeAfterDonation,
		Curve:                  r.Curve,
	}
}

func fromTarget(r *domain.TargetResult) *domain.DisplayBundle {
	return &domain.DisplayBundle{
		Kind:                   domain.ModeTarget,
		Jurisdiction:           domain.JurisdictionUS,
		Currency:               domain.CurrencyUSD,
		DonationAmount:         r.RequiredDonation,
		CharityReceives:        r.RequiredDonation,
		BaselineNetIncome:      r.BaselineNetIncome,
		NetIncomeAfterDonation: r.NetIncomeAfterDonation,
		ActualReduction:        r.ActualReduction,
		ActualPercentage:       r.ActualPercentage,
		Curve:                  r.Curve,
	}
}

// fromUK maps Gift Aid into the donation slot and relief rate into the
// marginal savings slot.
func fromUK(r *domain.UKResult) *domain.DisplayBundle {
	if r == nil {
		return nil
	}
	return &domain.DisplayBundle{
		Kind:                   domain.ModeAmount,
		Jurisdiction:           domain.JurisdictionUK,
		Currency:               domain.CurrencyGBP,
		DonationAmount:         r.GiftAid,
		CharityReceives:        r.GiftAid * domain.GiftAidGrossUp,
		BaselineNetTax:         r.BaselineNetTax,
		NetTaxAtDonation:       r.NetTaxAtDonation,
		TaxSavings:             r.TaxSavings,
		MarginalSavingsRate:    r.MarginalSavingsRate,
		BaselineNetIncome:      r.BaselineNetIncome,
		NetIncomeAfterDonation: r.NetIncomeAfterDonation,
		Curve:                  r.Curve,
	}
}
