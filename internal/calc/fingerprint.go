package calc

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"
)

const fingerprintVersion = "v1"

// Fingerprint identifies the calculation-relevant part of a form for one scope.
// Two forms share a fingerprint exactly when the engine would be asked the same
// question for them.
type Fingerprint struct {
	scope Scope
	key   string
}

// Scope returns the calculation shape the fingerprint was taken for.
func (f Fingerprint) Scope() Scope { return f.scope }

// Key returns the canonical string. It is the result cache key.
func (f Fingerprint) Key() string { return f.key }

// IsZero reports whether f was never computed.
func (f Fingerprint) IsZero() bool { return f.key == "" }

// Digest returns a short blake2b digest of the key for logs and API views.
func (f Fingerprint) Digest() string {
	if f.IsZero() {
		return ""
	}
	sum := blake2b.Sum256([]byte(f.key))
	return hex.EncodeToString(sum[:12])
}

func (f Fingerprint) String() string { return f.Digest() }

// column extracts one canonicalized field from a form.
type column struct {
	name    string
	extract func(Form) string
}

// selection lists, per scope, the fields that affect the engine's answer.
// Adding a scope only needs a new entry here.
var selection = map[Scope][]column{
	ScopeUSAmount: concat(
		usHousehold(),
		[]column{{"donation_amount", func(f Form) string { return money(f.US.DonationAmount) }}},
	),
	ScopeUSTarget: concat(
		usHousehold(),
		[]column{
			{"target_reduction", func(f Form) string { return money(f.US.TargetReduction) }},
			{"is_percentage", func(f Form) string { return strconv.FormatBool(f.US.IsPercentage) }},
		},
	),
	ScopeUK: concat(
		fieldColumns("income.", func(f Form) []domain.Field { return f.UK.Income.Fields() }),
		[]column{
			{"region", func(f Form) string { return text(f.UK.Region) }},
			{"gift_aid", func(f Form) string { return money(f.UK.GiftAid) }},
			{"is_married", func(f Form) string { return strconv.FormatBool(f.UK.IsMarried) }},
			{"num_children", func(f Form) string { return strconv.Itoa(f.UK.NumChildren) }},
			{"year", func(f Form) string { return strconv.Itoa(f.UK.Year) }},
		},
	),
}

func usHousehold() []column {
	return concat(
		fieldColumns("income.", func(f Form) []domain.Field { return f.US.Income.Fields() }),
		fieldColumns("deductions.", func(f Form) []domain.Field { return f.US.Deductions.Fields() }),
		[]column{
			{"state_code", func(f Form) string { return text(f.US.StateCode) }},
			{"in_nyc", func(f Form) string { return strconv.FormatBool(f.US.EffectiveInNYC()) }},
			{"is_married", func(f Form) string { return strconv.FormatBool(f.US.IsMarried) }},
			{"num_children", func(f Form) string { return strconv.Itoa(f.US.NumChildren) }},
			{"year", func(f Form) string { return strconv.Itoa(f.US.Year) }},
		},
	)
}

// fieldColumns expands a nested group of money fields into one column each.
func fieldColumns(prefix string, fields func(Form) []domain.Field) []column {
	names := fields(Form{})
	cols := make([]column, len(names))
	for i, fld := range names {
		cols[i] = column{
			name:    prefix + fld.Name,
			extract: func(f Form) string { return money(fields(f)[i].Value) },
		}
	}
	return cols
}

func concat(groups ...[]column) []column {
	var out []column
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// FingerprintOf derives the fingerprint of form for jurisdiction j.
func FingerprintOf(form Form, j domain.Jurisdiction) Fingerprint {
	scope := form.Scope(j)

	var b strings.Builder
	b.WriteString(fingerprintVersion)
	b.WriteString("|")
	b.WriteString(string(scope))
	for _, col := range selection[scope] {
		b.WriteString("|")
		b.WriteString(col.name)
		b.WriteString("=")
		b.WriteString(col.extract(form))
	}
	return Fingerprint{scope: scope, key: b.String()}
}

// money renders v in its shortest exact decimal form, so 5000 and 5000.00 agree
// and -0 renders as 0.
func money(v float64) string {
	if v == 0 {
		return "0"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return decimal.NewFromFloat(v).String()
}

// text renders a code field. Quoting keeps separators inside values unambiguous.
func text(s string) string {
	return strconv.Quote(code(s))
}
