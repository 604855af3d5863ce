package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flokiorg/lokirent/models"
)

var allKinds = []models.ServiceKind{models.ServiceSubdomain, models.ServiceEmail, models.ServiceNip05}

func subsets() [][]models.ServiceKind {
	var out [][]models.ServiceKind
	for mask := 1; mask < 1<<len(allKinds); mask++ {
		var set []models.ServiceKind
		for i, kind := range allKinds {
			if mask&(1<<i) != 0 {
				set = append(set, kind)
			}
		}
		out = append(out, set)
	}
	return out
}

func TestPrice_SumAndBundle(t *testing.T) {
	for _, plan := range models.GetPlans() {
		for _, set := range subsets() {
			price, err := Price(plan, set, nil)
			require.NoError(t, err)

			var sum uint64
			for _, kind := range set {
				single, err := Price(plan, []models.ServiceKind{kind}, nil)
				require.NoError(t, err)
				sum += single
			}

			if len(set) == 3 {
				bundle := DefaultTable[plan]["bundle"]
				assert.Equal(t, bundle, price, "plan %s", plan)
				assert.Less(t, bundle, sum, "bundle must be discounted for plan %s", plan)
			} else {
				assert.Equal(t, sum, price, "plan %s set %v", plan, set)
			}
		}
	}
}

func TestPrice_PartialOverride(t *testing.T) {
	table := models.PricingTable{
		models.PlanThirtyDays: {"subdomain": 99},
	}

	price, err := Price(models.PlanThirtyDays, []models.ServiceKind{models.ServiceSubdomain, models.ServiceNip05}, table)
	require.NoError(t, err)
	// subdomain from the table, nip05 from the defaults
	assert.Equal(t, uint64(99+75), price)

	price, err = Price(models.PlanThirtyDays, allKinds, table)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), price)
}

func TestPrice_EmptySet(t *testing.T) {
	price, err := Price(models.PlanOneDay, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, price)
}

func TestPrice_DuplicateKinds(t *testing.T) {
	price, err := Price(models.PlanOneDay, []models.ServiceKind{models.ServiceEmail, models.ServiceEmail}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), price)
}

func TestPrice_MinutePlan(t *testing.T) {
	_, err := Price(models.Plan("30m"), []models.ServiceKind{models.ServiceNip05}, nil)
	require.Error(t, err)
	assert.Equal(t, "BAD_REQUEST", models.ErrorCode(err))

	table := models.PricingTable{models.Plan("30m"): {"nip05": 1}}
	price, err := Price(models.Plan("30m"), []models.ServiceKind{models.ServiceNip05}, table)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), price)
}

func TestResolve(t *testing.T) {
	resolved := Resolve(models.PricingTable{
		models.PlanOneDay:  {"bundle": 18},
		models.Plan("10m"): {"nip05": 1},
	})
	assert.Equal(t, uint64(18), resolved[models.PlanOneDay]["bundle"])
	assert.Equal(t, uint64(10), resolved[models.PlanOneDay]["email"])
	assert.Equal(t, uint64(1), resolved[models.Plan("10m")]["nip05"])
	// defaults untouched
	assert.Equal(t, uint64(20), DefaultTable[models.PlanOneDay]["bundle"])
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(models.PricingTable{models.PlanOneDay: {"email": 1}}))
	assert.Error(t, Validate(models.PricingTable{models.Plan("2w"): {"email": 1}}))
	assert.Error(t, Validate(models.PricingTable{models.PlanOneDay: {"sms": 1}}))
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable([]byte(`
30d:
  subdomain: 120
  bundle: 250
1d:
  nip05: 3
`))
	require.NoError(t, err)
	assert.Equal(t, uint64(120), table[models.PlanThirtyDays]["subdomain"])
	assert.Equal(t, uint64(250), table[models.PlanThirtyDays]["bundle"])
	assert.Equal(t, uint64(3), table[models.PlanOneDay]["nip05"])

	table, err = ParseTable([]byte(`{"7d": {"email": 40}}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(40), table[models.PlanSevenDays]["email"])

	_, err = ParseTable([]byte(``))
	assert.Error(t, err)
	_, err = ParseTable([]byte(`2w: {email: 1}`))
	assert.Error(t, err)
	_, err = ParseTable([]byte(`1d: {email: -5}`))
	assert.Error(t, err)
}

func TestFormatTable_RoundTrip(t *testing.T) {
	data, err := FormatTable(DefaultTable)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bundle: 1600")

	table, err := ParseTable(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultTable, table)
}
