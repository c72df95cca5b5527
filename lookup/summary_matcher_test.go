package lookup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ortelius/pdvd-cvelookup/database"
	"github.com/ortelius/pdvd-cvelookup/model"
	"github.com/ortelius/pdvd-cvelookup/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMentionsProduct(t *testing.T) {
	t.Parallel()

	product := []string{"windows", "8"}
	cases := []struct {
		summary string
		want    bool
	}{
		{"bla bla microsoft windows 8 bla", true},
		{"bla bla microsoft windows", false},
		{"bla bla mirosoft windos 7 bla", true},
		{"bla bla microsoft corporation windows 8 bla", true},
		{"microsoft corporation corp inc windows 8", false},
		{"bla bla microsoft windows 8", true},
		{"microsoft windows home 8", false},
		{"microsoft office and microsoft windows 8", true},
		{"", false},
	}
	for _, c := range cases {
		t.Run(c.summary, func(t *testing.T) {
			words := strings.Fields(c.summary)
			assert.Equal(t, c.want, mentionsProduct(words, "microsoft", product, util.NewFuzzy(3), DefaultSummaryWindow))
		})
	}
}

func TestMentionsProductWindow(t *testing.T) {
	t.Parallel()

	words := strings.Fields("microsoft corporation windows 8")
	product := []string{"windows", "8"}
	assert.True(t, mentionsProduct(words, "microsoft", product, util.NewFuzzy(3), 2))
	assert.False(t, mentionsProduct(words, "microsoft", product, util.NewFuzzy(3), 1))
}

func TestMatchCVEsBySummaryScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := scenarioStore()

	ids, err := MatchCVEsBySummary(store.Summaries(ctx), windows8, util.NewFuzzy(3), DefaultSummaryWindow)
	require.NoError(t, err)
	assert.Equal(t, []string{"CVE-1234-0005", "CVE-1234-0006", "CVE-1234-0007"}, ids)
}

func TestMatchCVEsBySummaryOneHitPerRow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := database.NewMemoryStore(nil, nil, []model.CVESummaryRecord{
		{CveID: "CVE-1", Summary: "Microsoft Windows 8 and Microsoft Windows 8 again"},
		{CveID: "CVE-1", Summary: "microsoft windows 8"},
	})
	ids, err := MatchCVEsBySummary(store.Summaries(ctx), windows8, util.NewFuzzy(3), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"CVE-1"}, ids)
}

func TestMatchCVEsBySummaryEdgeCases(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ids, err := MatchCVEsBySummary(scenarioStore().Summaries(ctx), model.NewMatchedProduct("microsoft", "", ""), util.NewFuzzy(3), 3)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = MatchCVEsBySummary(scenarioStore().FailWith(errors.New("offline")).Summaries(ctx), windows8, util.NewFuzzy(3), 3)
	require.ErrorIs(t, err, database.ErrStoreUnavailable)
}
