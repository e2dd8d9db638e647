package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpotPriceQuery(t *testing.T) {
	query := NewSpotPrice("KDA", "USD")

	assert.Equal(t, "kda-usd-spot", query.Tag())
	assert.Equal(t, "{SpotPrice: [kda,usd]}", query.Descriptor())
	assert.Equal(t, "e1Nwb3RQcmljZTogW2tkYSx1c2RdfQ", query.QueryData())
	assert.Equal(t, "EWnklLBmDXxZh0jXcOHS7xoFwA6aWvle7NmnkvQIp_w", query.QueryID())
}

func TestSpotPriceQueryIDs(t *testing.T) {
	cases := []struct {
		asset     string
		queryData string
		queryID   string
	}{
		{"eth", "e1Nwb3RQcmljZTogW2V0aCx1c2RdfQ", "PmvlwtIqfKsAvs4-MOzIDoiNAqc3H9iUyeV1LosocAM"},
		{"trb", "", "CNf42IH0tuzKY8Porl15yG_8EK5rffvGUOYOt0htZJ4"},
		{"btc", "", "0JEvxJ5t6bQjMrGsS1hFPuLD4u_2Otl91hmBS4EaaSY"},
	}
	for _, tc := range cases {
		t.Run(tc.asset, func(t *testing.T) {
			query := NewSpotPrice(tc.asset, "usd")
			if tc.queryData != "" {
				assert.Equal(t, tc.queryData, query.QueryData())
			}
			assert.Equal(t, tc.queryID, query.QueryID())
		})
	}
}
