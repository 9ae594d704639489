package pagination_test

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"foodgram/pkg/lib/pagination"
	"foodgram/pkg/lib/urlparser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromQuery(t *testing.T) {
	p, err := pagination.FromQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, pagination.Params{Page: 1, Limit: pagination.DefaultLimit}, p)

	p, err = pagination.FromQuery(url.Values{"page": {"0"}, "limit": {"1000"}})
	require.NoError(t, err)
	assert.Equal(t, pagination.Params{Page: 1, Limit: pagination.MaxLimit}, p)

	_, err = pagination.FromQuery(url.Values{"page": {"x"}})
	assert.Error(t, err)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 6}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 3, Limit: 10}.Offset())
}

func TestNewPage(t *testing.T) {
	u, err := url.Parse("http://localhost/api/recipes?limit=2&page=2&tags=lunch")
	require.NoError(t, err)

	page := pagination.NewPage([]int{3, 4}, 5, pagination.Params{Page: 2, Limit: 2}, u)

	assert.Equal(t, 5, page.Count)
	assert.Equal(t, []int{3, 4}, page.Results)
	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://localhost/api/recipes?limit=2&page=3&tags=lunch", *page.Next)
	assert.Equal(t, "http://localhost/api/recipes?limit=2&tags=lunch", *page.Previous)
}

func TestNewPage_LastAndEmpty(t *testing.T) {
	u, _ := url.Parse("http://localhost/api/users")

	last := pagination.NewPage([]string{"a"}, 1, pagination.Params{Page: 1, Limit: 6}, u)
	assert.Nil(t, last.Next)
	assert.Nil(t, last.Previous)

	empty := pagination.NewPage[string](nil, 0, pagination.Params{}, u)
	assert.NotNil(t, empty.Results)
	assert.Empty(t, empty.Results)
}

func TestFromQuery_PageOutOfRange(t *testing.T) {
	for _, raw := range []string{strconv.Itoa(math.MaxInt), strconv.Itoa(pagination.MaxPage + 1)} {
		_, err := pagination.FromQuery(url.Values{"page": {raw}})
		assert.ErrorIs(t, err, urlparser.ErrInvalidParam, raw)
	}

	p, err := pagination.FromQuery(url.Values{"page": {strconv.Itoa(pagination.MaxPage)}, "limit": {"100"}})
	require.NoError(t, err)
	assert.Equal(t, pagination.MaxPage, p.Page)
	assert.Positive(t, p.Offset())
}

func TestNormalize_ClampsHugePage(t *testing.T) {
	p := pagination.Params{Page: math.MaxInt, Limit: 6}

	assert.Equal(t, pagination.MaxPage, p.Normalize().Page)
	assert.Positive(t, p.Offset())

	u, err := url.Parse("http://localhost/api/recipes")
	require.NoError(t, err)
	page := pagination.NewPage([]int{}, 5, p, u)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://localhost/api/recipes?page="+strconv.Itoa(pagination.MaxPage-1), *page.Previous)
}
