package urlparser_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"foodgram/pkg/lib/urlparser"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func withParam(key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPathID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{name: "valid", value: "42", want: 42},
		{name: "empty", value: "", wantErr: true},
		{name: "not a number", value: "abc", wantErr: true},
		{name: "zero", value: "0", wantErr: true},
		{name: "negative", value: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := urlparser.PathID(withParam("id", tt.value), "id")
			if tt.wantErr {
				assert.ErrorIs(t, err, urlparser.ErrInvalidParam)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	values := url.Values{
		"page":                {"3"},
		"bad":                 {"x"},
		"author":              {"7"},
		"is_favorited":        {"1"},
		"is_in_shopping_cart": {"maybe"},
		"tags":                {"breakfast", "", "lunch", "breakfast"},
	}

	page, err := urlparser.QueryInt(values, "page", 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, page)

	limit, err := urlparser.QueryInt(values, "limit", 6)
	assert.NoError(t, err)
	assert.Equal(t, 6, limit)

	_, err = urlparser.QueryInt(values, "bad", 1)
	assert.ErrorIs(t, err, urlparser.ErrInvalidParam)

	author, err := urlparser.QueryID(values, "author")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), author)

	missing, err := urlparser.QueryID(values, "missing")
	assert.NoError(t, err)
	assert.Zero(t, missing)

	fav, err := urlparser.QueryFlag(values, "is_favorited")
	assert.NoError(t, err)
	assert.True(t, fav)

	_, err = urlparser.QueryFlag(values, "is_in_shopping_cart")
	assert.ErrorIs(t, err, urlparser.ErrInvalidParam)

	assert.Equal(t, []string{"breakfast", "lunch"}, urlparser.QueryList(values, "tags"))
}
