package util

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaginateMiddlePage(t *testing.T) {
	extra := url.Values{"category": {"tools"}}
	meta, links := Paginate("/api/v1/products", extra, 2, 40, 15)

	require.Equal(t, 2, meta.CurrentPage)
	require.Equal(t, 3, meta.LastPage)
	require.EqualValues(t, 40, meta.Total)
	require.NotNil(t, meta.From)
	require.Equal(t, 16, *meta.From)
	require.Equal(t, 30, *meta.To)

	require.NotNil(t, links.Prev)
	require.NotNil(t, links.Next)
	require.Contains(t, *links.Next, "page=3")
	require.Contains(t, *links.Next, "category=tools")
	require.Contains(t, links.Last, "page=3")
}

func TestPaginateEmpty(t *testing.T) {
	meta, links := Paginate("/api/v1/products", nil, 1, 0, 0)

	require.Equal(t, 1, meta.LastPage)
	require.Nil(t, meta.From)
	require.Nil(t, meta.To)
	require.Nil(t, links.Prev)
	require.Nil(t, links.Next)
}

func TestOffsetClampsPage(t *testing.T) {
	require.Equal(t, 0, Offset(0, 15))
	require.Equal(t, 0, Offset(1, 15))
	require.Equal(t, 30, Offset(3, 15))
}
