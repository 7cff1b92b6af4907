package flatfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderResolvesColumnsByName(t *testing.T) {
	data := "sku\tqty\tprice\nA1\t5\t10,50\nA2\t3\t7.25\n"
	r, err := NewReaderFromBytes([]byte(data))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	assert.True(t, r.HasColumn("qty"))
	assert.False(t, r.HasColumn("warehouse"))

	idx, ok := r.ColumnIndex("price")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "A1", row.Get("sku"))
	assert.Equal(t, "5", row.Get("qty"))
	assert.Equal(t, "", row.Get("warehouse"))
}

func TestReaderStripsBOM(t *testing.T) {
	data := "\xEF\xBB\xBFsku\tqty\nA1\t5\n"
	r, err := NewReaderFromBytes([]byte(data))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())
	assert.True(t, r.HasColumn("sku"), "BOM must not become part of the first header name")
}

func TestReaderSemicolonDelimiter(t *testing.T) {
	data := "sku;qty\nA1;5\n"
	r, err := NewReaderFromBytes([]byte(data), WithDelimiter(';'))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "5", row.Get("qty"))
}

func TestReaderEmptyFileMissingHeader(t *testing.T) {
	r, err := NewReaderFromBytes([]byte(""))
	require.NoError(t, err)
	assert.ErrorIs(t, r.ParseHeader(), ErrMissingHeader)
}

func TestRequireColumns(t *testing.T) {
	data := "sku\tqty\n"
	r, err := NewReaderFromBytes([]byte(data))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	assert.Empty(t, r.RequireColumns("sku", "qty"))
	assert.Equal(t, []string{"price", "surcharge"}, r.RequireColumns("price", "qty", "surcharge"))
}

func TestEachRowSkipsBlankLines(t *testing.T) {
	data := "sku\tqty\nA1\t5\n\n\t\nA2\t3\n"
	r, err := NewReaderFromBytes([]byte(data))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	var skus []string
	malformed, err := r.EachRow(func(row *Row) {
		skus = append(skus, row.Get("sku"))
	})
	require.NoError(t, err)
	assert.Zero(t, malformed)
	assert.Equal(t, []string{"A1", "A2"}, skus)
}

func TestRowGetTrimsWhitespace(t *testing.T) {
	data := "sku\tdesc\nA1\t  Widget  \n"
	r, err := NewReaderFromBytes([]byte(data))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "Widget", row.Get("desc"))
}

func TestRowShorterThanHeader(t *testing.T) {
	data := "sku\tqty\tprice\nA1\t5\n"
	r, err := NewReaderFromBytes([]byte(data))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "", row.Get("price"))
}
