package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowDataKeepsHeaderOrder(t *testing.T) {
	header := []string{"日付", "社員名", "金額", "備考"}
	row := NewRowData(header, []string{"2025-10-01", "山田太郎", "1200", "<会議> & 昼食"})

	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"日付":"2025-10-01","社員名":"山田太郎","金額":"1200","備考":"<会議> & 昼食"}`, string(b))

	var back RowData
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, header, back.Keys())
	assert.True(t, back.MatchesHeader(header))

	v, ok := back.Get("金額")
	assert.True(t, ok)
	assert.Equal(t, "1200", v)
}

func TestRowDataMissingFieldsAreEmpty(t *testing.T) {
	row := NewRowData([]string{"a", "b"}, []string{"1"})

	v, ok := row.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, 2, row.Len())
}

func TestRowDataScan(t *testing.T) {
	t.Run("text column", func(t *testing.T) {
		var r RowData
		require.NoError(t, r.Scan(`{"z":"1","a":"2"}`))
		assert.Equal(t, []string{"z", "a"}, r.Keys())
	})

	t.Run("bytes with non-string values", func(t *testing.T) {
		var r RowData
		require.NoError(t, r.Scan([]byte(`{"amount":1500,"ok":true,"note":null}`)))
		amount, _ := r.Get("amount")
		ok, _ := r.Get("ok")
		note, _ := r.Get("note")
		assert.Equal(t, "1500", amount)
		assert.Equal(t, "true", ok)
		assert.Equal(t, "", note)
	})

	t.Run("not an object", func(t *testing.T) {
		var r RowData
		assert.Error(t, r.Scan(`["a","b"]`))
	})

	t.Run("unsupported type", func(t *testing.T) {
		var r RowData
		assert.Error(t, r.Scan(42))
	})
}

func TestRowDataValue(t *testing.T) {
	row := NewRowData([]string{"id", "amount"}, []string{"2", "9999999999999"})

	v, err := row.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"id":"2","amount":"9999999999999"}`, v)
}
