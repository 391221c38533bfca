package prices

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestMergeIsIdempotent(t *testing.T) {
	blob := "P 2024-01-01 AAPL 100.0000 USD\n" +
		"P 2024-01-02 AAPL 101.0000 USD"

	merged, conflicts, err := Merge(blob, blob)
	assert.NoError(t, err)
	assert.Equal(t, blob, merged)
	assert.Equal(t, 0, len(conflicts))
}

func TestMergeIsAssociativeOnDisjointKeys(t *testing.T) {
	a := "P 2024-01-01 AAPL 100.0000 USD"
	b := "P 2024-01-02 AAPL 101.0000 USD"
	c := "P 2024-01-03 AAPL 102.0000 USD"

	ab, _, err := Merge(a, b)
	assert.NoError(t, err)
	abc1, _, err := Merge(ab, c)
	assert.NoError(t, err)

	bc, _, err := Merge(b, c)
	assert.NoError(t, err)
	abc2, _, err := Merge(a, bc)
	assert.NoError(t, err)

	assert.Equal(t, abc1, abc2)
}

func TestMergeFreshWinsOnConflict(t *testing.T) {
	existing := "P 2024-01-01 AAPL 100 USD"
	fresh := "P 2024-01-01 AAPL 101 USD"

	merged, conflicts, err := Merge(existing, fresh)
	assert.NoError(t, err)
	assert.Equal(t, "P 2024-01-01 AAPL 101 USD", merged)
	assert.Equal(t, 1, len(conflicts))
	assert.Equal(t, [3]string{"2024-01-01", "AAPL", "USD"}, conflicts[0].Key)
	assert.Equal(t, "100", conflicts[0].Existing.Price)
	assert.Equal(t, "101", conflicts[0].Fresh.Price)
}

func TestMergeKeepsExistingWithoutFreshRow(t *testing.T) {
	existing := "P 2024-01-01 AAPL 100 USD\nP 2024-01-02 AAPL 105 USD"
	fresh := "P 2024-01-02 AAPL 105 USD"

	merged, conflicts, err := Merge(existing, fresh)
	assert.NoError(t, err)
	assert.Equal(t, existing, merged)
	assert.Equal(t, 0, len(conflicts))
}

func TestMergeSortsByKey(t *testing.T) {
	existing := "P 2024-01-02 VGWL 90.0000 EUR\nP 2024-01-01 VGWL 89.0000 EUR"
	merged, _, err := Merge(existing, "")
	assert.NoError(t, err)
	assert.Equal(t, "P 2024-01-01 VGWL 89.0000 EUR\nP 2024-01-02 VGWL 90.0000 EUR", merged)
}

func TestMergeEmptyInputs(t *testing.T) {
	merged, conflicts, err := Merge("", "")
	assert.NoError(t, err)
	assert.Equal(t, "", merged)
	assert.Equal(t, 0, len(conflicts))
}

func TestParseRejectsMalformedLine(t *testing.T) {
	_, err := Parse("P 2024-01-01 AAPL 100")
	assert.Error(t, err)

	_, _, err = Merge("garbage", "")
	assert.Error(t, err)
}
