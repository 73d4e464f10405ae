package ships

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func numberedFleet(count int) []Ship {
	records := make([]Ship, 0, count)
	for i := count; i >= 1; i-- {
		records = append(records, Ship{ID: uint64(i), Speed: float64(i%3) / 10, Rating: float64(i)})
	}
	return records
}

func TestSortAndPageDefaults(t *testing.T) {
	page := SortAndPage(numberedFleet(10), OrderByID, PageRequest{})
	assert.Equal(t, []uint64{1, 2, 3}, ids(page))
}

func TestSortAndPageBeyondEndIsEmpty(t *testing.T) {
	records := numberedFleet(10)

	assert.Equal(t, []uint64{10}, ids(SortAndPage(records, OrderByID, PageRequest{Number: ptr(3), Size: ptr(3)})))
	assert.Empty(t, SortAndPage(records, OrderByID, PageRequest{Number: ptr(4), Size: ptr(3)}))
	assert.Empty(t, SortAndPage(records, OrderByID, PageRequest{Number: ptr(1 << 30), Size: ptr(1 << 30)}))
	assert.Empty(t, SortAndPage(records, OrderByID, PageRequest{Size: ptr(0)}))
}

func TestSortAndPageNineRecordsLastPageIsEmpty(t *testing.T) {
	assert.Empty(t, SortAndPage(numberedFleet(9), OrderByID, PageRequest{Number: ptr(3), Size: ptr(3)}))
}

func TestSortAndPageIsStable(t *testing.T) {
	records := []Ship{
		{ID: 5, Speed: 0.3},
		{ID: 2, Speed: 0.1},
		{ID: 9, Speed: 0.3},
		{ID: 1, Speed: 0.1},
		{ID: 4, Speed: 0.3},
	}

	page := SortAndPage(records, OrderBySpeed, PageRequest{Size: ptr(5)})
	assert.Equal(t, []uint64{2, 1, 5, 9, 4}, ids(page))
	assert.Equal(t, uint64(5), records[0].ID, "input must not be reordered")
}

func TestSortAndPageOrders(t *testing.T) {
	records := []Ship{
		{ID: 1, Speed: 0.9, ProdDate: prodDateInYear(3000), Rating: 2},
		{ID: 2, Speed: 0.1, ProdDate: prodDateInYear(2900), Rating: 3},
		{ID: 3, Speed: 0.5, ProdDate: prodDateInYear(3010), Rating: 1},
	}
	all := PageRequest{Size: ptr(10)}

	assert.Equal(t, []uint64{1, 2, 3}, ids(SortAndPage(records, OrderByID, all)))
	assert.Equal(t, []uint64{2, 3, 1}, ids(SortAndPage(records, OrderBySpeed, all)))
	assert.Equal(t, []uint64{2, 1, 3}, ids(SortAndPage(records, OrderByProdDate, all)))
	assert.Equal(t, []uint64{3, 1, 2}, ids(SortAndPage(records, OrderByRating, all)))
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, OrderByID, ParseOrder(""))
	assert.Equal(t, OrderByID, ParseOrder("CREW"))
	assert.Equal(t, OrderBySpeed, ParseOrder("speed"))
	assert.Equal(t, OrderByProdDate, ParseOrder("DATE"))
	assert.Equal(t, OrderByRating, ParseOrder("RATING"))
	assert.Equal(t, "DATE", OrderByProdDate.String())
	assert.Equal(t, "ID", Order(42).String())
}
