package listing

import (
	"math"
	"strconv"

	"github.com/Deepthi94961/estate-admin/internal/model"
)

// Bucket はヒストグラムの1区間。
type Bucket struct {
	Label string
	Count int
}

// priceBoundaries は価格帯の境界。区間iは boundaries[i] <= price < boundaries[i+1]。
// 最後の区間は上限なし。
var priceBoundaries = []float64{0, 100000, 500000, 1000000, 5000000, 10000000}

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PriceHistogram は価格帯別の掲載数を返す。負の価格は数えない。
func PriceHistogram(listings []*model.Listing) []Bucket {
	buckets := make([]Bucket, len(priceBoundaries))
	for i, lo := range priceBoundaries {
		if i+1 < len(priceBoundaries) {
			buckets[i].Label = formatBound(lo) + "–" + formatBound(priceBoundaries[i+1])
		} else {
			buckets[i].Label = formatBound(lo) + "+"
		}
	}

	for _, l := range listings {
		if l.Price < 0 || math.IsNaN(l.Price) {
			continue
		}
		idx := len(priceBoundaries) - 1
		for i := 1; i < len(priceBoundaries); i++ {
			if l.Price < priceBoundaries[i] {
				idx = i - 1
				break
			}
		}
		buckets[idx].Count++
	}
	return buckets
}

// MonthHistogram は作成月（UTC）別の掲載数を返す。作成日時のない掲載は数えない。
func MonthHistogram(listings []*model.Listing) []Bucket {
	buckets := make([]Bucket, len(monthLabels))
	for i, label := range monthLabels {
		buckets[i].Label = label
	}

	for _, l := range listings {
		if l.CreatedAt == nil {
			continue
		}
		buckets[l.CreatedAt.UTC().Month()-1].Count++
	}
	return buckets
}
