package analytics_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/attrition/internal/domain/analytics"
	"github.com/okian/attrition/internal/domain/snapshot"
	. "github.com/smartystreets/goconvey/convey"
)

func correlationRecords() []snapshot.Record {
	return []snapshot.Record{
		{"X": 1, "Y": 2.0, "Z": 4, "C": 5, "W": 1, "Attrition": "Yes"},
		{"X": 2, "Y": 4.0, "Z": 3, "C": 5, "W": nil, "Attrition": "Yes"},
		{"X": 3, "Y": 6.0, "Z": 2, "C": 5, "W": 3, "Attrition": "No"},
		{"X": 4, "Y": 8.0, "Z": 1, "C": 5, "W": "n/a", "Attrition": "No"},
	}
}

func TestComputeMatrix(t *testing.T) {
	outcome := analytics.DefaultOutcome()

	Convey("Given perfectly related features", t, func() {
		s := snapshot.FromRecords(correlationRecords())

		Convey("When computing the matrix", func() {
			res := analytics.ComputeMatrix(s, []string{"X", "Y", "Z"}, outcome)
			m, ok := res.Get()

			Convey("Then the binarized outcome is appended last", func() {
				So(ok, ShouldBeTrue)
				So(m.Features, ShouldResemble, []string{"X", "Y", "Z", "AttritionBinary"})
				So(m.Size(), ShouldEqual, 4)
			})

			Convey("And the coefficients are exact for linear relations", func() {
				xy, _ := m.Lookup("X", "Y")
				xz, _ := m.Lookup("X", "Z")
				So(xy, ShouldAlmostEqual, 1.0, 1e-12)
				So(xz, ShouldAlmostEqual, -1.0, 1e-12)
			})

			Convey("And attrition correlates with X as expected", func() {
				xa, _ := m.Lookup("X", "AttritionBinary")
				So(xa, ShouldAlmostEqual, -2/math.Sqrt(5), 1e-12)
				So(m.Label(0, 3), ShouldEqual, "-0.89")
			})

			Convey("And the matrix is symmetric, bounded, with a unit diagonal", func() {
				for i := 0; i < m.Size(); i++ {
					So(m.At(i, i), ShouldEqual, 1.0)
					for j := 0; j < m.Size(); j++ {
						So(m.At(i, j), ShouldEqual, m.At(j, i))
						So(m.At(i, j), ShouldBeBetweenOrEqual, -1.0, 1.0)
					}
				}
			})
		})
	})

	Convey("Given a feature with missing and non-numeric values", t, func() {
		s := snapshot.FromRecords(correlationRecords())

		Convey("Then those rows are excluded pairwise only", func() {
			m := analytics.ComputeMatrix(s, []string{"X", "W", "Y"}, outcome).Value()
			xw, _ := m.Lookup("X", "W")
			xy, _ := m.Lookup("X", "Y")
			So(xw, ShouldAlmostEqual, 1.0, 1e-12)
			So(m.Pairs[0][1], ShouldEqual, 2)
			So(xy, ShouldAlmostEqual, 1.0, 1e-12)
			So(m.Pairs[0][2], ShouldEqual, 4)
		})
	})

	Convey("Given a constant feature", t, func() {
		s := snapshot.FromRecords(correlationRecords())

		Convey("Then its cells, diagonal included, are NaN", func() {
			m := analytics.ComputeMatrix(s, []string{"X", "C"}, outcome).Value()
			cc, _ := m.Lookup("C", "C")
			xc, _ := m.Lookup("X", "C")
			So(math.IsNaN(cc), ShouldBeTrue)
			So(math.IsNaN(xc), ShouldBeTrue)
			So(m.Label(1, 1), ShouldEqual, "")
		})

		Convey("And the JSON encoding uses null for NaN", func() {
			m := analytics.ComputeMatrix(s, []string{"X", "C"}, outcome).Value()
			raw, err := json.Marshal(m)
			So(err, ShouldBeNil)

			var decoded struct {
				Features []string     `json:"features"`
				Values   [][]*float64 `json:"values"`
				Labels   [][]string   `json:"labels"`
			}
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)
			So(decoded.Values[1][1], ShouldBeNil)
			So(*decoded.Values[0][0], ShouldEqual, 1.0)
			So(decoded.Labels[0][0], ShouldEqual, "1.00")
		})
	})

	Convey("Given a feature that is not a column", t, func() {
		s := snapshot.FromRecords(correlationRecords())

		Convey("Then the matrix is unavailable rather than partial", func() {
			res := analytics.ComputeMatrix(s, []string{"X", "DailyRate"}, outcome)
			So(res.OK(), ShouldBeFalse)
			So(errors.Is(res.Err(), analytics.ErrMissingColumn), ShouldBeTrue)
			So(res.Reason(), ShouldContainSubstring, "DailyRate")
		})
	})

	Convey("Given outcome values other than the markers", t, func() {
		s := snapshot.FromRecords([]snapshot.Record{
			{"X": 1, "Attrition": "Yes"},
			{"X": 2, "Attrition": nil},
			{"X": 3, "Attrition": "Maybe"},
		})

		Convey("Then they binarize to zero and still count as pairs", func() {
			m := analytics.ComputeMatrix(s, []string{"X"}, outcome).Value()
			So(m.Pairs[0][1], ShouldEqual, 3)
			xa, _ := m.Lookup("X", "AttritionBinary")
			So(xa, ShouldBeLessThan, 0)
		})
	})

	Convey("Given a single row", t, func() {
		s := snapshot.FromRecords([]snapshot.Record{{"X": 1, "Attrition": "Yes"}})

		Convey("Then every cell is NaN", func() {
			m := analytics.ComputeMatrix(s, []string{"X"}, outcome).Value()
			So(math.IsNaN(m.At(0, 0)), ShouldBeTrue)
			So(math.IsNaN(m.At(0, 1)), ShouldBeTrue)
		})
	})
}
