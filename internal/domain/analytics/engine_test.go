package analytics_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/attrition/internal/domain/analytics"
	"github.com/okian/attrition/internal/domain/snapshot"
	. "github.com/smartystreets/goconvey/convey"
)

func employee(dept, role, overtime, marital, travel, attrition string, income, age, years, level, jobSat, envSat, daily int) snapshot.Record {
	return snapshot.Record{
		"DepartmentName":          dept,
		"JobRole":                 role,
		"OverTime":                overtime,
		"MaritalStatus":           marital,
		"BusinessTravel":          travel,
		"Attrition":               attrition,
		"MonthlyIncome":           int64(income),
		"Age":                     int64(age),
		"TotalWorkingYears":       int64(years),
		"JobLevel":                int64(level),
		"JobSatisfaction":         int64(jobSat),
		"EnvironmentSatisfaction": int64(envSat),
		"DailyRate":               int64(daily),
	}
}

func workforce() []snapshot.Record {
	return []snapshot.Record{
		employee("Sales", "Sales Executive", "Yes", "Single", "Travel_Frequently", "Yes", 4000, 28, 5, 2, 1, 2, 400),
		employee("Sales", "Sales Representative", "Yes", "Single", "Travel_Rarely", "Yes", 2500, 23, 2, 1, 2, 1, 300),
		employee("Sales", "Sales Executive", "No", "Married", "Travel_Rarely", "No", 6500, 40, 15, 3, 4, 3, 900),
		employee("Research & Development", "Research Scientist", "No", "Married", "Non-Travel", "No", 5200, 35, 10, 2, 3, 4, 1100),
		employee("Research & Development", "Laboratory Technician", "Yes", "Divorced", "Travel_Rarely", "Yes", 2800, 26, 3, 1, 2, 2, 500),
		employee("Research & Development", "Manager", "No", "Married", "Travel_Rarely", "No", 15000, 50, 28, 5, 4, 4, 1300),
		employee("Human Resources", "Human Resources", "No", "Single", "Non-Travel", "No", 3500, 31, 8, 1, 3, 3, 700),
	}
}

func TestEngine_Refresh(t *testing.T) {
	Convey("Given an engine with the default configuration", t, func() {
		engine := analytics.NewEngine()
		s := snapshot.FromRecords(workforce())

		Convey("When refreshing without a filter", func() {
			b := engine.Refresh(s, snapshot.NoFilter)

			Convey("Then every metric is available", func() {
				So(b.Unavailable(), ShouldBeEmpty)
				So(b.SnapshotID, ShouldEqual, s.ID())
				So(b.TotalRows, ShouldEqual, 7)
				So(b.FilteredRows, ShouldEqual, 7)
				So(b.FilterApplied, ShouldBeFalse)
			})

			Convey("And the configured dimensions are reported in order", func() {
				So(b.GroupRates, ShouldHaveLength, 4)
				dims := []string{}
				for _, d := range b.GroupRates {
					dims = append(dims, d.Dimension)
				}
				So(dims, ShouldResemble, analytics.DefaultGroupDimensions)
			})

			Convey("And the overview matches the workforce", func() {
				So(b.Overview.TotalEmployees, ShouldEqual, 7)
				So(b.Overview.AttritionRate.Value(), ShouldAlmostEqual, 300.0/7, 1e-9)
				So(b.Overview.AverageIncome.Value(), ShouldAlmostEqual, 39500.0/7, 1e-9)
				So(b.Overview.AverageSatisfaction.Value(), ShouldAlmostEqual, (19.0/7+19.0/7)/2, 1e-9)
			})

			Convey("And overtime rates reflect the data", func() {
				res, ok := b.Rates("OverTime")
				So(ok, ShouldBeTrue)
				rates := res.Value()
				So(rates[0].Group, ShouldEqual, "Yes")
				So(rates[0].RatePercent, ShouldEqual, 100.0)
				So(rates[1].Group, ShouldEqual, "No")
				So(rates[1].RatePercent, ShouldEqual, 0.0)
			})
		})

		Convey("When filtering to one department", func() {
			b := engine.Refresh(s, snapshot.Eq("DepartmentName", "Sales"))

			Convey("Then filtered metrics use the slice", func() {
				So(b.FilterApplied, ShouldBeTrue)
				So(b.FilteredRows, ShouldEqual, 3)
				res, _ := b.Rates("JobRole")
				rates := res.Value()
				So(rates, ShouldHaveLength, 2)
				So(rates[0].Group, ShouldEqual, "Sales Executive")
				So(rates[0].RatePercent, ShouldEqual, 50.0)
				So(b.Income.Value().Yes.Values, ShouldResemble, []float64{4000, 2500})
			})

			Convey("And overall metrics still cover the whole company", func() {
				overall := b.OverallRates.Value()
				So(overall, ShouldHaveLength, 6)
				size := 0
				for _, r := range overall {
					size += r.Size
				}
				So(size, ShouldEqual, 7)
				So(b.OverallIncome.Value().No.Values, ShouldHaveLength, 4)
				So(b.Overview.TotalEmployees, ShouldEqual, 7)
			})

			Convey("And the correlation matrix ignores the filter", func() {
				unfiltered := engine.Refresh(s, snapshot.NoFilter)
				So(b.Correlation.Value().Values, ShouldResemble, unfiltered.Correlation.Value().Values)
				So(b.Correlation.Value().Pairs[0][0], ShouldEqual, 7)
			})
		})

		Convey("When filtering on a department that does not exist", func() {
			b := engine.Refresh(s, snapshot.Eq("DepartmentName", "Legal"))

			Convey("Then filtered results are empty but available", func() {
				So(b.FilteredRows, ShouldEqual, 0)
				for _, d := range b.GroupRates {
					So(d.Rates.OK(), ShouldBeTrue)
					So(d.Rates.Value(), ShouldBeEmpty)
				}
				So(b.Income.OK(), ShouldBeTrue)
				So(b.Income.Value().Yes.Values, ShouldBeEmpty)
				So(b.Income.Value().No.Values, ShouldBeEmpty)
			})
		})

		Convey("When filtering on a dimension the snapshot lacks", func() {
			b := engine.Refresh(s, snapshot.Eq("Region", "EMEA"))
			plain := engine.Refresh(s, snapshot.NoFilter)

			Convey("Then the refresh behaves as if unfiltered", func() {
				So(b.FilterApplied, ShouldBeFalse)
				So(b.FilteredRows, ShouldEqual, 7)
				So(b.GroupRates, ShouldResemble, plain.GroupRates)
			})
		})
	})

	Convey("Given a snapshot without DailyRate", t, func() {
		rows := workforce()
		for _, r := range rows {
			delete(r, "DailyRate")
		}
		s := snapshot.FromRecords(rows)
		b := analytics.NewEngine().Refresh(s, snapshot.NoFilter)

		Convey("Then only the correlation matrix is unavailable", func() {
			So(b.Correlation.OK(), ShouldBeFalse)
			So(b.Correlation.Reason(), ShouldContainSubstring, "DailyRate")
			So(b.Unavailable(), ShouldHaveLength, 1)
			So(b.Unavailable(), ShouldContainKey, analytics.MetricCorrelation)
			So(b.Income.OK(), ShouldBeTrue)
			res, _ := b.Rates("JobRole")
			So(res.OK(), ShouldBeTrue)
		})
	})

	Convey("Given a snapshot without MaritalStatus or MonthlyIncome", t, func() {
		rows := workforce()
		for _, r := range rows {
			delete(r, "MaritalStatus")
			delete(r, "MonthlyIncome")
		}
		b := analytics.NewEngine().Refresh(snapshot.FromRecords(rows), snapshot.NoFilter)

		Convey("Then each dependent metric degrades independently", func() {
			marital, _ := b.Rates("MaritalStatus")
			So(marital.OK(), ShouldBeFalse)
			So(b.Income.OK(), ShouldBeFalse)
			So(b.OverallIncome.OK(), ShouldBeFalse)
			So(b.Correlation.OK(), ShouldBeFalse)
			So(b.Overview.AverageIncome.OK(), ShouldBeFalse)
			overtime, _ := b.Rates("OverTime")
			So(overtime.OK(), ShouldBeTrue)
			So(b.OverallRates.OK(), ShouldBeTrue)
		})
	})

	Convey("Given an empty snapshot from an unavailable store", t, func() {
		b := analytics.NewEngine().Refresh(snapshot.Empty(), snapshot.Eq("DepartmentName", "Sales"))

		Convey("Then every metric is unavailable and nothing panics", func() {
			So(b.TotalRows, ShouldEqual, 0)
			So(b.Correlation.OK(), ShouldBeFalse)
			So(b.Income.OK(), ShouldBeFalse)
			So(b.Overview.AttritionRate.OK(), ShouldBeFalse)
		})
	})

	Convey("Given a nil snapshot", t, func() {
		b := analytics.NewEngine().Refresh(nil, snapshot.NoFilter)

		Convey("Then it is treated as empty", func() {
			So(b.TotalRows, ShouldEqual, 0)
			So(b.SnapshotID, ShouldNotBeEmpty)
		})
	})

	Convey("Given a custom configuration", t, func() {
		engine := analytics.NewEngine(
			analytics.WithOutcome(analytics.Outcome{Field: "Left", Positive: "Y", Negative: "N"}),
			analytics.WithGroupDimensions([]string{"Team"}),
			analytics.WithOverallDimension("Team"),
			analytics.WithIncomeField("Salary"),
			analytics.WithCorrelationFeatures([]string{"Salary"}),
			analytics.WithSatisfactionFields([]string{"Happiness"}),
		)
		s := snapshot.FromRecords([]snapshot.Record{
			{"Team": "A", "Left": "Y", "Salary": 10, "Happiness": 2},
			{"Team": "A", "Left": "N", "Salary": 20, "Happiness": 4},
		})
		b := engine.Refresh(s, snapshot.NoFilter)

		Convey("Then the configured fields drive every metric", func() {
			So(b.Unavailable(), ShouldBeEmpty)
			So(b.OverallRates.Value()[0].RatePercent, ShouldEqual, 50.0)
			So(b.Income.Value().Field, ShouldEqual, "Salary")
			So(b.Overview.AverageSatisfaction.Value(), ShouldEqual, 3.0)
			So(engine.Outcome().Positive, ShouldEqual, "Y")
		})
	})
}

func TestBundle_JSON(t *testing.T) {
	Convey("Given a bundle with an unavailable metric", t, func() {
		rows := workforce()
		for _, r := range rows {
			delete(r, "DailyRate")
		}
		b := analytics.NewEngine().Refresh(snapshot.FromRecords(rows), snapshot.NoFilter)

		Convey("When encoding to JSON", func() {
			raw, err := json.Marshal(b)
			So(err, ShouldBeNil)

			var decoded map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)

			Convey("Then unavailable metrics carry a reason and no data", func() {
				corr := decoded["correlation"].(map[string]any)
				So(corr["available"], ShouldEqual, false)
				So(corr["reason"], ShouldContainSubstring, "DailyRate")
				So(corr, ShouldNotContainKey, "data")
			})

			Convey("And available metrics carry data", func() {
				income := decoded["income"].(map[string]any)
				So(income["available"], ShouldEqual, true)
				So(income, ShouldContainKey, "data")
			})
		})
	})
}
