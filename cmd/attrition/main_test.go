package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

// run executes the CLI with a fresh command tree.
func run(args ...string) (string, error) {
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func useTempDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "employees.db")
	t.Setenv("ATTRITION_CONFIG", "")
	t.Setenv("ATTRITION_DATABASE_PATH", path)
	t.Setenv("ATTRITION_LOG_LEVEL", "error")
	return path
}

func TestEmployeesCommands(t *testing.T) {
	useTempDatabase(t)

	convey.Convey("Given an empty database", t, func() {
		convey.Convey("When adding an employee", func() {
			out, err := run("employees", "add",
				"--department", "Sales",
				"--job-role", "Sales Executive",
				"--income", "5200",
				"--overtime", "Yes",
				"--attrition", "Yes",
			)
			convey.So(err, convey.ShouldBeNil)

			var created map[string]int64
			convey.So(json.Unmarshal([]byte(out), &created), convey.ShouldBeNil)
			convey.So(created["id"], convey.ShouldBeGreaterThan, 0)

			convey.Convey("Then it is listed", func() {
				out, err := run("employees", "list", "--limit", "10")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Sales Executive")
			})

			convey.Convey("And its income can be updated", func() {
				_, err := run("employees", "set", "1", "MonthlyIncome", "6100")
				convey.So(err, convey.ShouldBeNil)

				out, err := run("employees", "list")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "6100")
			})

			convey.Convey("And unknown columns are rejected", func() {
				_, err := run("employees", "set", "1", "Salary", "1")
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When adding without required flags", func() {
			_, err := run("employees", "add", "--department", "Sales")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When setting with a bad id", func() {
			_, err := run("employees", "set", "abc", "Age", "30")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestReportCommand(t *testing.T) {
	useTempDatabase(t)

	convey.Convey("Given a database with two employees", t, func() {
		for _, attrition := range []string{"Yes", "No"} {
			_, err := run("employees", "add",
				"--department", "Research & Development",
				"--job-role", "Research Scientist",
				"--income", "4100",
				"--overtime", "No",
				"--attrition", attrition,
			)
			convey.So(err, convey.ShouldBeNil)
		}

		convey.Convey("When reporting without a filter", func() {
			out, err := run("report")
			convey.So(err, convey.ShouldBeNil)

			var bundle map[string]any
			convey.So(json.Unmarshal([]byte(out), &bundle), convey.ShouldBeNil)
			convey.So(bundle["filter_applied"], convey.ShouldEqual, false)
			convey.So(bundle["total_rows"], convey.ShouldBeGreaterThanOrEqualTo, 2.0)
		})

		convey.Convey("When reporting for one department", func() {
			out, err := run("report", "--department", "Sales")
			convey.So(err, convey.ShouldBeNil)

			var bundle map[string]any
			convey.So(json.Unmarshal([]byte(out), &bundle), convey.ShouldBeNil)
			convey.So(bundle["filter_applied"], convey.ShouldEqual, true)
			convey.So(bundle["filtered_rows"], convey.ShouldEqual, 0.0)
		})

		convey.Convey("When mixing filter flags", func() {
			_, err := run("report", "--department", "Sales", "--dimension", "JobRole", "--value", "x")
			convey.So(err, convey.ShouldEqual, errFilterFlags)

			_, err = run("report", "--dimension", "JobRole")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestHandler(t *testing.T) {
	useTempDatabase(t)

	convey.Convey("Given a started service", t, func() {
		c := &cli{}
		root := newRootCmd()
		root.SetContext(context.Background())
		convey.So(c.setup(root), convey.ShouldBeNil)

		ctx := context.Background()
		svc := c.newService()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		h := newHandler(ctx, svc)

		for _, path := range []string{"/departments", "/analytics", "/openapi.yaml", "/api-docs", "/healthz"} {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		}
	})
}

func TestParseValue(t *testing.T) {
	convey.Convey("Command line values map to column values", t, func() {
		convey.So(parseValue("null"), convey.ShouldBeNil)
		convey.So(parseValue("42"), convey.ShouldEqual, json.Number("42"))
		convey.So(parseValue("NaN"), convey.ShouldEqual, "NaN")
		convey.So(parseValue("Yes"), convey.ShouldEqual, "Yes")
	})
}
