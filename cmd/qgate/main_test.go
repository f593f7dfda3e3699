package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/theapemachine/qgate"
)

func TestAdminRouter(t *testing.T) {
	Convey("Given the admin router", t, func() {
		reg := prometheus.NewRegistry()
		qgate.NewMetrics(reg)
		router := adminRouter(reg)

		Convey("healthz answers ok", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldEqual, "ok")
		})

		Convey("metrics are exposed", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "qgate_circuit_breaker_rejections_total")
		})
	})
}

func TestRunCommand(t *testing.T) {
	Convey("Given the run command against the local simulator", t, func() {
		t.Setenv(qgate.EndpointEnv, "")

		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"run", "--layers", "1", "--qubits", "2", "--shots", "20", "--seed", "9"})

		So(rootCmd.Execute(), ShouldBeNil)

		var got struct {
			Params []string              `json:"params"`
			Values []float64             `json:"values"`
			Result qgate.ExecutionResult `json:"result"`
		}
		So(json.Unmarshal(out.Bytes(), &got), ShouldBeNil)

		So(got.Params, ShouldResemble, []string{"theta[0]", "theta[1]"})
		So(got.Values, ShouldHaveLength, 2)
		So(got.Result.Histogram.Total(), ShouldEqual, 20)
	})
}
