package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/uranai/internal/adapters/http/api"
	service "github.com/okian/uranai/internal/app"
	"github.com/okian/uranai/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var sampleRow = model.Row{
	Year: 2024, Month: 1, Day: 15,
	Ranks: [12]int{2, 3, 1, 4, 5, 6, 7, 8, 9, 10, 11, 12},
}

// Mock implementations for testing
type mockDependencies struct {
	ingestErr  error
	ingests    int
	dataset    model.Dataset
	datasetErr error
	pingErr    error
	stats      map[string]interface{}
}

func (m *mockDependencies) Ingest(context.Context) (service.Result, error) {
	m.ingests++
	if m.ingestErr != nil {
		return service.Result{RunID: "run-1"}, m.ingestErr
	}
	return service.Result{RunID: "run-1", Created: true}, nil
}

func (m *mockDependencies) Dataset(context.Context) (model.Dataset, error) {
	return m.dataset, m.datasetErr
}

func (m *mockDependencies) Ping(context.Context) error { return m.pingErr }

func (m *mockDependencies) GetStats(context.Context) map[string]interface{} { return m.stats }

func newMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{
			dataset: model.Dataset{sampleRow},
			stats:   map[string]interface{}{"started": true, "records": 1},
		}
		mux := newMux(deps)

		Convey("Then health endpoint should be accessible", func() {
			w := do(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("And metrics endpoint should expose the registry", func() {
			do(mux, http.MethodGet, "/csv")
			w := do(mux, http.MethodGet, "/metrics")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "uranai_rankings_http_requests_total")
		})

		Convey("And stats endpoint should be accessible", func() {
			w := do(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"records":1`)
		})

		Convey("And non-GET methods should be rejected", func() {
			for _, path := range []string{"/update", "/jsonp", "/csv", "/healthz", "/stats", "/metrics"} {
				So(do(mux, http.MethodPost, path).Code, ShouldEqual, http.StatusNotFound)
			}
			So(deps.ingests, ShouldEqual, 0)
		})

		Convey("And unknown paths should not be handled", func() {
			So(do(mux, http.MethodGet, "/unknown").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestUpdateHandler(t *testing.T) {
	Convey("Given an update endpoint", t, func() {
		Convey("When the run succeeds", func() {
			deps := &mockDependencies{}
			w := do(newMux(deps), http.MethodGet, "/update")

			Convey("Then it answers 200 with an empty body", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.Len(), ShouldEqual, 0)
				So(deps.ingests, ShouldEqual, 1)
			})
		})

		cases := []struct {
			err    error
			status int
			code   string
		}{
			{service.ErrFetchFailed, http.StatusBadGateway, "fetch_failed"},
			{service.ErrDateExtractionFailed, http.StatusUnprocessableEntity, "date_extraction_failed"},
			{service.ErrRankingExtractionFailed, http.StatusUnprocessableEntity, "ranking_extraction_failed"},
			{service.ErrStoreFailed, http.StatusInternalServerError, "store_failed"},
			{service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
			{errors.New("surprise"), http.StatusInternalServerError, "internal_error"},
		}
		for _, tc := range cases {
			Convey(fmt.Sprintf("When the run fails with %v", tc.err), func() {
				deps := &mockDependencies{ingestErr: fmt.Errorf("%w: cause", tc.err)}
				w := do(newMux(deps), http.MethodGet, "/update")

				So(w.Code, ShouldEqual, tc.status)
				body := decodeError(w)
				So(body["code"], ShouldEqual, tc.code)
				So(body["message"], ShouldContainSubstring, "api.update")
			})
		}
	})
}

func TestDatasetHandler(t *testing.T) {
	Convey("Given dataset endpoints over one record", t, func() {
		deps := &mockDependencies{dataset: model.Dataset{sampleRow}}
		mux := newMux(deps)

		Convey("When requesting JSONP without a callback", func() {
			w := do(mux, http.MethodGet, "/jsonp")

			Convey("Then the default callback wraps the rows", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/javascript")
				So(w.Header().Get("X-Content-Type-Options"), ShouldEqual, "nosniff")
				So(w.Body.String(), ShouldEqual, "callback([[2024,1,15,2,3,1,4,5,6,7,8,9,10,11,12]])")
			})
		})

		Convey("When requesting JSONP with a named callback", func() {
			w := do(mux, http.MethodGet, "/jsonp?callback=draw_chart")
			So(w.Body.String(), ShouldStartWith, "draw_chart([[2024,")
		})

		Convey("When requesting JSONP with an unsafe callback", func() {
			w := do(mux, http.MethodGet, "/jsonp?callback=alert(1)%3B")

			Convey("Then it is rejected as a client error", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "invalid_callback")
			})
		})

		Convey("When requesting CSV", func() {
			w := do(mux, http.MethodGet, "/csv")

			Convey("Then header and rows are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/csv")
				So(w.Header().Get("X-Content-Type-Options"), ShouldEqual, "nosniff")
				So(w.Body.String(), ShouldEqual,
					"year,month,day,ari,tau,gem,cnc,leo,vir,lib,sco,sgr,cap,aqr,psc\n"+
						"2024,1,15,2,3,1,4,5,6,7,8,9,10,11,12\n")
			})
		})
	})

	Convey("Given an empty history", t, func() {
		mux := newMux(&mockDependencies{dataset: model.Dataset{}})

		So(do(mux, http.MethodGet, "/jsonp?callback=cb").Body.String(), ShouldEqual, "cb([])")
		So(do(mux, http.MethodGet, "/csv").Body.String(), ShouldEqual,
			"year,month,day,ari,tau,gem,cnc,leo,vir,lib,sco,sgr,cap,aqr,psc\n")
	})

	Convey("Given a store that cannot be read", t, func() {
		mux := newMux(&mockDependencies{datasetErr: service.ErrDatasetUnavailable})

		Convey("Then both encodings answer 503", func() {
			for _, path := range []string{"/jsonp", "/csv"} {
				w := do(mux, http.MethodGet, path)
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decodeError(w)["code"], ShouldEqual, "dataset_unavailable")
			}
		})
	})
}

func TestHealthHandler(t *testing.T) {
	Convey("Given an unreachable store", t, func() {
		mux := newMux(&mockDependencies{pingErr: errors.New("connection refused")})
		w := do(mux, http.MethodGet, "/healthz")

		So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		So(w.Body.String(), ShouldContainSubstring, "connection refused")
	})
}

func TestErrors(t *testing.T) {
	Convey("Given operation errors", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.csv", api.ErrUnavailable, cause)

		So(errors.Is(err, api.ErrUnavailable), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.csv: service unavailable: boom")
		So(api.NewKind("api.jsonp", api.ErrBadRequest).Error(), ShouldEqual, "api.jsonp: bad request")
		So(api.Wrap("api.update", cause).Error(), ShouldEqual, "api.update: boom")
	})
}
