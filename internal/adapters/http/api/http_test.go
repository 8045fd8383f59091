package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/frisk/internal/adapters/http/api"
	"github.com/okian/frisk/internal/adapters/ledger"
	"github.com/okian/frisk/internal/app"
	"github.com/okian/frisk/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDeps implements api.Dependencies with configurable behavior.
type mockDeps struct {
	predictFn   func(ctx context.Context, variant string, body []byte) (app.PredictResult, error)
	reconcileFn func(ctx context.Context, id string, outcome json.RawMessage) (ledger.Record, error)
	getRecordFn func(ctx context.Context, id string) (ledger.Record, error)
}

func (m *mockDeps) Predict(ctx context.Context, variant string, body []byte) (app.PredictResult, error) {
	return m.predictFn(ctx, variant, body)
}

func (m *mockDeps) Reconcile(ctx context.Context, id string, outcome json.RawMessage) (ledger.Record, error) {
	return m.reconcileFn(ctx, id, outcome)
}

func (m *mockDeps) GetRecord(ctx context.Context, id string) (ledger.Record, error) {
	return m.getRecordFn(ctx, id)
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(deps *mockDeps) *http.ServeMux {
	srv := api.NewServer(deps, mockStats{})
	mux := http.NewServeMux()
	srv.Register(context.Background(), mux)
	return mux
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestShouldSearchEndpoint(t *testing.T) {
	Convey("Given the flat prediction endpoint", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When a valid observation is posted", func() {
			deps.predictFn = func(_ context.Context, variant string, _ []byte) (app.PredictResult, error) {
				So(variant, ShouldEqual, app.VariantFlat)
				return app.PredictResult{ObservationID: "obs-1", Prediction: true}, nil
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/should_search/", strings.NewReader(`{}`)))

			Convey("Then it should answer with the outcome only", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decodeBody(t, rec)
				So(body["outcome"], ShouldBeTrue)
				So(body, ShouldNotContainKey, "error")
			})
		})

		Convey("When the observation id was replayed", func() {
			deps.predictFn = func(_ context.Context, _ string, _ []byte) (app.PredictResult, error) {
				return app.PredictResult{ObservationID: "obs-1", Prediction: true, Duplicate: true}, nil
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/should_search/", strings.NewReader(`{}`)))

			Convey("Then it should carry both the outcome and the error", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decodeBody(t, rec)
				So(body["outcome"], ShouldBeTrue)
				So(body["error"], ShouldEqual, "Observation ID: 'obs-1' already exists")
			})
		})

		Convey("When validation rejects the observation", func() {
			deps.predictFn = func(_ context.Context, _ string, _ []byte) (app.PredictResult, error) {
				return app.PredictResult{}, &validate.TypeError{Field: "Latitude", Actual: "str", Expected: "float"}
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/should_search/", strings.NewReader(`{}`)))

			Convey("Then the failure should come back as a structured 200", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decodeBody(t, rec)
				So(body["error"], ShouldEqual, "Field Latitude is str, while it should be float")
			})
		})

		Convey("When the method is not POST", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/should_search/", nil))

			Convey("Then it should 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestPredictEndpoint(t *testing.T) {
	Convey("Given the nested prediction endpoint", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When a valid observation is posted", func() {
			deps.predictFn = func(_ context.Context, variant string, _ []byte) (app.PredictResult, error) {
				So(variant, ShouldEqual, app.VariantNested)
				return app.PredictResult{
					ObservationID:  "obs-9",
					Prediction:     false,
					Probability:    0.31,
					HasProbability: true,
				}, nil
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{}`)))

			Convey("Then it should answer with id, proba and prediction", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decodeBody(t, rec)
				So(body["observation_id"], ShouldEqual, "obs-9")
				So(body["proba"], ShouldEqual, 0.31)
				So(body["prediction"], ShouldBeFalse)
			})
		})
	})
}

func TestSearchResultEndpoint(t *testing.T) {
	Convey("Given the reconciliation endpoint", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When an outcome is posted for a known observation", func() {
			deps.reconcileFn = func(_ context.Context, id string, outcome json.RawMessage) (ledger.Record, error) {
				So(id, ShouldEqual, "obs-5")
				So(string(outcome), ShouldEqual, "true")
				return ledger.Record{ObservationID: id, Prediction: false}, nil
			}
			req := httptest.NewRequest(http.MethodPost, "/search_result/",
				strings.NewReader(`{"observation_id":"obs-5","outcome":true}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the payload should be echoed with the prediction", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decodeBody(t, rec)
				So(body["observation_id"], ShouldEqual, "obs-5")
				So(body["outcome"], ShouldBeTrue)
				So(body["predicted_outcome"], ShouldBeFalse)
			})
		})

		Convey("When the ground truth arrives under the legacy label key", func() {
			deps.reconcileFn = func(_ context.Context, _ string, outcome json.RawMessage) (ledger.Record, error) {
				So(string(outcome), ShouldEqual, "false")
				return ledger.Record{ObservationID: "obs-6", Prediction: true}, nil
			}
			req := httptest.NewRequest(http.MethodPost, "/search_result/",
				strings.NewReader(`{"observation_id":"obs-6","label":false}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decodeBody(t, rec)["predicted_outcome"], ShouldBeTrue)
		})

		Convey("When the observation id was never recorded", func() {
			deps.reconcileFn = func(_ context.Context, _ string, _ json.RawMessage) (ledger.Record, error) {
				return ledger.Record{}, ledger.ErrNotFound
			}
			req := httptest.NewRequest(http.MethodPost, "/search_result/",
				strings.NewReader(`{"observation_id":"ghost","outcome":true}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should report the missing id as a structured 200", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decodeBody(t, rec)["error"], ShouldEqual, `Observation ID: "ghost" does not exist`)
			})
		})

		Convey("When the outcome field is absent", func() {
			req := httptest.NewRequest(http.MethodPost, "/search_result/",
				strings.NewReader(`{"observation_id":"obs-7"}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decodeBody(t, rec)["error"], ShouldEqual, "Missing columns: ['outcome']")
		})
	})
}

func TestRecordsEndpoint(t *testing.T) {
	Convey("Given the records endpoint", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When fetching a stored record", func() {
			proba := 0.42
			deps.getRecordFn = func(_ context.Context, id string) (ledger.Record, error) {
				So(id, ShouldEqual, "obs-3")
				return ledger.Record{ObservationID: id, Prediction: true, Probability: &proba}, nil
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/obs-3", nil))

			Convey("Then the record should be returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decodeBody(t, rec)
				So(body["observation_id"], ShouldEqual, "obs-3")
				So(body["prediction"], ShouldBeTrue)
			})
		})

		Convey("When the record does not exist", func() {
			deps.getRecordFn = func(_ context.Context, _ string) (ledger.Record, error) {
				return ledger.Record{}, ledger.ErrNotFound
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/ghost", nil))

			Convey("Then it should 404 with the contract message", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decodeBody(t, rec)["error"], ShouldEqual, `Observation ID: "ghost" does not exist`)
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		mux := newMux(&mockDeps{})

		Convey("When fetching stats", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then the provider payload should be returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decodeBody(t, rec)["started"], ShouldBeTrue)
			})
		})
	})
}
