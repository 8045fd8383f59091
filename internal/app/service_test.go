package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/frisk/internal/adapters/ledger"
	"github.com/okian/frisk/internal/app"
	"github.com/okian/frisk/internal/domain/validate"
	"github.com/okian/frisk/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func newTestService(t *testing.T) *app.Service {
	t.Helper()
	svc := app.New(
		app.WithDatabasePath(filepath.Join(t.TempDir(), "predictions.db")),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func flatBody(id string) []byte {
	body := map[string]any{
		"observation_id":               id,
		"Type":                         "Person search",
		"Date":                         "2021-06-15T14:30:00+00:00",
		"Part of a policing operation": false,
		"Latitude":                     52.63,
		"Longitude":                    -1.13,
		"Gender":                       "Male",
		"Legislation":                  "Misuse of Drugs Act 1971 (section 23)",
		"Object of search":             "Controlled drugs",
		"Age range":                    "18-24",
		"Officer-defined ethnicity":    "White",
		"station":                      "merseyside",
	}
	raw, _ := json.Marshal(body)
	return raw
}

func nestedBody(id string) []byte {
	body := map[string]any{
		"observation_id": id,
		"observation": map[string]any{
			"Type":                         "Person search",
			"Part of a policing operation": false,
			"Latitude":                     52.63,
			"Longitude":                    -1.13,
			"Gender":                       "Male",
			"Legislation":                  "Misuse of Drugs Act 1971 (section 23)",
			"Object of search":             "Controlled drugs",
			"Age range":                    "18-24",
			"Officer-defined ethnicity":    "White",
			"station":                      "merseyside",
			"hour":                         14,
			"month":                        6,
		},
	}
	raw, _ := json.Marshal(body)
	return raw
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := app.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := app.New(
			app.WithDatabasePath("custom.db"),
			app.WithRecordCacheSize(64),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Predict_Flat(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		Convey("When predicting a valid flat observation", func() {
			result, err := svc.Predict(ctx, app.VariantFlat, flatBody("obs-1"))

			Convey("Then it should succeed without a probability", func() {
				So(err, ShouldBeNil)
				So(result.ObservationID, ShouldEqual, "obs-1")
				So(result.HasProbability, ShouldBeFalse)
				So(result.Duplicate, ShouldBeFalse)
			})

			Convey("And the ledger should hold exactly one record", func() {
				So(err, ShouldBeNil)
				rec, findErr := svc.GetRecord(ctx, "obs-1")
				So(findErr, ShouldBeNil)
				So(rec.Prediction, ShouldEqual, result.Prediction)
				So(rec.Probability, ShouldBeNil)
			})
		})

		Convey("When the observation id is a bare integer", func() {
			body := flatBody("")
			var fields map[string]any
			So(json.Unmarshal(body, &fields), ShouldBeNil)
			fields["observation_id"] = 12345
			raw, _ := json.Marshal(fields)

			result, err := svc.Predict(ctx, app.VariantFlat, raw)

			Convey("Then it should record the id in decimal string form", func() {
				So(err, ShouldBeNil)
				So(result.ObservationID, ShouldEqual, "12345")
				rec, findErr := svc.GetRecord(ctx, "12345")
				So(findErr, ShouldBeNil)
				So(rec.ObservationID, ShouldEqual, "12345")
			})
		})

		Convey("When replaying the same observation id", func() {
			first, err := svc.Predict(ctx, app.VariantFlat, flatBody("obs-dup"))
			So(err, ShouldBeNil)

			second, err := svc.Predict(ctx, app.VariantFlat, flatBody("obs-dup"))

			Convey("Then the prediction still comes back flagged as duplicate", func() {
				So(err, ShouldBeNil)
				So(second.Duplicate, ShouldBeTrue)
				So(second.Prediction, ShouldEqual, first.Prediction)
			})
		})

		Convey("When the date is not ISO8601", func() {
			body := flatBody("obs-bad-date")
			var fields map[string]any
			So(json.Unmarshal(body, &fields), ShouldBeNil)
			fields["Date"] = "15/06/2021"
			raw, _ := json.Marshal(fields)

			_, err := svc.Predict(ctx, app.VariantFlat, raw)

			Convey("Then it should fail with the date format message", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "ERROR: Date '15/06/2021' is not in correct ISO8601String format")
			})

			Convey("And nothing should be recorded", func() {
				_, findErr := svc.GetRecord(ctx, "obs-bad-date")
				So(errors.Is(findErr, ledger.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Predict_Nested(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		Convey("When predicting a valid nested observation", func() {
			result, err := svc.Predict(ctx, app.VariantNested, nestedBody("obs-n1"))

			Convey("Then it should succeed with a probability", func() {
				So(err, ShouldBeNil)
				So(result.HasProbability, ShouldBeTrue)
				So(result.Probability, ShouldBeBetween, 0.0, 1.0)
			})

			Convey("And the stored record should carry the probability", func() {
				So(err, ShouldBeNil)
				rec, findErr := svc.GetRecord(ctx, "obs-n1")
				So(findErr, ShouldBeNil)
				So(rec.Probability, ShouldNotBeNil)
				So(*rec.Probability, ShouldEqual, result.Probability)
			})
		})

		Convey("When the observation id is absent", func() {
			body := nestedBody("ignored")
			var fields map[string]any
			So(json.Unmarshal(body, &fields), ShouldBeNil)
			delete(fields, "observation_id")
			raw, _ := json.Marshal(fields)

			_, err := svc.Predict(ctx, app.VariantNested, raw)

			Convey("Then it should fail at the schema stage", func() {
				So(err, ShouldNotBeNil)
				var failure validate.Failure
				So(errors.As(err, &failure), ShouldBeTrue)
				So(failure.Stage(), ShouldEqual, validate.StageSchema)
			})
		})

		Convey("When the hour is out of range", func() {
			body := nestedBody("obs-bad-hour")
			var fields map[string]any
			So(json.Unmarshal(body, &fields), ShouldBeNil)
			fields["observation"].(map[string]any)["hour"] = 24
			raw, _ := json.Marshal(fields)

			_, err := svc.Predict(ctx, app.VariantNested, raw)

			Convey("Then it should fail with the range message", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "Field `hour` is not between 0 and 23")
			})
		})

		Convey("When the variant name is unknown", func() {
			_, err := svc.Predict(ctx, "batch", nestedBody("obs-x"))

			Convey("Then it should report the unknown variant", func() {
				So(errors.Is(err, app.ErrUnknownVariant), ShouldBeTrue)
			})
		})
	})
}

func TestService_Predict_Deterministic(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		Convey("When scoring identical payloads under different ids", func() {
			first, err := svc.Predict(ctx, app.VariantNested, nestedBody("det-1"))
			So(err, ShouldBeNil)
			second, err := svc.Predict(ctx, app.VariantNested, nestedBody("det-2"))
			So(err, ShouldBeNil)

			Convey("Then the probabilities should match exactly", func() {
				So(second.Probability, ShouldEqual, first.Probability)
				So(second.Prediction, ShouldEqual, first.Prediction)
			})
		})
	})
}

func TestService_Reconcile(t *testing.T) {
	Convey("Given a service with one recorded observation", t, func() {
		svc := newTestService(t)
		ctx := context.Background()
		_, err := svc.Predict(ctx, app.VariantNested, nestedBody("obs-r1"))
		So(err, ShouldBeNil)

		Convey("When attaching an outcome", func() {
			rec, err := svc.Reconcile(ctx, "obs-r1", json.RawMessage(`true`))

			Convey("Then the record should carry the outcome", func() {
				So(err, ShouldBeNil)
				So(string(rec.Outcome), ShouldEqual, "true")
			})
		})

		Convey("When attaching an outcome twice", func() {
			_, err := svc.Reconcile(ctx, "obs-r1", json.RawMessage(`true`))
			So(err, ShouldBeNil)
			rec, err := svc.Reconcile(ctx, "obs-r1", json.RawMessage(`false`))

			Convey("Then the last write should win", func() {
				So(err, ShouldBeNil)
				So(string(rec.Outcome), ShouldEqual, "false")
			})
		})

		Convey("When the observation id was never recorded", func() {
			_, err := svc.Reconcile(ctx, "ghost", json.RawMessage(`true`))

			Convey("Then it should report not found", func() {
				So(errors.Is(err, ledger.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		ctx := context.Background()
		_, err := svc.Predict(ctx, app.VariantFlat, flatBody("stats-1"))
		So(err, ShouldBeNil)

		Convey("When fetching stats", func() {
			stats := svc.GetStats()

			Convey("Then they should report the ledger size", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["ledgerRecords"], ShouldEqual, 1)
			})
		})
	})
}
