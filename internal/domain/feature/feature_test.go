package feature_test

import (
	"errors"
	"testing"

	"github.com/okian/frisk/internal/domain/feature"
	"github.com/okian/frisk/internal/domain/observation"
	"github.com/okian/frisk/internal/domain/temporal"
	. "github.com/smartystreets/goconvey/convey"
)

func testColumns() []feature.Column {
	return []feature.Column{
		{Name: "Type", Kind: observation.KindString},
		{Name: "Latitude", Kind: observation.KindFloat},
		{Name: "Part of a policing operation", Kind: observation.KindBool},
		{Name: "hour", Kind: observation.KindInt},
		{Name: "month", Kind: observation.KindInt},
	}
}

func TestAssemble(t *testing.T) {
	Convey("Given an assembler over a trained column list", t, func() {
		asm := feature.NewAssembler(testColumns())

		payload := map[string]any{
			"Type":                         "Person search",
			"Latitude":                     52.63,
			"Part of a policing operation": true,
			"observation_id":               "dropped",
			"Date":                         "dropped too",
		}

		Convey("When assembling with derived temporal components", func() {
			vec, err := asm.Assemble(payload, &temporal.Components{Hour: 14, Day: 15, Month: 6})

			Convey("Then values should come out typed and in column order", func() {
				So(err, ShouldBeNil)
				So(vec.Len(), ShouldEqual, 5)
				So(vec.At(0), ShouldEqual, "Person search")
				So(vec.At(1), ShouldEqual, 52.63)
				So(vec.At(2), ShouldBeTrue)
				So(vec.At(3), ShouldEqual, 14)
				So(vec.At(4), ShouldEqual, 6)
			})

			Convey("And transport fields should not leak into the vector", func() {
				So(err, ShouldBeNil)
				_, ok := vec.Value("observation_id")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the caller supplies calendar fields directly", func() {
			direct := map[string]any{
				"Type":                         "Vehicle search",
				"Latitude":                     50.1,
				"Part of a policing operation": false,
				"hour":                         9.0,
				"month":                        2.0,
			}
			vec, err := asm.Assemble(direct, nil)

			Convey("Then integer columns should coerce from JSON numbers", func() {
				So(err, ShouldBeNil)
				So(vec.At(3), ShouldEqual, 9)
				So(vec.At(4), ShouldEqual, 2)
			})
		})

		Convey("When a trained column is absent from the payload", func() {
			_, err := asm.Assemble(map[string]any{"Type": "Person search"}, nil)

			Convey("Then assembly should fail loudly", func() {
				So(errors.Is(err, feature.ErrColumnMissing), ShouldBeTrue)
			})
		})

		Convey("When a column value has the wrong type", func() {
			bad := map[string]any{
				"Type":                         "Person search",
				"Latitude":                     "52.63",
				"Part of a policing operation": false,
				"hour":                         1.0,
				"month":                        1.0,
			}
			_, err := asm.Assemble(bad, nil)

			So(errors.Is(err, feature.ErrColumnType), ShouldBeTrue)
		})

		Convey("When looking up values by name", func() {
			vec, err := asm.Assemble(payload, &temporal.Components{Hour: 3, Day: 1, Month: 12})
			So(err, ShouldBeNil)

			v, ok := vec.Value("Latitude")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 52.63)
		})
	})
}
