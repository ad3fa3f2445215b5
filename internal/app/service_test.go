package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"testing/fstest"

	repository "github.com/okian/bakeconv/internal/adapters/repository"
	service "github.com/okian/bakeconv/internal/app"
	"github.com/okian/bakeconv/internal/domain/conversion"
	"github.com/okian/bakeconv/internal/domain/model"
	"github.com/okian/bakeconv/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const fixtureTable = `{"bakingConversions":[
	{"from":"cups","to":"grams","conversionFactors":{"flour":120,"sugar":200}},
	{"from":"tbsp","to":"tsp","conversionFactor":3}
]}`

func fixtureService() *service.Service {
	return service.New(service.WithTableFS(fstest.MapFS{
		"table.json": {Data: []byte(fixtureTable)},
	}, "table.json"))
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should not be ready before Start", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Ready(), ShouldBeFalse)
			So(svc.Rules(), ShouldEqual, 0)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service with the embedded table", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.Ready(), ShouldBeTrue)
				So(svc.Rules(), ShouldBeGreaterThan, 0)
			})

			Convey("And starting again should be a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["tableSource"], ShouldEqual, "data/conversions.json")
			})
		})
	})

	Convey("Given a service with a malformed table", t, func() {
		svc := service.New(service.WithTableFS(fstest.MapFS{
			"bad.json": {Data: []byte(`{"bakingConversions":[{"from":"a","to":"b"}]}`)},
		}, "bad.json"))

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then start should fail with ErrInvalidTable", func() {
				So(errors.Is(err, repository.ErrInvalidTable), ShouldBeTrue)
				So(svc.Ready(), ShouldBeFalse)
			})
		})
	})

	Convey("Given a service with a missing table file", t, func() {
		svc := service.New(service.WithTablePath("/non/existent/table.json"))

		Convey("Then start should fail with ErrLoadTable", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, repository.ErrLoadTable), ShouldBeTrue)
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := fixtureService()
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.Ready(), ShouldBeFalse)
			})

			Convey("And conversions should fail with ErrNotStarted", func() {
				_, err := svc.Convert(context.Background(), model.Conversion{Amount: 1, FromUnit: "tbsp", ToUnit: "tsp"})
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})

			Convey("And stopping again should be a no-op", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})
	})
}

func TestService_Convert(t *testing.T) {
	Convey("Given a started service over a fixture table", t, func() {
		ctx := context.Background()
		svc := fixtureService()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When converting cups of flour to grams", func() {
			res, err := svc.Convert(ctx, model.Conversion{Amount: 2, FromUnit: "cups", ToUnit: "grams", Ingredient: "flour"})

			Convey("Then the ingredient factor is applied", func() {
				So(err, ShouldBeNil)
				So(res.ConvertedValue, ShouldEqual, 240.0)
				So(res.Unit, ShouldEqual, "grams")
			})
		})

		Convey("When converting tbsp to tsp without an ingredient", func() {
			res, err := svc.Convert(ctx, model.Conversion{Amount: 1, FromUnit: "tbsp", ToUnit: "tsp"})

			Convey("Then the universal factor is applied", func() {
				So(err, ShouldBeNil)
				So(res.ConvertedValue, ShouldEqual, 3.0)
				So(res.Unit, ShouldEqual, "tsp")
			})
		})

		Convey("When the caller uses mixed case", func() {
			res, err := svc.Convert(ctx, model.Conversion{Amount: 0.5, FromUnit: "CUPS", ToUnit: "Grams", Ingredient: "Sugar"})

			Convey("Then lookup is case-insensitive and the unit keeps the caller's casing", func() {
				So(err, ShouldBeNil)
				So(res.ConvertedValue, ShouldEqual, 100.0)
				So(res.Unit, ShouldEqual, "Grams")
			})
		})

		Convey("When the ingredient is unknown", func() {
			_, err := svc.Convert(ctx, model.Conversion{Amount: 1, FromUnit: "cups", ToUnit: "grams", Ingredient: "unknown_ingredient"})

			Convey("Then ErrNoConversion is returned", func() {
				So(errors.Is(err, conversion.ErrNoConversion), ShouldBeTrue)
			})
		})

		Convey("When no ingredient is given for an ingredient-specific pair", func() {
			_, err := svc.Convert(ctx, model.Conversion{Amount: 1, FromUnit: "cups", ToUnit: "grams"})

			Convey("Then ErrNoConversion is returned", func() {
				So(errors.Is(err, conversion.ErrNoConversion), ShouldBeTrue)
			})
		})

		Convey("When the unit pair is unknown", func() {
			_, err := svc.Convert(ctx, model.Conversion{Amount: 1, FromUnit: "grams", ToUnit: "cups", Ingredient: "flour"})

			Convey("Then ErrNoConversion is returned", func() {
				So(errors.Is(err, conversion.ErrNoConversion), ShouldBeTrue)
			})
		})

		Convey("When the product overflows float64", func() {
			_, err := svc.Convert(ctx, model.Conversion{Amount: math.MaxFloat64, FromUnit: "tbsp", ToUnit: "tsp"})

			Convey("Then ErrOutOfRange is returned", func() {
				So(errors.Is(err, conversion.ErrOutOfRange), ShouldBeTrue)
				So(svc.GetStats()["unconverted"], ShouldEqual, int64(1))
			})
		})

		Convey("When the same conversion is repeated", func() {
			req := model.Conversion{Amount: 3, FromUnit: "tbsp", ToUnit: "tsp"}
			first, err1 := svc.Convert(ctx, req)
			second, err2 := svc.Convert(ctx, req)

			Convey("Then the results are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldResemble, first)
			})
		})

		Convey("When conversions succeed and fail", func() {
			_, _ = svc.Convert(ctx, model.Conversion{Amount: 1, FromUnit: "tbsp", ToUnit: "tsp"})
			_, _ = svc.Convert(ctx, model.Conversion{Amount: 1, FromUnit: "cups", ToUnit: "ml"})

			Convey("Then stats count both", func() {
				stats := svc.GetStats()
				So(stats["converted"], ShouldEqual, int64(1))
				So(stats["unconverted"], ShouldEqual, int64(1))
				So(stats["rules"], ShouldEqual, 2)
			})
		})
	})
}
