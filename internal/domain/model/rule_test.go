package model_test

import (
	"testing"

	"github.com/okian/bakeconv/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUniversal(t *testing.T) {
	Convey("Given a universal factor", t, func() {
		f := model.Universal(3)

		Convey("Then it yields its value for any ingredient", func() {
			for _, ing := range []string{"", "flour", "anything"} {
				v, ok := f.FactorFor(ing)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 3.0)
			}
		})
	})
}

func TestPerIngredient(t *testing.T) {
	Convey("Given a per-ingredient factor", t, func() {
		f := model.PerIngredient{"flour": 120, "sugar": 200}

		Convey("When the ingredient is known", func() {
			v, ok := f.FactorFor("sugar")

			Convey("Then it yields the ingredient factor", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 200.0)
			})
		})

		Convey("When the ingredient is unknown", func() {
			_, ok := f.FactorFor("cocoa")

			Convey("Then it yields nothing", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When no ingredient is supplied", func() {
			_, ok := f.FactorFor("")

			Convey("Then it yields nothing", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestRule_Matches(t *testing.T) {
	Convey("Given a cups to grams rule", t, func() {
		r := model.Rule{From: "cups", To: "grams", Factor: model.PerIngredient{"flour": 120}}

		Convey("Then it matches only its own direction", func() {
			So(r.Matches("cups", "grams"), ShouldBeTrue)
			So(r.Matches("grams", "cups"), ShouldBeFalse)
			So(r.Matches("Cups", "grams"), ShouldBeFalse)
		})
	})
}
