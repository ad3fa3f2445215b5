package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	. "github.com/smartystreets/goconvey/convey"

	repository "github.com/okian/bakeconv/internal/adapters/repository"
	"github.com/okian/bakeconv/internal/domain/model"
)

func TestLoad_Embedded(t *testing.T) {
	Convey("Given the embedded conversion table", t, func() {
		ctx := context.Background()
		table, err := repository.Load(ctx)

		Convey("Then it should load without error", func() {
			So(err, ShouldBeNil)
			So(table.Len(), ShouldBeGreaterThan, 0)
			So(table.Source(), ShouldEqual, "data/conversions.json")
		})

		Convey("Then tbsp to tsp should be a universal factor of 3", func() {
			rule := findRule(table.Rules(), "tbsp", "tsp")
			So(rule, ShouldNotBeNil)
			So(rule.Factor, ShouldEqual, model.Universal(3))
		})

		Convey("Then cups to grams should depend on the ingredient", func() {
			rule := findRule(table.Rules(), "cups", "grams")
			So(rule, ShouldNotBeNil)
			factors, ok := rule.Factor.(model.PerIngredient)
			So(ok, ShouldBeTrue)
			So(factors["flour"], ShouldEqual, 120.0)
		})

		Convey("When the caller mutates the returned rules", func() {
			rules := table.Rules()
			rules[0].From = "mutated"

			Convey("Then the table is unaffected", func() {
				So(table.Rules()[0].From, ShouldNotEqual, "mutated")
			})
		})
	})
}

func TestLoad_FromFS(t *testing.T) {
	Convey("Given a table in an fs.FS", t, func() {
		ctx := context.Background()
		fsys := fstest.MapFS{
			"table.json": {Data: []byte(`{"bakingConversions":[
				{"from":"tbsp","to":"tsp","conversionFactor":3},
				{"from":"cups","to":"grams","conversionFactors":{"flour":120}}
			]}`)},
			"table.yaml": {Data: []byte(`
bakingConversions:
  - from: cups
    to: grams
    conversionFactors:
      flour: 120
      sugar: 200
  - from: tbsp
    to: tsp
    conversionFactor: 3
`)},
		}

		Convey("When loading JSON", func() {
			table, err := repository.Load(ctx, repository.WithFS(fsys, "table.json"))

			Convey("Then rules keep table order", func() {
				So(err, ShouldBeNil)
				rules := table.Rules()
				So(rules, ShouldHaveLength, 2)
				So(rules[0].From, ShouldEqual, "tbsp")
				So(rules[1].From, ShouldEqual, "cups")
			})
		})

		Convey("When loading YAML", func() {
			table, err := repository.Load(ctx, repository.WithFS(fsys, "table.yaml"))

			Convey("Then rules decode into the tagged form", func() {
				So(err, ShouldBeNil)
				rules := table.Rules()
				So(rules, ShouldHaveLength, 2)
				So(rules[0].Factor, ShouldResemble, model.PerIngredient{"flour": 120, "sugar": 200})
				So(rules[1].Factor, ShouldEqual, model.Universal(3))
			})
		})

		Convey("When the file is missing", func() {
			_, err := repository.Load(ctx, repository.WithFS(fsys, "missing.json"))

			Convey("Then ErrLoadTable is returned", func() {
				So(errors.Is(err, repository.ErrLoadTable), ShouldBeTrue)
			})
		})
	})
}

func TestLoad_FromPath(t *testing.T) {
	Convey("Given a table file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "conversions.yml")
		err := os.WriteFile(path, []byte("bakingConversions:\n  - {from: ounces, to: grams, conversionFactor: 28.3495}\n"), 0o600)
		So(err, ShouldBeNil)

		Convey("When loading with WithPath", func() {
			table, err := repository.Load(context.Background(), repository.WithPath(path))

			Convey("Then the file is used", func() {
				So(err, ShouldBeNil)
				So(table.Len(), ShouldEqual, 1)
				So(table.Source(), ShouldEqual, path)
			})
		})

		Convey("When WithPath is empty", func() {
			table, err := repository.Load(context.Background(), repository.WithPath(""))

			Convey("Then the embedded table is kept", func() {
				So(err, ShouldBeNil)
				So(table.Source(), ShouldEqual, "data/conversions.json")
			})
		})
	})
}

func TestDecode_Invalid(t *testing.T) {
	Convey("Given malformed tables", t, func() {
		cases := []struct {
			name string
			data string
		}{
			{"broken json", `{"bakingConversions":[`},
			{"no rules", `{"bakingConversions":[]}`},
			{"unknown field", `{"bakingConversions":[{"from":"a","to":"b","factor":1}]}`},
			{"both factor kinds", `{"bakingConversions":[{"from":"a","to":"b","conversionFactor":1,"conversionFactors":{"x":1}}]}`},
			{"neither factor kind", `{"bakingConversions":[{"from":"a","to":"b"}]}`},
			{"empty factor map", `{"bakingConversions":[{"from":"a","to":"b","conversionFactors":{}}]}`},
			{"missing from", `{"bakingConversions":[{"to":"b","conversionFactor":1}]}`},
			{"uppercase unit", `{"bakingConversions":[{"from":"Cups","to":"b","conversionFactor":1}]}`},
			{"zero factor", `{"bakingConversions":[{"from":"a","to":"b","conversionFactor":0}]}`},
			{"negative factor", `{"bakingConversions":[{"from":"a","to":"b","conversionFactor":-2}]}`},
			{"uppercase ingredient", `{"bakingConversions":[{"from":"a","to":"b","conversionFactors":{"Flour":1}}]}`},
			{"empty ingredient", `{"bakingConversions":[{"from":"a","to":"b","conversionFactors":{"":1}}]}`},
			{"zero ingredient factor", `{"bakingConversions":[{"from":"a","to":"b","conversionFactors":{"x":0}}]}`},
		}

		for _, tc := range cases {
			Convey("When decoding "+tc.name, func() {
				_, err := repository.Decode([]byte(tc.data), repository.FormatJSON)

				Convey("Then ErrInvalidTable is returned", func() {
					So(errors.Is(err, repository.ErrInvalidTable), ShouldBeTrue)
				})
			})
		}

		Convey("When a YAML factor is not finite", func() {
			_, err := repository.Decode([]byte("bakingConversions:\n  - {from: a, to: b, conversionFactor: .inf}\n"), repository.FormatYAML)

			Convey("Then ErrInvalidTable is returned", func() {
				So(errors.Is(err, repository.ErrInvalidTable), ShouldBeTrue)
			})
		})
	})
}

func findRule(rules []model.Rule, from, to string) *model.Rule {
	for i := range rules {
		if rules[i].Matches(from, to) {
			return &rules[i]
		}
	}
	return nil
}
