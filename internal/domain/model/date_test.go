package model_test

import (
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/midiaz/brandscope/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseDate(t *testing.T) {
	convey.Convey("Given date strings", t, func() {
		convey.Convey("When parsing a well-formed date", func() {
			d, err := model.ParseDate("2025-03-15")

			convey.Convey("Then it round-trips through String", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(d.String(), convey.ShouldEqual, "2025-03-15")
				convey.So(d.Year(), convey.ShouldEqual, 2025)
				convey.So(d.Month(), convey.ShouldEqual, time.March)
			})
		})

		convey.Convey("When parsing malformed input", func() {
			for _, bad := range []string{"15/03/2025", "2025-3-15", "2025-13-01", "yesterday"} {
				_, err := model.ParseDate(bad)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, model.ErrInvalidDate), convey.ShouldBeTrue)
			}
		})
	})
}

func TestDateJSON(t *testing.T) {
	convey.Convey("Given dates on the wire", t, func() {
		convey.Convey("When decoding a plain date", func() {
			var d model.Date
			convey.So(json.Unmarshal([]byte(`"2025-03-15"`), &d), convey.ShouldBeNil)
			convey.So(d.String(), convey.ShouldEqual, "2025-03-15")
		})

		convey.Convey("When decoding a timestamp", func() {
			var d model.Date

			convey.Convey("Then the time component is truncated away", func() {
				convey.So(json.Unmarshal([]byte(`"2025-03-15T10:30:00Z"`), &d), convey.ShouldBeNil)
				convey.So(d.String(), convey.ShouldEqual, "2025-03-15")
			})
		})

		convey.Convey("When decoding null or empty values", func() {
			var d model.Date
			convey.So(json.Unmarshal([]byte(`null`), &d), convey.ShouldBeNil)
			convey.So(d.IsZero(), convey.ShouldBeTrue)
			convey.So(json.Unmarshal([]byte(`""`), &d), convey.ShouldBeNil)
			convey.So(d.IsZero(), convey.ShouldBeTrue)
		})

		convey.Convey("When encoding", func() {
			out, err := json.Marshal(model.NewDate(2025, time.March, 15))
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(out), convey.ShouldEqual, `"2025-03-15"`)

			out, err = json.Marshal(model.Date{})
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(out), convey.ShouldEqual, "null")
		})

		convey.Convey("When a date field rides inside an event row", func() {
			var e model.Event
			row := `{"id":"abc","event_name":"City Marathon","event_date":"2025-03-15T00:00:00","total_photos":12}`
			convey.So(json.Unmarshal([]byte(row), &e), convey.ShouldBeNil)
			convey.So(e.Name, convey.ShouldEqual, "City Marathon")
			convey.So(e.Date.String(), convey.ShouldEqual, "2025-03-15")
			convey.So(e.TotalPhotos, convey.ShouldEqual, 12)
		})
	})
}
