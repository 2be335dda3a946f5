package version

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		for _, tc := range []struct {
			a, b string
			want int
		}{
			{"0.3.0", "0.3.0", 0},
			{"v0.4.0", "0.3.9", 1},
			{"0.3.1", "1.0.0", -1},
			{"1.2.3-rc1", "1.2.3", 0},
		} {
			got, err := Compare(tc.a, tc.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, tc.want)
		}

		Convey("Malformed versions are rejected", func() {
			_, err := Compare("latest", "0.3.0")
			So(err, ShouldNotBeNil)
		})
	})
}
