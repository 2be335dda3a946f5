package filesystem

import (
	"os"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestWriteFileAtomic(t *testing.T) {
	Convey("Given an in-memory backend", t, func() {
		SetMemMapFs()
		lo.Must0(API().MkdirAll("/data", 0o755))

		Convey("WriteFileAtomic should replace the target and leave no temp file", func() {
			So(WriteFileAtomic("/data/a.json", []byte("one")), ShouldBeNil)
			So(WriteFileAtomic("/data/a.json", []byte("two")), ShouldBeNil)

			So(string(lo.Must(API().ReadFile("/data/a.json"))), ShouldEqual, "two")
			So(lo.Must(API().Exists("/data/a.json.tmp")), ShouldBeFalse)
		})

		Convey("GacheFs should write through the backend", func() {
			fs := GacheFs{}
			So(fs.MkdirAll("/cache", 0o755), ShouldBeNil)
			f, err := fs.OpenFile("/cache/x", os.O_RDWR|os.O_CREATE, 0o644)
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)
			So(lo.Must(API().Exists("/cache/x")), ShouldBeTrue)
		})
	})
}
