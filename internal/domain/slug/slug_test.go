package slug_test

import (
	"testing"

	"github.com/okian/apmboard/internal/domain/slug"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMake(t *testing.T) {
	Convey("Given company names", t, func() {
		cases := map[string]string{
			"Google":             "google",
			"Acme Corp":          "acme-corp",
			"  Jane   Street  ":  "jane-street",
			"Société Générale":   "societe-generale",
			"AT&T":               "att",
			"Rock--Solid":        "rock-solid",
			"Meta / Facebook":    "meta-facebook",
			"":                   "job",
			"!!!":                "job",
		}
		for in, want := range cases {
			So(slug.Make(in), ShouldEqual, want)
		}
	})
}
