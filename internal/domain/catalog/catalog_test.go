package catalog

import (
	"testing"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var songs = []model.Song{
	{ID: "1", Title: "Let It Be", Artist: "The Beatles", Level: model.LevelA1},
	{ID: "2", Title: "Yesterday", Artist: "The Beatles", Level: model.LevelA2},
	{ID: "3", Title: "Let It Go", Artist: "Idina Menzel", Level: model.LevelA1},
	{ID: "4", Title: "Bohemian Rhapsody", Artist: "Queen", Level: model.LevelC1},
}

func TestFind(t *testing.T) {
	Convey("Given a small catalog", t, func() {
		Convey("An exact title ignoring case and spacing matches fully", func() {
			m, ok := Find(songs, "  let it   GO ")
			So(ok, ShouldBeTrue)
			So(m.Song.ID, ShouldEqual, "3")
			So(m.Score, ShouldEqual, 1)
		})

		Convey("A misspelled title still matches", func() {
			m, ok := Find(songs, "bohemian rapsody")
			So(ok, ShouldBeTrue)
			So(m.Song.ID, ShouldEqual, "4")
			So(m.Score, ShouldBeGreaterThanOrEqualTo, DefaultThreshold)
			So(m.Score, ShouldBeLessThan, 1)
		})

		Convey("Artist and title together match", func() {
			m, ok := Find(songs, "queen bohemian rhapsody")
			So(ok, ShouldBeTrue)
			So(m.Song.ID, ShouldEqual, "4")
		})

		Convey("Unrelated queries do not match", func() {
			_, ok := Find(songs, "xyzzy")
			So(ok, ShouldBeFalse)
			_, ok = Find(songs, "   ")
			So(ok, ShouldBeFalse)
			_, ok = Find(nil, "let it be")
			So(ok, ShouldBeFalse)
		})

		Convey("A strict threshold rejects near misses", func() {
			_, ok := FindWithThreshold(songs, "bohemian rapsody", 0.999)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestByLevel(t *testing.T) {
	Convey("Songs are filtered by level in order", t, func() {
		a1 := ByLevel(songs, model.LevelA1)
		So(len(a1), ShouldEqual, 2)
		So(a1[0].ID, ShouldEqual, "1")
		So(a1[1].ID, ShouldEqual, "3")
		So(ByLevel(songs, model.LevelC2), ShouldBeEmpty)
	})
}
