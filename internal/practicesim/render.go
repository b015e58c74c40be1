package practicesim

import (
	"strings"

	"github.com/lmduc2309/english-music-app/internal/domain/types"
)

// Glyphs per difference class in a bar row.
var classGlyphs = map[string]byte{
	"neutral": '.',
	"good":    '#',
	"warning": '+',
	"poor":    '!',
}

// BarRow draws a frame as one line of class glyphs.
func BarRow(v types.FrameView) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, bar := range v.Bars {
		g, ok := classGlyphs[bar.Class]
		if !ok {
			g = '?'
		}
		b.WriteByte(g)
	}
	b.WriteByte(']')
	return b.String()
}
