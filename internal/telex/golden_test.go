package telex

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// corpus covers every trigger class plus a handful of words that must fall
// back to raw text, including plausible words that stop short of a
// complete syllable. Regenerate with: go test ./internal/telex -run Golden -update
var corpus = strings.Fields(`
vieet vieetj ddieemr tootj xyz123 as ass aaa ww ddd
chaof banj tooi teen laf gif giuwx gioo gia ddi
khoong ddaauf nguowif truowngf dduowngf quoocs nguyeenx quyeenr khuya yeeu
muaw cuar hocj lawms awn owr banhs chinhs tinhf bachs
raast nghieeng ngheex tieengs xinf hoaf hoanf thuys hoef kem
VIEETJ Ddaay Nguowif
hello ka gex qw toofc toofcs did tosf asz z
law saw baa tiee tien thuowr huow thuowng muowi
`)

func TestGoldenCorpus(t *testing.T) {
	var buf bytes.Buffer
	for _, word := range corpus {
		e := New(DefaultConfig())
		for _, c := range word {
			e.PushChar(c)
		}
		state := e.State()
		peek := e.Peek()
		fmt.Fprintf(&buf, "%s\t%s\t%s\t%s\n", word, state, peek, e.Commit())
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "corpus", buf.Bytes())
}
