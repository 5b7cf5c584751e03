package ugen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tapirlisp/tapirgo/pkg/transport"
	"github.com/tapirlisp/tapirgo/pkg/ugen"
)

func TestEgAttackRampsToOneThenDecays(t *testing.T) {
	tr := transport.New(1, 120.0, transport.Measure{Beat: 4, Note: 4})
	eg := ugen.NewEg(ugen.Val(10.0), ugen.Val(10.0), ugen.Val(0.3), ugen.Val(10.0))

	var sig ugen.Signal
	for i := 0; i < 9; i++ {
		sig = eg.Proc(tr)
		tr.Inc()
	}
	assert.InDelta(t, 0.9, sig.L, 1e-9, "9 of 10 attack samples elapsed")

	sig = eg.Proc(tr) // 10th attack sample: reaches 1.0, transitions to decay
	tr.Inc()
	assert.InDelta(t, 1.0, sig.L, 1e-9)
}

func TestEgDecayRampsToSustainLevel(t *testing.T) {
	tr := transport.New(1, 120.0, transport.Measure{Beat: 4, Note: 4})
	eg := ugen.NewEg(ugen.Val(10.0), ugen.Val(10.0), ugen.Val(0.3), ugen.Val(10.0))

	var sig ugen.Signal
	for i := 0; i < 20; i++ {
		sig = eg.Proc(tr)
		tr.Inc()
	}
	assert.InDelta(t, 0.3, sig.L, 1e-9, "10 attack + 10 decay samples reach sustain level")
}

func TestEgSustainHoldsConstant(t *testing.T) {
	tr := transport.New(1, 120.0, transport.Measure{Beat: 4, Note: 4})
	eg := ugen.NewEg(ugen.Val(1.0), ugen.Val(1.0), ugen.Val(0.5), ugen.Val(10.0))

	for i := 0; i < 2; i++ {
		eg.Proc(tr)
		tr.Inc()
	}
	for i := 0; i < 50; i++ {
		sig := eg.Proc(tr)
		assert.InDelta(t, 0.5, sig.L, 1e-9)
		tr.Inc()
	}
}

func TestEgZeroLengthStagesSkipImmediately(t *testing.T) {
	tr := transport.New(48000, 120.0, transport.Measure{Beat: 4, Note: 4})
	eg := ugen.NewEg(ugen.Val(0.0), ugen.Val(0.0), ugen.Val(0.7), ugen.Val(10.0))

	eg.Proc(tr) // zero-length attack: one call to cross into decay
	tr.Inc()
	sig := eg.Proc(tr) // zero-length decay: one more call to cross into sustain
	assert.InDelta(t, 0.7, sig.L, 1e-9, "zero attack and decay samples fall straight through to sustain")
}

func TestEgAttackGetSetRoundtrip(t *testing.T) {
	eg := ugen.NewEg(ugen.Val(5.0), ugen.Val(5.0), ugen.Val(0.5), ugen.Val(5.0))

	got, err := eg.Get("attack")
	assert.NoError(t, err)
	v, ok := got.ToVal()
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, err = eg.Set("attack", ugen.Val(20.0))
	assert.NoError(t, err)
	got, _ = eg.Get("attack")
	v, _ = got.ToVal()
	assert.Equal(t, 20.0, v)

	_, err = eg.Get("nope")
	assert.Error(t, err)
}
