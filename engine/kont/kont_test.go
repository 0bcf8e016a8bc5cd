package kont_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/runecore/engine/kont"
)

// contractPanic runs f and returns the *ContractError it panicked with.
func contractPanic(t *testing.T, f func()) (ce *kont.ContractError) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		var ok bool
		ce, ok = r.(*kont.ContractError)
		require.True(t, ok, "panic value %T is not *kont.ContractError", r)
	}()
	f()
	return nil
}

func TestOnce_ResumeDeliversValue(t *testing.T) {
	var got int
	k := kont.Once(func(v int) kont.Done {
		got = v
		return kont.End()
	})

	d := k.Resume(7)
	assert.True(t, d.Valid())
	assert.Equal(t, 7, got)
	assert.True(t, k.Used())
}

func TestOnce_ResumeTwicePanics(t *testing.T) {
	calls := 0
	k := kont.Named("turn", func(kont.Unit) kont.Done {
		calls++
		return kont.End()
	})
	k.Resume(kont.Unit{})

	ce := contractPanic(t, func() { k.Resume(kont.Unit{}) })
	assert.True(t, errors.Is(ce, kont.ErrResumedTwice))
	assert.Equal(t, "turn", ce.Name)
	assert.Equal(t, 1, calls)
}

func TestTryResume_SecondCallReportsFalse(t *testing.T) {
	calls := 0
	k := kont.Once(func(int) kont.Done {
		calls++
		return kont.End()
	})

	_, ok := k.TryResume(1)
	require.True(t, ok)
	_, ok = k.TryResume(2)
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestDiscard_ThenResumePanics(t *testing.T) {
	k := kont.Once(func(int) kont.Done {
		t.Fatal("discarded continuation must not run")
		return kont.End()
	})
	k.Discard()
	assert.True(t, k.Used())

	ce := contractPanic(t, func() { k.Resume(1) })
	assert.True(t, errors.Is(ce, kont.ErrDiscarded))
}

func TestDiscard_AfterResumeIsNoop(t *testing.T) {
	k := kont.Once(func(int) kont.Done { return kont.End() })
	k.Resume(1)
	k.Discard()

	ce := contractPanic(t, func() { k.Resume(2) })
	assert.True(t, errors.Is(ce, kont.ErrResumedTwice))
}

func TestResume_BodyDroppingItsContinuationPanics(t *testing.T) {
	k := kont.Named("leaky", func(int) kont.Done {
		return kont.Done{}
	})

	ce := contractPanic(t, func() { k.Resume(1) })
	assert.True(t, errors.Is(ce, kont.ErrDropped))
}

func TestZeroDoneIsInvalid(t *testing.T) {
	var d kont.Done
	assert.False(t, d.Valid())
	assert.Equal(t, "incomplete", d.String())
}

func TestMap_ResumesTargetOnce(t *testing.T) {
	var got string
	calls := 0
	target := kont.Once(func(s string) kont.Done {
		calls++
		got = s
		return kont.End()
	})
	adapted := kont.Map(target, func(n int) string {
		if n > 0 {
			return "positive"
		}
		return "other"
	})

	adapted.Resume(3)
	assert.Equal(t, "positive", got)
	assert.Equal(t, 1, calls)
	assert.True(t, target.Used())

	contractPanic(t, func() { adapted.Resume(4) })
	assert.Equal(t, 1, calls)
}

func TestPark_KeepsContinuationResumable(t *testing.T) {
	calls := 0
	k := kont.Once(func(int) kont.Done {
		calls++
		return kont.End()
	})

	d := kont.Park(k)
	assert.True(t, d.Valid())
	assert.True(t, d.Parked())
	assert.False(t, k.Used())

	k.Resume(1)
	assert.Equal(t, 1, calls)
}

func TestPark_ConsumedContinuationPanics(t *testing.T) {
	k := kont.Once(func(int) kont.Done { return kont.End() })
	k.Resume(1)

	ce := contractPanic(t, func() { kont.Park(k) })
	assert.True(t, errors.Is(ce, kont.ErrParkUsed))
}

func TestAbandon_ConsumesWithoutInvoking(t *testing.T) {
	k := kont.Once(func(int) kont.Done {
		t.Fatal("abandoned continuation must not run")
		return kont.End()
	})

	d := kont.Abandon(k)
	assert.True(t, d.Valid())
	assert.Equal(t, "abandoned", d.String())
	_, ok := k.TryResume(1)
	assert.False(t, ok)
}

func TestEnd_IsValidRootCompletion(t *testing.T) {
	d := kont.End()
	assert.True(t, d.Valid())
	assert.False(t, d.Parked())
	assert.Equal(t, "ended", d.String())
}

func TestCapture_InlineResumeHandsValueBack(t *testing.T) {
	later := 0
	v, sync, d := kont.Capture("inline", func(k *kont.Cont[int]) kont.Done {
		return k.Resume(7)
	}, func(int) kont.Done {
		later++
		return kont.End()
	})

	assert.True(t, sync)
	assert.Equal(t, 7, v)
	assert.True(t, d.Valid())
	assert.False(t, d.Parked())
	assert.Equal(t, 0, later)
}

func TestCapture_LaterResumeRunsLater(t *testing.T) {
	var parked *kont.Cont[int]
	var got []int
	v, sync, d := kont.Capture("later", func(k *kont.Cont[int]) kont.Done {
		parked = k
		return kont.Park(k)
	}, func(n int) kont.Done {
		got = append(got, n)
		return kont.End()
	})

	assert.False(t, sync)
	assert.Zero(t, v)
	assert.True(t, d.Parked())

	parked.Resume(3)
	assert.Equal(t, []int{3}, got)
	contractPanic(t, func() { parked.Resume(4) })
}
