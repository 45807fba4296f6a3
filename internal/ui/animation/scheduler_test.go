package animation

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestFrameSchedulerStepsRegisteredFrames(t *testing.T) {
	test.NewTempApp(t)
	scheduler := NewFrameScheduler()

	var order []string
	cancelFirst := scheduler.Every(func() { order = append(order, "first") })
	cancelSecond := scheduler.Every(func() { order = append(order, "second") })
	assert.True(t, scheduler.running())

	order = nil
	scheduler.Step()
	assert.Equal(t, []string{"first", "second"}, order)

	cancelFirst()
	assert.True(t, scheduler.running())
	order = nil
	scheduler.Step()
	assert.Equal(t, []string{"second"}, order)

	cancelSecond()
	assert.False(t, scheduler.running())
	order = nil
	scheduler.Step()
	assert.Empty(t, order)
}

func TestFrameSchedulerDoRunsOnMainThread(t *testing.T) {
	test.NewTempApp(t)
	scheduler := NewFrameScheduler()

	done := make(chan struct{})
	scheduler.Do(func() { close(done) })
	<-done
}
