package replay

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/m0ric/replaykit/internal/session"
)

// progressInterval is how many events pass between progress callbacks.
const progressInterval = 100

// carryThreshold is where an accumulated fractional delta rounds up to a
// whole pixel. Values below 1.0 keep scaled slow movements from stalling.
const carryThreshold = 0.8

// Options tune a playback run.
type Options struct {
	// Cooldown is how long to wait before the first event fires, giving the
	// operator time to focus the target window.
	Cooldown time.Duration

	// Sensitivity scales relative mouse deltas. 1.0 plays movements back
	// exactly as recorded.
	Sensitivity float64

	// Speed scales event timing. 2.0 plays twice as fast. Zero means 1.0.
	Speed float64

	// OnProgress, when set, is called every 100 events and once at the end.
	OnProgress func(done, total int)
}

// Result summarizes a playback run.
type Result struct {
	Played   int
	Skipped  int
	Duration time.Duration
}

// Player replays a recording's merged timeline through an injector.
type Player struct {
	injector Injector

	// sleep and now are swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewPlayer creates a player that injects through the given injector.
func NewPlayer(injector Injector) *Player {
	return &Player{
		injector: injector,
		sleep:    sleepCtx,
		now:      time.Now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Play replays the recording. It waits out the cooldown, then walks the
// merged timeline, sleeping up to each event's offset before injecting it.
// Events with unknown types are counted as skipped rather than failing the
// run. Cancellation stops playback between events.
func (p *Player) Play(ctx context.Context, rec *session.Recording, opts Options) (*Result, error) {
	if rec == nil {
		return nil, fmt.Errorf("no recording to play")
	}

	sensitivity := opts.Sensitivity
	if sensitivity <= 0 {
		sensitivity = 1.0
	}
	speed := opts.Speed
	if speed <= 0 {
		speed = 1.0
	}

	if err := p.sleep(ctx, opts.Cooldown); err != nil {
		return nil, err
	}

	timeline := rec.Timeline()
	total := len(timeline)
	start := p.now()
	result := &Result{}

	// Fractional pixel remainders carried across scaled moves so slow
	// movements survive sub-pixel scaling.
	var carryX, carryY float64

	for i, ev := range timeline {
		target := time.Duration(ev.Timestamp() / speed * float64(time.Second))
		if err := p.sleep(ctx, target-p.now().Sub(start)); err != nil {
			result.Duration = p.now().Sub(start)
			return result, err
		}

		ok, err := p.inject(ev, sensitivity, &carryX, &carryY)
		if err != nil {
			result.Duration = p.now().Sub(start)
			return result, fmt.Errorf("inject event %d: %w", i+1, err)
		}
		if ok {
			result.Played++
		} else {
			result.Skipped++
		}

		if opts.OnProgress != nil && (i+1)%progressInterval == 0 {
			opts.OnProgress(i+1, total)
		}
	}

	if opts.OnProgress != nil && total > 0 {
		opts.OnProgress(total, total)
	}
	result.Duration = p.now().Sub(start)
	return result, nil
}

// inject performs one timeline event. It returns false for event types it
// does not understand.
func (p *Player) inject(ev session.TimelineEvent, sensitivity float64, carryX, carryY *float64) (bool, error) {
	switch ev.Device {
	case session.DeviceMouse:
		m := ev.Mouse
		switch m.Type {
		case session.EventMoveRelative:
			dx, dy := scaleDelta(m.DX, m.DY, sensitivity, carryX, carryY)
			if dx == 0 && dy == 0 {
				return true, nil
			}
			return true, p.injector.MoveRelative(dx, dy)
		case session.EventClick:
			pressed := m.Pressed != nil && *m.Pressed
			return true, p.injector.Click(m.Button, pressed)
		case session.EventScroll:
			return true, p.injector.Scroll(m.DX, m.DY)
		}
	case session.DeviceKeyboard:
		k := ev.Keyboard
		switch k.Type {
		case session.EventPress:
			return true, p.injector.KeyPress(k.Key)
		case session.EventRelease:
			return true, p.injector.KeyRelease(k.Key)
		}
	}
	return false, nil
}

// scaleDelta applies the sensitivity multiplier to one movement, carrying
// fractional remainders between calls. A movement that would otherwise
// truncate to nothing rounds away from zero once its accumulated remainder
// reaches the carry threshold, so scaled-down motion still lands.
func scaleDelta(dx, dy int, sensitivity float64, carryX, carryY *float64) (int, int) {
	if sensitivity == 1.0 {
		return dx, dy
	}
	outX := carryPixels(float64(dx)*sensitivity, carryX)
	outY := carryPixels(float64(dy)*sensitivity, carryY)
	return outX, outY
}

func carryPixels(scaled float64, carry *float64) int {
	total := scaled + *carry
	whole := math.Trunc(total)
	frac := total - whole
	// Only a movement that truncated to zero gets bumped. A moving delta
	// keeps its full remainder for later.
	if whole == 0 && math.Abs(frac) >= carryThreshold {
		if frac > 0 {
			whole = 1
		} else {
			whole = -1
		}
		frac = total - whole
	}
	*carry = frac
	return int(whole)
}
