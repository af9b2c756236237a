package dispatch

import (
	"math/rand"

	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/geo"
)

// LoadWindowMinutes and UrgentLeadMinutes bound how far ahead of its own
// pickup time an instant booking's load (request) time is drawn from.
const (
	LoadWindowMinutes = 120
	UrgentLeadMinutes = 60
)

// InstantTemplate is an instant booking as loaded from input: the trip and
// its pickup time are both known up front, same as a scheduled booking.
// What's hidden until the loader draws it is the load time — the minute
// the passenger actually requests the ride (C8).
type InstantTemplate struct {
	ID         int
	Class      int
	Pickup     geo.Point
	Drop       geo.Point
	PickupTime int
	DistanceKM float64
	TravelTime int
}

// InstantLoader deterministically draws a load time for every instant
// template at construction time, seeded so a simulation run is
// reproducible end to end (C8). Revealing them tick by tick is then a pure
// lookup against the time already drawn.
type InstantLoader struct {
	loadTime  map[int]int
	templates map[int]InstantTemplate
	revealed  map[int]bool
	order     []int
}

// NewInstantLoader draws each template's load time from
// [max(dayStart, pickup_time-LoadWindowMinutes), pickup_time-UrgentLeadMinutes],
// uniformly, falling back to the window's lower bound when that range is
// empty or inverted. rng is seeded from seed so two runs with the same
// seed produce the same sequence of instant-booking reveals regardless of
// tick length. dayEnd bounds nothing in the draw itself; it is accepted
// for symmetry with the clock the caller is already running.
func NewInstantLoader(seed int64, templates []InstantTemplate, dayStart, dayEnd int) *InstantLoader {
	rng := rand.New(rand.NewSource(seed))
	l := &InstantLoader{
		loadTime:  make(map[int]int, len(templates)),
		templates: make(map[int]InstantTemplate, len(templates)),
		revealed:  make(map[int]bool, len(templates)),
		order:     make([]int, 0, len(templates)),
	}
	for _, t := range templates {
		l.templates[t.ID] = t
		l.loadTime[t.ID] = drawLoadTime(rng, t.PickupTime, dayStart)
		l.order = append(l.order, t.ID)
	}
	return l
}

// drawLoadTime implements the earliest/latest/uniform-draw rule: a booking
// whose own pickup leaves no real window (latest <= earliest) loads at the
// earliest instant possible instead.
func drawLoadTime(rng *rand.Rand, pickupTime, dayStart int) int {
	earliest := pickupTime - LoadWindowMinutes
	if earliest < dayStart {
		earliest = dayStart
	}
	latest := pickupTime - UrgentLeadMinutes
	if latest <= earliest {
		return earliest
	}
	return earliest + rng.Intn(latest-earliest+1)
}

// Reveal returns, as real Booking values, every instant template whose
// drawn load time has arrived by now and that has not already been
// revealed by an earlier tick.
func (l *InstantLoader) Reveal(now int) []booking.Booking {
	var out []booking.Booking
	for _, id := range l.order {
		if l.revealed[id] {
			continue
		}
		if l.loadTime[id] > now {
			continue
		}
		t := l.templates[id]
		b, err := booking.New(t.ID, t.Class, t.Pickup, t.Drop, t.PickupTime, t.DistanceKM, t.TravelTime, booking.OriginInstant)
		if err != nil {
			continue
		}
		l.revealed[id] = true
		out = append(out, b)
	}
	return out
}

// Pending reports how many instant templates have not yet been revealed.
func (l *InstantLoader) Pending() int {
	n := 0
	for _, id := range l.order {
		if !l.revealed[id] {
			n++
		}
	}
	return n
}
