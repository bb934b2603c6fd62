package viewstate

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pqui/archstudio/internal/logging"
	"github.com/pqui/archstudio/internal/site"
)

type fakeView struct {
	deactivated atomic.Int32
}

func (f *fakeView) Deactivate() { f.deactivated.Add(1) }

type otherView struct{ fakeView }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newRegistry(ttl time.Duration, max int) (*Registry, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := New(ttl, max, logging.Discard())
	r.now = c.now
	return r, c
}

func TestAddGet(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry(time.Minute, 10)
	v := &fakeView{}
	id := r.Add(site.PageProjects, v)

	page, got, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, site.PageProjects, page)
	assert.Same(t, v, got)

	_, _, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupChecksType(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry(time.Minute, 10)
	id := r.Add(site.PageBlog, &fakeView{})

	_, v, err := Lookup[*fakeView](r, id)
	require.NoError(t, err)
	assert.NotNil(t, v)

	_, _, err = Lookup[*otherView](r, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweepExpiresIdleViews(t *testing.T) {
	t.Parallel()

	r, c := newRegistry(time.Minute, 10)
	idle, busy := &fakeView{}, &fakeView{}
	idleID := r.Add(site.PageProjects, idle)
	busyID := r.Add(site.PageTeam, busy)

	c.t = c.t.Add(45 * time.Second)
	_, _, err := r.Get(busyID)
	require.NoError(t, err)

	c.t = c.t.Add(30 * time.Second)
	_, _, err = r.Get(idleID)
	assert.ErrorIs(t, err, ErrNotFound, "expired views are not served before the sweep runs")

	assert.Equal(t, 1, r.Sweep())
	assert.EqualValues(t, 1, idle.deactivated.Load())
	assert.EqualValues(t, 0, busy.deactivated.Load())
	assert.Equal(t, 1, r.Len())
}

func TestAddEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	r, c := newRegistry(time.Hour, 2)
	first, second, third := &fakeView{}, &fakeView{}, &fakeView{}

	firstID := r.Add(site.PageProjects, first)
	c.t = c.t.Add(time.Second)
	secondID := r.Add(site.PageProjects, second)
	c.t = c.t.Add(time.Second)
	_, _, err := r.Get(firstID)
	require.NoError(t, err)
	c.t = c.t.Add(time.Second)

	r.Add(site.PageProjects, third)

	assert.Equal(t, 2, r.Len())
	assert.EqualValues(t, 1, second.deactivated.Load())
	_, _, err = r.Get(secondID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = r.Get(firstID)
	assert.NoError(t, err)
}

func TestRemoveAndClose(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry(time.Hour, 10)
	a, b := &fakeView{}, &fakeView{}
	aID := r.Add(site.PageHome, a)
	r.Add(site.PageBlog, b)

	r.Remove(aID)
	r.Remove(aID)
	assert.EqualValues(t, 1, a.deactivated.Load())

	r.Close()
	assert.EqualValues(t, 1, b.deactivated.Load())
	assert.Equal(t, 0, r.Len())
}
