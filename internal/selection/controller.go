// Package selection owns the live dashboard state for one session: which
// category is shown, which item is current, whether it is pinned, the
// auto-cycle timer and reconciliation of background refreshes.
package selection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/hiscores-dash/internal/hiscores"
	"github.com/openmohaa/hiscores-dash/internal/mapper"
	"github.com/openmohaa/hiscores-dash/internal/models"
)

// DefaultCycleInterval is how long each item stays on screen while cycling.
const DefaultCycleInterval = 6 * time.Second

// PinMode is the pin state of a session.
type PinMode int

const (
	PinNone PinMode = iota
	PinManual
	PinToID
)

func (p PinMode) String() string {
	switch p {
	case PinManual:
		return "manual"
	case PinToID:
		return "pinned_to"
	}
	return "none"
}

// PinPolicy decides what manual navigation does to a pin-to-id.
type PinPolicy string

const (
	// PinSticky keeps a pinned id across category switches and manual
	// navigation until the user releases it.
	PinSticky PinPolicy = "sticky"
	// PinReleaseOnNavigate drops the id binding on manual prev/next. The
	// session stays pinned manually on wherever the user navigated to.
	PinReleaseOnNavigate PinPolicy = "release-on-navigate"
)

// ParsePinPolicy validates a policy name from configuration.
func ParsePinPolicy(s string) (PinPolicy, error) {
	switch PinPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PinSticky:
		return PinSticky, nil
	case PinReleaseOnNavigate:
		return PinReleaseOnNavigate, nil
	}
	return "", fmt.Errorf("unknown pin policy %q", s)
}

// Prometheus metrics
var (
	autoCycleTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_autocycle_ticks_total",
		Help: "Total number of auto-cycle advances across all sessions",
	})

	refreshesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_fetches_applied_total",
		Help: "Fetch completions by how they were applied",
	}, []string{"result"})
)

// Config configures a Controller.
type Config struct {
	Fetcher       hiscores.Fetcher
	Mapper        *mapper.Mapper
	Clock         Clock
	CycleInterval time.Duration
	FetchTimeout  time.Duration
	PinPolicy     PinPolicy
	Logger        *zap.Logger
}

// Controller is the selection state machine for one session. All
// transitions are serialized behind mu, which plays the role of the UI
// event loop; fetches and timer ticks re-enter through it.
type Controller struct {
	fetcher       hiscores.Fetcher
	mapper        *mapper.Mapper
	clock         Clock
	cycleInterval time.Duration
	fetchTimeout  time.Duration
	pinPolicy     PinPolicy
	logger        *zap.SugaredLogger

	mu       sync.Mutex
	player   string
	items    []models.DisplayItem
	category models.Category
	index    int
	pin      PinMode
	pinnedID string

	loading    bool
	refreshing bool
	loaded     bool
	errMsg     string

	// resetPending holds from a player change until a fetch for that player
	// lands, so an interleaved refresh cannot keep the old selection.
	resetPending bool

	fetchGen    uint64
	cancelFetch context.CancelFunc
	inflight    int
	idle        *sync.Cond

	timer    Timer
	timerGen uint64
	timerKey cycleKey
	closed   bool
}

// cycleKey is the set of conditions the auto-cycle timer depends on.
type cycleKey struct {
	pinned   bool
	length   int
	category models.Category
}

// New creates a controller in the initial state (skills, index 0, unpinned)
// with no player loaded. Call SetPlayer to start the first fetch.
func New(cfg Config) *Controller {
	if cfg.Mapper == nil {
		cfg.Mapper = mapper.New(mapper.Options{})
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock
	}
	if cfg.CycleInterval <= 0 {
		cfg.CycleInterval = DefaultCycleInterval
	}
	if cfg.PinPolicy == "" {
		cfg.PinPolicy = PinSticky
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	c := &Controller{
		fetcher:       cfg.Fetcher,
		mapper:        cfg.Mapper,
		clock:         cfg.Clock,
		cycleInterval: cfg.CycleInterval,
		fetchTimeout:  cfg.FetchTimeout,
		pinPolicy:     cfg.PinPolicy,
		logger:        cfg.Logger.Sugar(),
		category:      models.CategorySkills,
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// SetPlayer switches the session to another player: index and pin reset,
// the category is kept, and a fresh fetch replaces any in-flight one.
func (c *Controller) SetPlayer(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.logger.Infow("Player changed", "from", c.player, "to", name)
	c.player = name
	c.index = 0
	c.pin = PinNone
	c.pinnedID = ""
	c.resetPending = true
	c.startFetchLocked(false)
	c.rearmLocked()
}

// Refresh re-fetches the current player without resetting the selection.
// It reads past the snapshot cache. While a player change is still loading
// the refresh takes over that load and resets the selection when it lands.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.player == "" {
		return
	}
	c.startFetchLocked(true)
}

// CancelFetch abandons the in-flight fetch, if any. The selection is left
// untouched and no error is surfaced.
func (c *Controller) CancelFetch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
}

// SetCategory switches tabs. The index resets to 0; the pin is preserved and
// a pinned id found in the new tab becomes current.
func (c *Controller) SetCategory(cat models.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.category == cat {
		return
	}

	c.category = cat
	c.index = 0
	c.followPinLocked()
	c.rearmLocked()
}

// SelectNext advances with wraparound.
func (c *Controller) SelectNext() {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filteredLocked()
	if len(filtered) == 0 || c.category.IsAggregate() {
		return
	}
	c.index = (c.index + 1) % len(filtered)
	c.navigatedLocked()
}

// SelectPrevious steps back, stopping at the first item.
func (c *Controller) SelectPrevious() {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filteredLocked()
	if len(filtered) == 0 || c.category.IsAggregate() {
		return
	}
	c.index = max(0, c.index-1)
	c.navigatedLocked()
}

// SelectByID jumps to id within the current tab. Absent ids are ignored.
func (c *Controller) SelectByID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := mapper.IndexOf(c.filteredLocked(), id); idx >= 0 {
		c.index = idx
	}
}

// TogglePin flips between unpinned and a manual pin. Releasing also drops a
// pinned id. The index never changes.
func (c *Controller) TogglePin() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pin == PinNone {
		c.pin = PinManual
	} else {
		c.pin = PinNone
	}
	c.pinnedID = ""
	c.rearmLocked()
}

// PinToID pins a specific item. Pinning the id that is already pinned
// releases the pin.
func (c *Controller) PinToID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pin == PinToID && c.pinnedID == id {
		c.pin = PinNone
		c.pinnedID = ""
	} else {
		c.pin = PinToID
		c.pinnedID = id
		c.followPinLocked()
	}
	c.rearmLocked()
}

// Close stops the timer and abandons any in-flight fetch. It waits for the
// fetch goroutine to return.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.stopTimerLocked()
	c.waitLocked()
	c.mu.Unlock()
}

// Wait blocks until no fetch is in flight.
func (c *Controller) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waitLocked()
}

func (c *Controller) waitLocked() {
	for c.inflight > 0 {
		c.idle.Wait()
	}
}

// Player returns the current player name.
func (c *Controller) Player() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.player
}

func (c *Controller) startFetchLocked(keepSelection bool) {
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	fresh := keepSelection
	if c.resetPending {
		keepSelection = false
	}
	c.fetchGen++
	gen := c.fetchGen

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.fetchTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.fetchTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	c.cancelFetch = cancel
	if fresh {
		ctx = hiscores.WithBypassCache(ctx)
	}

	c.errMsg = ""
	if keepSelection {
		c.refreshing = true
	} else {
		c.loading = true
	}

	player := c.player
	c.inflight++
	go func() {
		defer cancel()

		snap, err := c.fetcher.Fetch(ctx, player)
		var items []models.DisplayItem
		if err == nil {
			items = c.mapper.DisplayItems(snap)
		}
		c.applyFetch(gen, keepSelection, items, err)
	}()
}

// applyFetch lands a fetch result in a single critical section. It reads
// the selection as it is now, not as it was when the fetch started.
func (c *Controller) applyFetch(gen uint64, keepSelection bool, items []models.DisplayItem, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.fetchDoneLocked()

	if c.closed || gen != c.fetchGen {
		refreshesApplied.WithLabelValues("superseded").Inc()
		return
	}
	c.cancelFetch = nil
	c.loading = false
	c.refreshing = false

	if err != nil {
		if hiscores.IsCanceled(err) {
			refreshesApplied.WithLabelValues("canceled").Inc()
			return
		}
		c.logger.Warnw("Fetch failed, keeping previous data", "player", c.player, "error", err)
		refreshesApplied.WithLabelValues("failed").Inc()
		c.errMsg = errorMessage(err)
		return
	}

	if keepSelection {
		c.index = reconcileIndex(c.items, items, c.category, c.index, c.pin, c.pinnedID)
	} else {
		c.index = 0
	}
	c.items = items
	c.loaded = true
	c.resetPending = false
	if !keepSelection {
		c.followPinLocked()
	}

	refreshesApplied.WithLabelValues("applied").Inc()
	c.logger.Infow("Fetch applied", "player", c.player, "items", len(items), "refresh", keepSelection)
	c.rearmLocked()
}

func (c *Controller) fetchDoneLocked() {
	c.inflight--
	if c.inflight == 0 {
		c.idle.Broadcast()
	}
}

// reconcileIndex finds where the selection lands in a freshly fetched list:
// on the pinned id if present, else on the previously current id, else the
// old index clamped to the new list.
func reconcileIndex(oldItems, newItems []models.DisplayItem, cat models.Category, index int, pin PinMode, pinnedID string) int {
	oldFiltered := mapper.Filter(oldItems, cat)
	newFiltered := mapper.Filter(newItems, cat)

	var candidates []string
	if pin == PinToID && pinnedID != "" {
		candidates = append(candidates, pinnedID)
	}
	if index >= 0 && index < len(oldFiltered) {
		candidates = append(candidates, oldFiltered[index].ID)
	}
	for _, id := range candidates {
		if idx := mapper.IndexOf(newFiltered, id); idx >= 0 {
			return idx
		}
	}
	return min(index, max(0, len(newFiltered)-1))
}

func errorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, hiscores.ErrNotFound):
		return "Player not found"
	}
	return err.Error()
}

func (c *Controller) filteredLocked() []models.DisplayItem {
	return mapper.Filter(c.items, c.category)
}

// followPinLocked moves the index onto the pinned id when the current tab
// contains it.
func (c *Controller) followPinLocked() {
	if c.pin != PinToID {
		return
	}
	if idx := mapper.IndexOf(c.filteredLocked(), c.pinnedID); idx >= 0 {
		c.index = idx
	}
}

func (c *Controller) navigatedLocked() {
	if c.pin == PinToID && c.pinPolicy == PinReleaseOnNavigate {
		c.pin = PinManual
		c.pinnedID = ""
	}
}

func (c *Controller) autoCycleLocked() bool {
	return !c.closed &&
		c.pin == PinNone &&
		!c.category.IsAggregate() &&
		len(c.filteredLocked()) > 1
}

// rearmLocked tears the auto-cycle timer down and arms a new one whenever
// the conditions it depends on change. Index changes alone keep the
// current timer.
func (c *Controller) rearmLocked() {
	key := cycleKey{
		pinned:   c.pin != PinNone,
		length:   len(c.filteredLocked()),
		category: c.category,
	}
	if c.timer != nil && key == c.timerKey {
		return
	}

	c.stopTimerLocked()
	c.timerKey = key
	if !c.autoCycleLocked() {
		return
	}
	c.armLocked()
}

func (c *Controller) armLocked() {
	gen := c.timerGen
	c.timer = c.clock.AfterFunc(c.cycleInterval, func() { c.tick(gen) })
}

func (c *Controller) stopTimerLocked() {
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// tick advances the cycle and schedules the next one. Callbacks from a
// timer that has since been replaced are ignored.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.timerGen || !c.autoCycleLocked() {
		return
	}
	n := len(c.filteredLocked())
	c.index = (c.index + 1) % n
	autoCycleTicks.Inc()
	c.armLocked()
}
