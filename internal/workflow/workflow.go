// Package workflow holds the dashboard session state and the load/save
// persistence flow against a chart value store.
//
// A save that finds an existing entry stops in PhaseAwaitingConfirmation and
// stays busy until Confirm is called with the user's decision. Every exit path
// returns the workflow to PhaseIdle with the busy flag cleared.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jgoulah/callcharts/pkg/models"
)

// Status messages shown to the user
const (
	StatusInvalidEmail   = "Please enter a valid email address"
	StatusLoaded         = "Previous values loaded"
	StatusNotFound       = "No previous values found"
	StatusFetchFailed    = "Failed to fetch previous values"
	StatusChecking       = "Checking existing values..."
	StatusCheckFailed    = "Failed to check existing values"
	StatusConfirm        = "We found previously saved values. Overwrite?"
	StatusCancelled      = "Cancelled"
	StatusSaved          = "Saved successfully"
	StatusReset          = "Reset chart to default data"
	StatusApplied        = "Previous values applied"
	StatusNothingToApply = "No previous values to apply"

	statusInvalidJSON = "Invalid JSON: "
	statusSaveFailed  = "Failed to save values: "
)

// Phase is the step a load or save is at
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseValidating
	PhaseCheckingExisting
	PhaseAwaitingConfirmation
	PhaseUpserting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseValidating:
		return "validating"
	case PhaseCheckingExisting:
		return "checking-existing"
	case PhaseAwaitingConfirmation:
		return "awaiting-confirmation"
	case PhaseUpserting:
		return "upserting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// LoadResult is the outcome kind of LoadPrevious
type LoadResult int

const (
	LoadFound LoadResult = iota
	LoadNotFound
	LoadFailed
	LoadRejected
)

// LoadOutcome is returned by LoadPrevious
type LoadOutcome struct {
	Result LoadResult
	Values models.Series
}

// SaveResult is the outcome kind of Save and Confirm
type SaveResult int

const (
	SaveSaved SaveResult = iota
	SaveAwaitingConfirmation
	SaveCancelled
	SaveFailed
	SaveRejected
)

// SaveOutcome is returned by Save and Confirm. Previous carries the stored
// values when the save is waiting for confirmation.
type SaveOutcome struct {
	Result   SaveResult
	Values   models.Series
	Previous models.Series
}

// State is a point-in-time copy of the session
type State struct {
	Email         string
	Selected      models.ChartID
	Series        map[models.ChartID]models.Series
	Buffer        string
	Previous      models.Series
	PreviousChart models.ChartID
	Busy          bool
	Phase         Phase
	Status        string
}

type pendingSave struct {
	email    string
	chart    models.ChartID
	values   models.Series
	previous models.Series
}

type syncKey struct {
	chart   models.ChartID
	version int
}

// Workflow is the per-session dashboard state plus the persistence flow
type Workflow struct {
	store   Store
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time

	mu            sync.Mutex
	email         string
	selected      models.ChartID
	series        map[models.ChartID]models.Series
	versions      map[models.ChartID]int
	buffer        string
	synced        syncKey
	hasSynced     bool
	previous      models.Series
	previousChart models.ChartID
	busy          bool
	phase         Phase
	status        string
	pending       *pendingSave
}

// Option configures a Workflow
type Option func(*Workflow)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// WithTimeout bounds every store call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(w *Workflow) {
		w.timeout = d
	}
}

// WithEmail pre-fills the email input
func WithEmail(email string) Option {
	return func(w *Workflow) {
		w.email = models.NormalizeEmail(email)
	}
}

// WithSelected sets the initially selected chart
func WithSelected(chart models.ChartID) Option {
	return func(w *Workflow) {
		if chart.Valid() {
			w.selected = chart
		}
	}
}

// New creates a workflow over store with every chart at its default series
func New(store Store, opts ...Option) *Workflow {
	w := &Workflow{
		store:    store,
		logger:   zap.NewNop(),
		now:      time.Now,
		selected: models.VoiceQuality,
		series:   make(map[models.ChartID]models.Series),
		versions: make(map[models.ChartID]int),
	}
	for _, id := range models.ChartIDs {
		w.series[id] = models.DefaultSeries(id)
	}
	for _, opt := range opts {
		opt(w)
	}
	w.resync()
	return w
}

// resync re-derives the edit buffer from the selected series whenever the
// selection or that series has changed since the last sync. It runs after
// every state transition.
func (w *Workflow) resync() {
	key := syncKey{chart: w.selected, version: w.versions[w.selected]}
	if w.hasSynced && w.synced == key {
		return
	}
	text, err := w.series[w.selected].MarshalIndent()
	if err != nil {
		w.logger.Warn("Serializing series for edit buffer", zap.String("chart", w.selected.String()), zap.Error(err))
		return
	}
	w.buffer = text
	w.synced = key
	w.hasSynced = true
}

// replaceSeries swaps the in-memory series for chart; callers hold mu
func (w *Workflow) replaceSeries(chart models.ChartID, values models.Series) {
	w.series[chart] = values.Clone()
	w.versions[chart]++
}

// finish returns to idle and clears busy; callers hold mu
func (w *Workflow) finish() {
	w.busy = false
	w.phase = PhaseIdle
	w.pending = nil
	w.resync()
}

func (w *Workflow) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.timeout > 0 {
		return context.WithTimeout(ctx, w.timeout)
	}
	return context.WithCancel(ctx)
}

func (w *Workflow) lookup(ctx context.Context, email string, chart models.ChartID) (*models.SavedEntry, error) {
	ctx, cancel := w.storeContext(ctx)
	defer cancel()

	entry, err := w.store.Get(ctx, email, chart)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return entry, nil
}

// SetEmail records the email input
func (w *Workflow) SetEmail(email string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.email = models.NormalizeEmail(email)
}

// Email returns the current email input
func (w *Workflow) Email() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.email
}

// EmailValid reports whether the current email input passes validation
func (w *Workflow) EmailValid() bool {
	return models.ValidEmail(w.Email())
}

// Select changes the active chart; the buffer follows the new selection
func (w *Workflow) Select(chart models.ChartID) {
	if !chart.Valid() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = chart
	w.resync()
}

// Selected returns the active chart
func (w *Workflow) Selected() models.ChartID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}

// EditBuffer replaces the edit buffer text. The structured series is not
// touched until a save validates the text.
func (w *Workflow) EditBuffer(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffer = text
}

// Buffer returns the edit buffer text
func (w *Workflow) Buffer() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer
}

// Reset restores the default series for chart and drops the displayed
// previous values. The store is not touched.
func (w *Workflow) Reset(chart models.ChartID) {
	if !chart.Valid() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.replaceSeries(chart, models.DefaultSeries(chart))
	w.previous = nil
	w.previousChart = ""
	w.status = StatusReset
	w.resync()
}

// ApplyPrevious replaces the selected chart's series with the loaded previous
// values, when they belong to that chart.
func (w *Workflow) ApplyPrevious() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy || w.previous == nil || w.previousChart != w.selected {
		w.status = StatusNothingToApply
		return false
	}
	w.replaceSeries(w.selected, w.previous)
	w.status = StatusApplied
	w.resync()
	return true
}

// Snapshot returns a copy of the session state
func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	series := make(map[models.ChartID]models.Series, len(w.series))
	for id, s := range w.series {
		series[id] = s.Clone()
	}
	return State{
		Email:         w.email,
		Selected:      w.selected,
		Series:        series,
		Buffer:        w.buffer,
		Previous:      w.previous.Clone(),
		PreviousChart: w.previousChart,
		Busy:          w.busy,
		Phase:         w.phase,
		Status:        w.status,
	}
}

// LoadPrevious looks up the saved values for (email, chart) and shows them
// as the previous-values snapshot. A missing entry is not an error.
func (w *Workflow) LoadPrevious(ctx context.Context, email string, chart models.ChartID) (LoadOutcome, error) {
	email = models.NormalizeEmail(email)

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return LoadOutcome{Result: LoadRejected}, ErrBusy
	}
	if !models.ValidEmail(email) {
		w.status = StatusInvalidEmail
		w.mu.Unlock()
		return LoadOutcome{Result: LoadRejected}, ErrInvalidEmail
	}
	if !chart.Valid() {
		w.mu.Unlock()
		return LoadOutcome{Result: LoadRejected}, fmt.Errorf("%w: %q", ErrUnknownChart, chart)
	}
	w.busy = true
	w.phase = PhaseLoading
	w.status = ""
	w.mu.Unlock()

	entry, err := w.lookup(ctx, email, chart)

	w.mu.Lock()
	defer w.mu.Unlock()
	defer w.finish()

	if err != nil {
		w.logger.Warn("Fetching previous values", zap.String("email", email), zap.String("chart", chart.String()), zap.Error(err))
		w.previous = nil
		w.previousChart = ""
		w.status = StatusFetchFailed
		return LoadOutcome{Result: LoadFailed}, err
	}

	if entry == nil {
		w.logger.Debug("No previous values", zap.String("email", email), zap.String("chart", chart.String()))
		w.previous = nil
		w.previousChart = ""
		w.status = StatusNotFound
		return LoadOutcome{Result: LoadNotFound}, nil
	}

	w.logger.Info("Loaded previous values", zap.String("email", email), zap.String("chart", chart.String()), zap.Int("points", len(entry.Values)))
	w.previous = entry.Values.Clone()
	w.previousChart = chart
	w.status = StatusLoaded
	return LoadOutcome{Result: LoadFound, Values: entry.Values.Clone()}, nil
}

// Save validates text and writes it for (email, chart). When an entry already
// exists the save stops at PhaseAwaitingConfirmation and returns
// SaveAwaitingConfirmation; call Confirm to finish it.
func (w *Workflow) Save(ctx context.Context, email string, chart models.ChartID, text string) (SaveOutcome, error) {
	email = models.NormalizeEmail(email)

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return SaveOutcome{Result: SaveRejected}, ErrBusy
	}
	if !models.ValidEmail(email) {
		w.status = StatusInvalidEmail
		w.mu.Unlock()
		return SaveOutcome{Result: SaveRejected}, ErrInvalidEmail
	}
	if !chart.Valid() {
		w.mu.Unlock()
		return SaveOutcome{Result: SaveRejected}, fmt.Errorf("%w: %q", ErrUnknownChart, chart)
	}

	w.phase = PhaseValidating
	values, err := models.ParseSeries(text)
	if err != nil {
		w.phase = PhaseIdle
		w.status = statusInvalidJSON + err.Error()
		w.mu.Unlock()
		return SaveOutcome{Result: SaveRejected}, err
	}

	w.busy = true
	w.phase = PhaseCheckingExisting
	w.status = StatusChecking
	w.mu.Unlock()

	entry, err := w.lookup(ctx, email, chart)
	if err != nil {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.logger.Warn("Checking existing values", zap.String("email", email), zap.String("chart", chart.String()), zap.Error(err))
		w.status = StatusCheckFailed
		w.finish()
		return SaveOutcome{Result: SaveFailed}, err
	}

	p := &pendingSave{email: email, chart: chart, values: values}
	if entry != nil {
		p.previous = entry.Values.Clone()

		w.mu.Lock()
		w.pending = p
		w.phase = PhaseAwaitingConfirmation
		w.status = StatusConfirm
		w.mu.Unlock()

		w.logger.Debug("Awaiting overwrite confirmation", zap.String("email", email), zap.String("chart", chart.String()))
		return SaveOutcome{Result: SaveAwaitingConfirmation, Values: values.Clone(), Previous: p.previous.Clone()}, nil
	}

	return w.upsert(ctx, p)
}

// Confirm resumes a save waiting for confirmation. Declining leaves the store
// and the in-memory series unchanged.
func (w *Workflow) Confirm(ctx context.Context, overwrite bool) (SaveOutcome, error) {
	w.mu.Lock()
	p := w.pending
	if p == nil || w.phase != PhaseAwaitingConfirmation {
		w.mu.Unlock()
		return SaveOutcome{Result: SaveRejected}, ErrNoPendingSave
	}

	if !overwrite {
		defer w.mu.Unlock()
		w.status = StatusCancelled
		w.finish()
		w.logger.Info("Overwrite declined", zap.String("email", p.email), zap.String("chart", p.chart.String()))
		return SaveOutcome{Result: SaveCancelled, Previous: p.previous}, nil
	}

	w.pending = nil
	w.mu.Unlock()
	return w.upsert(ctx, p)
}

// SaveAndConfirm runs Save and, when an entry exists, asks decide whether to
// overwrite it.
func (w *Workflow) SaveAndConfirm(ctx context.Context, email string, chart models.ChartID, text string, decide func(previous models.Series) bool) (SaveOutcome, error) {
	out, err := w.Save(ctx, email, chart, text)
	if err != nil || out.Result != SaveAwaitingConfirmation {
		return out, err
	}
	return w.Confirm(ctx, decide(out.Previous))
}

func (w *Workflow) upsert(ctx context.Context, p *pendingSave) (SaveOutcome, error) {
	w.mu.Lock()
	w.phase = PhaseUpserting
	w.mu.Unlock()

	entry := &models.SavedEntry{
		Email:     p.email,
		ChartID:   p.chart,
		Values:    p.values.Clone(),
		UpdatedAt: w.now().UTC(),
	}

	sctx, cancel := w.storeContext(ctx)
	err := w.store.Upsert(sctx, entry)
	cancel()

	w.mu.Lock()
	defer w.mu.Unlock()
	defer w.finish()

	if err != nil {
		w.logger.Error("Saving values", zap.String("email", p.email), zap.String("chart", p.chart.String()), zap.Error(err))
		w.status = statusSaveFailed + err.Error()
		return SaveOutcome{Result: SaveFailed, Previous: p.previous}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	w.logger.Info("Saved values", zap.String("email", p.email), zap.String("chart", p.chart.String()), zap.Int("points", len(p.values)))
	w.replaceSeries(p.chart, p.values)
	w.previous = p.values.Clone()
	w.previousChart = p.chart
	w.status = StatusSaved
	return SaveOutcome{Result: SaveSaved, Values: p.values.Clone(), Previous: p.previous}, nil
}
