package intake

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pdfbinder/internal/common"
	"pdfbinder/internal/document"
)

// Progress checkpoints for the background step. The encoder's own 0-100 is
// mapped into the window between start and done.
const (
	progressCompressingStart = 20
	progressCompressingEnd   = 80
	progressDone             = 100
)

// Orchestrator owns the ordered collection of pending files and drives each
// through compression and validation before handing the final list to the
// assembler.
//
// The entry collection is an immutable snapshot: every mutation replaces the
// whole slice with a fresh one where exactly one entry is swapped, so
// concurrent updates to different entries are safe by construction.
type Orchestrator struct {
	logger     *slog.Logger
	compressor ImageCompressor
	validator  DocumentValidator
	assembler  DocumentAssembler
	recorder   MergeRecorder

	budget int64
	sem    chan struct{}

	mu       sync.Mutex
	entries  []ManagedEntry
	watchers []func([]ManagedEntry)

	// Snapshot delivery runs through a FIFO queue drained outside the
	// lock: observers never see an older snapshot after a newer one, and
	// a subscriber may call back into the orchestrator from its callback.
	pending    []notification
	delivering bool

	wg sync.WaitGroup
}

type notification struct {
	snapshot []ManagedEntry
	watchers []func([]ManagedEntry)
}

// NewOrchestrator creates a new orchestrator instance
func NewOrchestrator(logger *slog.Logger, compressor ImageCompressor, validator DocumentValidator, assembler DocumentAssembler) *Orchestrator {
	return &Orchestrator{
		logger:     logger,
		compressor: compressor,
		validator:  validator,
		assembler:  assembler,
		budget:     common.SizeBudgetBytes,
		sem:        make(chan struct{}, common.MaxConcurrencyLimit),
	}
}

// SetSizeBudget overrides the post-compression total allowed per merge.
func (o *Orchestrator) SetSizeBudget(budget int64) {
	o.budget = budget
}

// SetRecorder wires a session stats recorder. A nil recorder is allowed.
func (o *Orchestrator) SetRecorder(recorder MergeRecorder) {
	o.recorder = recorder
}

// Subscribe registers a callback invoked with a fresh snapshot after every
// mutation of the entry collection.
func (o *Orchestrator) Subscribe(fn func([]ManagedEntry)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.watchers = append(o.watchers, fn)
}

// Snapshot returns a copy of the current entry collection, in user order.
func (o *Orchestrator) Snapshot() []ManagedEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	snapshot := make([]ManagedEntry, len(o.entries))
	copy(snapshot, o.entries)
	return snapshot
}

// Entry returns the entry with the given id, if present.
func (o *Orchestrator) Entry(id string) (ManagedEntry, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.entries {
		if e.ID == id {
			return e, true
		}
	}
	return ManagedEntry{}, false
}

// AddFiles appends new entries and starts background recompression for each.
// A batch containing a file of an unsupported media type is rejected as a
// whole before any entry is created. The caller does not await the
// background work; it is observable through the entries' evolving state and
// progress. Returns the assigned ids.
func (o *Orchestrator) AddFiles(ctx context.Context, files []common.File) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	for _, file := range files {
		if !common.IsSupportedMediaType(common.DetectMediaType(file.Name, file.MediaType)) {
			return nil, &document.UnsupportedTypeError{Name: file.Name, MediaType: file.MediaType}
		}
	}

	added := make([]ManagedEntry, 0, len(files))
	for _, file := range files {
		added = append(added, ManagedEntry{
			ID:         common.GenerateUUID(),
			SourceFile: file,
			State:      StateUnprocessed,
			Progress:   0,
		})
	}

	o.mu.Lock()
	next := make([]ManagedEntry, 0, len(o.entries)+len(added))
	next = append(next, o.entries...)
	next = append(next, added...)
	o.entries = next
	o.mu.Unlock()
	o.publish()

	ids := make([]string, 0, len(added))
	for _, entry := range added {
		ids = append(ids, entry.ID)
		o.wg.Add(1)
		go o.processEntry(ctx, entry.ID, entry.SourceFile)
	}

	return ids, nil
}

// RemoveFile deletes the entry unconditionally, regardless of state. An
// in-flight background task for the entry is not cancelled; its late
// completion is a no-op.
func (o *Orchestrator) RemoveFile(id string) {
	o.mu.Lock()
	next := make([]ManagedEntry, 0, len(o.entries))
	for _, e := range o.entries {
		if e.ID != id {
			next = append(next, e)
		}
	}
	o.entries = next
	o.mu.Unlock()
	o.publish()
}

// processEntry is the background step for one entry.
func (o *Orchestrator) processEntry(ctx context.Context, id string, file common.File) {
	defer o.wg.Done()

	o.sem <- struct{}{}
	defer func() { <-o.sem }()

	o.updateEntry(id, func(e *ManagedEntry) {
		e.State = StateCompressing
		e.Progress = progressCompressingStart
	})

	mediaType := common.DetectMediaType(file.Name, file.MediaType)
	if !common.IsImageMediaType(mediaType) {
		o.updateEntry(id, func(e *ManagedEntry) {
			e.State = StateCompressed
			e.Progress = progressDone
		})
		return
	}

	onProgress := func(percent int) {
		window := progressCompressingEnd - progressCompressingStart
		mapped := progressCompressingStart + percent*window/100
		o.updateEntry(id, func(e *ManagedEntry) {
			if mapped > e.Progress {
				e.Progress = mapped
			}
		})
	}

	outcome, err := o.compressor.Recompress(ctx, file, nil, onProgress)
	if err != nil {
		o.logger.Warn("background recompression failed", "file", file.Name, "error", err)
		o.updateEntry(id, func(e *ManagedEntry) {
			e.State = StateFailed
			e.FailureReason = err.Error()
			e.Progress = progressDone
		})
		return
	}

	o.updateEntry(id, func(e *ManagedEntry) {
		e.State = StateCompressed
		e.Progress = progressDone
		if outcome.CompressedSizeBytes < e.SourceFile.Size() {
			derived := outcome.ResultFile
			e.DerivedFile = &derived
		}
	})
}

// updateEntry swaps one entry in a fresh copy of the collection. An absent
// id means the entry was removed while its task was in flight; the update
// is dropped silently.
func (o *Orchestrator) updateEntry(id string, mutate func(*ManagedEntry)) {
	o.mu.Lock()
	idx := -1
	for i, e := range o.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		o.mu.Unlock()
		return
	}

	next := make([]ManagedEntry, len(o.entries))
	copy(next, o.entries)
	entry := next[idx]
	mutate(&entry)
	next[idx] = entry
	o.entries = next
	o.mu.Unlock()
	o.publish()
}

// publish hands a fresh snapshot to every subscriber. Snapshots are
// enqueued under the lock and delivered outside it; whichever goroutine
// finds the queue idle drains it, so a publish triggered from inside a
// callback is queued instead of deadlocking.
func (o *Orchestrator) publish() {
	o.mu.Lock()
	snapshot := make([]ManagedEntry, len(o.entries))
	copy(snapshot, o.entries)
	o.pending = append(o.pending, notification{snapshot: snapshot, watchers: o.watchers})
	if o.delivering {
		o.mu.Unlock()
		return
	}
	o.delivering = true
	for len(o.pending) > 0 {
		n := o.pending[0]
		o.pending = o.pending[1:]
		o.mu.Unlock()
		for _, fn := range n.watchers {
			fn(n.snapshot)
		}
		o.mu.Lock()
	}
	o.delivering = false
	o.mu.Unlock()
}

// AwaitSettled blocks until every entry has reached a terminal state or the
// context is done. Entries added after the call starts are included.
func (o *Orchestrator) AwaitSettled(ctx context.Context) error {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for {
		settled := true
		for _, e := range o.Snapshot() {
			if !e.State.Terminal() {
				settled = false
				break
			}
		}
		if settled {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// PrepareForMerge re-validates the given entries and enforces the size
// budget. It fails outright if any entry has not reached a terminal state,
// if any validated PDF is password protected (aggregating every protected
// file), if a PDF is invalid, or if the post-compression total exceeds the
// budget.
func (o *Orchestrator) PrepareForMerge(entries []ManagedEntry) (*MergePlan, error) {
	if len(entries) == 0 {
		return nil, ErrNoFiles
	}

	for _, e := range entries {
		if !e.State.Terminal() {
			return nil, fmt.Errorf("%w: %s", ErrCompressionInFlight, e.SourceFile.Name)
		}
	}

	plan := &MergePlan{
		Files:       make([]common.File, 0, len(entries)),
		Validations: make(map[string]document.ValidationOutcome),
	}

	var protected []string
	for _, e := range entries {
		selected := e.EffectiveFile()
		plan.Files = append(plan.Files, selected)

		if common.DetectMediaType(e.SourceFile.Name, e.SourceFile.MediaType) != common.MediaTypePDF {
			continue
		}

		outcome := o.validator.Validate(selected)
		plan.Validations[e.ID] = outcome

		if outcome.PasswordRequired {
			protected = append(protected, e.SourceFile.Name)
			continue
		}
		if !outcome.Valid {
			return nil, &ValidationError{File: e.SourceFile.Name, Reason: outcome.Error}
		}
	}

	if len(protected) > 0 {
		return nil, &PasswordProtectedError{Files: protected}
	}

	for _, f := range plan.Files {
		plan.TotalBytes += f.Size()
	}
	if plan.TotalBytes > o.budget {
		return nil, &BudgetExceededError{TotalBytes: plan.TotalBytes, LimitBytes: o.budget}
	}

	return plan, nil
}

// Merge extracts each entry's effective file, in entry order, and delegates
// to the assembler. Callers are expected to have run PrepareForMerge first;
// that precondition is not re-enforced here.
func (o *Orchestrator) Merge(entries []ManagedEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, ErrNoFiles
	}

	files := make([]common.File, 0, len(entries))
	var inputBytes int64
	for _, e := range entries {
		selected := e.EffectiveFile()
		files = append(files, selected)
		inputBytes += selected.Size()
	}

	out, err := o.assembler.Assemble(files)
	if err != nil {
		return nil, &MergeError{Err: err}
	}

	if o.recorder != nil {
		if err := o.recorder.RecordMerge(len(files), inputBytes, int64(len(out))); err != nil {
			o.logger.Warn("failed to record merge stats", "error", err)
		}
	}

	return out, nil
}

// Wait blocks until all background tasks spawned so far have finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
