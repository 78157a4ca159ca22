package rows

import (
	"sync"

	"frame/internal/videoinfo"
)

// EventType names a row change.
type EventType string

const (
	EventAppended EventType = "row.appended"
	EventUpdated  EventType = "row.updated"
	EventHidden   EventType = "field.hidden"
	EventShown    EventType = "field.shown"
	EventResized  EventType = "row.resized"
	EventLoading  EventType = "row.loading"
)

// Event describes one change. Row is a copy taken after the change.
type Event struct {
	Type   EventType `json:"type"`
	RowID  string    `json:"rowId"`
	Fields []Field   `json:"fields,omitempty"`
	Row    Row       `json:"row"`
}

// Store is the ordered row collection.
type Store struct {
	mu      sync.Mutex
	rows    []Row
	index   map[string]int
	pending []Event

	// emitMu serializes delivery so observers see events in mutation order.
	emitMu sync.Mutex

	obsMu     sync.Mutex
	observers map[int]func(Event)
	nextObs   int
}

// NewStore returns a store seeded with initial rows.
func NewStore(initial ...Row) *Store {
	s := &Store{index: make(map[string]int), observers: make(map[int]func(Event))}
	for _, row := range initial {
		s.appendLocked(row)
	}
	return s
}

// Observe registers fn for change events and returns a function that removes it.
func (s *Store) Observe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

// unlockAndPublish queues evt, releases s.mu, and delivers queued events.
// It must be called with s.mu held.
func (s *Store) unlockAndPublish(evt Event) {
	s.pending = append(s.pending, evt)
	s.mu.Unlock()
	s.flush()
}

func (s *Store) flush() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	for {
		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()
		if len(batch) == 0 {
			return
		}

		s.obsMu.Lock()
		observers := make([]func(Event), 0, len(s.observers))
		for _, fn := range s.observers {
			observers = append(observers, fn)
		}
		s.obsMu.Unlock()

		for _, evt := range batch {
			for _, fn := range observers {
				fn(evt)
			}
		}
	}
}

func (s *Store) appendLocked(row Row) Row {
	if row.ID == "" {
		row.ID = NewRowID()
	}
	if row.Height == 0 {
		row.Height = DefaultHeight
	}
	row = row.clone()
	s.index[row.ID] = len(s.rows)
	s.rows = append(s.rows, row)
	return row.clone()
}

// Append adds row at the end of the table and returns the stored copy.
func (s *Store) Append(row Row) Row {
	s.mu.Lock()
	stored := s.appendLocked(row)
	s.unlockAndPublish(Event{Type: EventAppended, RowID: stored.ID, Row: stored})
	return stored
}

// AppendBelow appends row only while the table holds fewer than limit rows.
// The check and the append happen under one lock.
func (s *Store) AppendBelow(limit int, row Row) (Row, bool) {
	s.mu.Lock()
	if len(s.rows) >= limit {
		s.mu.Unlock()
		return Row{}, false
	}
	stored := s.appendLocked(row)
	s.unlockAndPublish(Event{Type: EventAppended, RowID: stored.ID, Row: stored})
	return stored, true
}

// AddBlank appends an empty row for manual entry. It is not subject to the cap.
func (s *Store) AddBlank() Row {
	return s.Append(New(""))
}

// Update merges patch into the row with id. Unknown ids and empty patches are
// ignored; the return value reports whether a row was changed.
func (s *Store) Update(id string, patch Patch) bool {
	if len(patch) == 0 {
		return false
	}
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	row := &s.rows[pos]
	fields := make([]Field, 0, len(patch))
	for _, f := range AllFields {
		value, present := patch[f]
		if !present {
			continue
		}
		if row.set(f, value) {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		s.mu.Unlock()
		return false
	}
	s.unlockAndPublish(Event{Type: EventUpdated, RowID: id, Fields: fields, Row: row.clone()})
	return true
}

// ClaimVideo writes url into row id and, in the same critical section,
// reports another row already holding the same video. Concurrent claims of
// one video therefore let exactly the first claimant through.
func (s *Store) ClaimVideo(id, url string) (string, bool) {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return "", false
	}
	other, dup := "", false
	if videoID, ok := videoinfo.ExtractID(url); ok {
		other, dup = s.rowWithVideoLocked(videoID, id)
	}
	row := &s.rows[pos]
	if !row.set(FieldVideoURL, url) {
		s.mu.Unlock()
		return other, dup
	}
	s.unlockAndPublish(Event{Type: EventUpdated, RowID: id, Fields: []Field{FieldVideoURL}, Row: row.clone()})
	return other, dup
}

// SetHidden marks or unmarks field as hidden for presentation fades.
func (s *Store) SetHidden(id string, field Field, hidden bool) bool {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	row := &s.rows[pos]
	evtType := EventShown
	if hidden {
		if row.Hidden == nil {
			row.Hidden = make(map[Field]bool)
		}
		row.Hidden[field] = true
		evtType = EventHidden
	} else {
		delete(row.Hidden, field)
		if len(row.Hidden) == 0 {
			row.Hidden = nil
		}
	}
	s.unlockAndPublish(Event{Type: evtType, RowID: id, Fields: []Field{field}, Row: row.clone()})
	return true
}

// SetHeight stores a row height. Bounds are enforced by the resize controller.
func (s *Store) SetHeight(id string, height int) bool {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok || s.rows[pos].Height == height {
		s.mu.Unlock()
		return ok
	}
	s.rows[pos].Height = height
	s.unlockAndPublish(Event{Type: EventResized, RowID: id, Row: s.rows[pos].clone()})
	return true
}

// SetLoading flags a row whose primary lookup is in flight.
func (s *Store) SetLoading(id string, loading bool) bool {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok || s.rows[pos].Loading == loading {
		s.mu.Unlock()
		return ok
	}
	s.rows[pos].Loading = loading
	s.unlockAndPublish(Event{Type: EventLoading, RowID: id, Row: s.rows[pos].clone()})
	return true
}

// TryStartLoading sets the loading flag if it is not already set. It returns
// false for unknown rows and rows that are already loading.
func (s *Store) TryStartLoading(id string) bool {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok || s.rows[pos].Loading {
		s.mu.Unlock()
		return false
	}
	s.rows[pos].Loading = true
	s.unlockAndPublish(Event{Type: EventLoading, RowID: id, Row: s.rows[pos].clone()})
	return true
}

// Get returns a copy of the row with id.
func (s *Store) Get(id string) (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[id]
	if !ok {
		return Row{}, false
	}
	return s.rows[pos].clone(), true
}

// Snapshot returns copies of every row in table order.
func (s *Store) Snapshot() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Row, len(s.rows))
	for i, row := range s.rows {
		out[i] = row.clone()
	}
	return out
}

// Len returns the number of rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// VideoIDs returns the set of video IDs referenced by any row's URL.
func (s *Store) VideoIDs() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[string]struct{}, len(s.rows))
	for _, row := range s.rows {
		if id, ok := videoinfo.ExtractID(row.VideoURL); ok {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// RowWithVideo returns the ID of the first row other than exceptID whose URL
// references videoID.
func (s *Store) RowWithVideo(videoID, exceptID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowWithVideoLocked(videoID, exceptID)
}

func (s *Store) rowWithVideoLocked(videoID, exceptID string) (string, bool) {
	for _, row := range s.rows {
		if row.ID == exceptID {
			continue
		}
		if id, ok := videoinfo.ExtractID(row.VideoURL); ok && id == videoID {
			return row.ID, true
		}
	}
	return "", false
}
