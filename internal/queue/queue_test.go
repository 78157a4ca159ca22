package queue_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"frame/internal/localstore"
	"frame/internal/queue"
	"frame/internal/rows"
	"frame/internal/services/backend"
)

type fakeBackend struct {
	mu         sync.Mutex
	active     int
	maxActive  int
	calls      []string
	uploadErr  map[string]error
	processErr map[string]error
	keyTopics  string
	gcpURL     string
	gate       chan struct{}
}

func (f *fakeBackend) enter(call string) {
	f.mu.Lock()
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBackend) leave() {
	f.mu.Lock()
	f.active--
	f.mu.Unlock()
}

func (f *fakeBackend) UploadYouTube(_ context.Context, req backend.UploadRequest) (*backend.UploadResponse, error) {
	f.enter("upload " + req.URL)
	defer f.leave()
	if f.gate != nil {
		<-f.gate
	}
	if err := f.uploadErr[req.URL]; err != nil {
		return nil, err
	}
	gcp := f.gcpURL
	if gcp != "" {
		gcp += "/" + req.URL
	}
	return &backend.UploadResponse{Success: true, GCPURL: gcp}, nil
}

func (f *fakeBackend) ProcessURL(_ context.Context, req backend.ProcessRequest) (*backend.Video, error) {
	f.enter("process " + req.URL)
	defer f.leave()
	for url, err := range f.processErr {
		if strings.HasSuffix(req.URL, url) {
			return nil, err
		}
	}
	return &backend.Video{ID: "v", KeyTopics: f.keyTopics, FrameInterval: req.FrameInterval}, nil
}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type memoryRecorder struct {
	mu      sync.Mutex
	records []localstore.JobRecord
}

func (m *memoryRecorder) RecordJob(_ context.Context, rec localstore.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

type countingNotifier struct {
	mu       sync.Mutex
	failures []string
	drains   [][2]int
}

func (c *countingNotifier) NotifyJobFailed(_ context.Context, _, url, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, url)
	return nil
}

func (c *countingNotifier) NotifyQueueDrained(_ context.Context, processed, failed int, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drains = append(c.drains, [2]int{processed, failed})
	return nil
}

func statusLog(store *rows.Store) (func() map[string][]string, func()) {
	var mu sync.Mutex
	seen := map[string][]string{}
	cancel := store.Observe(func(evt rows.Event) {
		if evt.Type != rows.EventUpdated {
			return
		}
		if !slices.Contains(evt.Fields, rows.FieldStatus) {
			return
		}
		mu.Lock()
		seen[evt.RowID] = append(seen[evt.RowID], evt.Row.Status)
		mu.Unlock()
	})
	return func() map[string][]string {
		mu.Lock()
		defer mu.Unlock()
		out := make(map[string][]string, len(seen))
		for k, v := range seen {
			out[k] = append([]string(nil), v...)
		}
		return out
	}, cancel
}

func waitDrained(t *testing.T, q *queue.Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestQueueProcessesJobsInOrderOneAtATime(t *testing.T) {
	store := rows.NewStore()
	a := store.Append(rows.New("https://youtu.be/aaaaaaaaaaa"))
	b := store.Append(rows.New("https://youtu.be/bbbbbbbbbbb"))
	statuses, stop := statusLog(store)
	defer stop()

	api := &fakeBackend{gcpURL: "gs://bucket", keyTopics: "Backend topics"}
	recorder := &memoryRecorder{}
	notifier := &countingNotifier{}
	q := queue.New(store, api, queue.Config{FrameInterval: 5}, queue.WithRecorder(recorder), queue.WithNotifier(notifier))

	q.Enqueue(queue.Job{URL: a.VideoURL, RowID: a.ID, Annotation: "(captions)"})
	q.Enqueue(queue.Job{URL: b.VideoURL, RowID: b.ID, Annotation: "(no captions)"})
	waitDrained(t, q)

	want := []string{
		"upload https://youtu.be/aaaaaaaaaaa",
		"process gs://bucket/https://youtu.be/aaaaaaaaaaa",
		"upload https://youtu.be/bbbbbbbbbbb",
		"process gs://bucket/https://youtu.be/bbbbbbbbbbb",
	}
	if got := api.callLog(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected call order:\n got %v\nwant %v", got, want)
	}
	if api.maxActive != 1 {
		t.Fatalf("expected at most one in-flight call, saw %d", api.maxActive)
	}

	got := statuses()
	wantA := []string{"Uploading...", "Processing...", "Completed (captions)"}
	if strings.Join(got[a.ID], "|") != strings.Join(wantA, "|") {
		t.Fatalf("unexpected status sequence for a: %v", got[a.ID])
	}
	row, _ := store.Get(b.ID)
	if row.Status != "Completed (no captions)" || row.KeyTopics != "Backend topics" {
		t.Fatalf("unexpected terminal row: %+v", row)
	}

	if len(recorder.records) != 2 || recorder.records[0].Outcome != localstore.OutcomeCompleted || recorder.records[0].KeyTopics != "Backend topics" {
		t.Fatalf("unexpected records: %+v", recorder.records)
	}
	if len(notifier.drains) != 1 || notifier.drains[0] != [2]int{2, 0} {
		t.Fatalf("unexpected drain notifications: %+v", notifier.drains)
	}
	snap := q.Snapshot()
	if snap.Busy || len(snap.Pending) != 0 || snap.Processed != 2 || snap.Failed != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestQueueFailureDoesNotBlockLaterJobs(t *testing.T) {
	store := rows.NewStore()
	bad := store.Append(rows.New("https://youtu.be/badbadbadba"))
	good := store.Append(rows.New("https://youtu.be/goodgoodgoo"))
	original := bad.KeyTopics

	api := &fakeBackend{uploadErr: map[string]error{
		bad.VideoURL: &backend.APIError{StatusCode: 422, Detail: "field required; value is not a valid url; and some more text"},
	}}
	recorder := &memoryRecorder{}
	notifier := &countingNotifier{}
	q := queue.New(store, api, queue.Config{}, queue.WithRecorder(recorder), queue.WithNotifier(notifier))

	q.Enqueue(queue.Job{URL: bad.VideoURL, RowID: bad.ID})
	q.Enqueue(queue.Job{URL: good.VideoURL, RowID: good.ID})
	waitDrained(t, q)

	row, _ := store.Get(bad.ID)
	want := "Failed: field required; value is not a valid url; and some..."
	if row.Status != want {
		t.Fatalf("unexpected failure status:\n got %q\nwant %q", row.Status, want)
	}
	if row.KeyTopics != original {
		t.Fatalf("failure must not touch key topics, got %q", row.KeyTopics)
	}
	if row, _ := store.Get(good.ID); row.Status != "Completed" {
		t.Fatalf("expected later job to complete, got %q", row.Status)
	}
	if len(notifier.failures) != 1 || notifier.failures[0] != bad.VideoURL {
		t.Fatalf("unexpected failure notifications: %v", notifier.failures)
	}
	if notifier.drains[0] != [2]int{1, 1} {
		t.Fatalf("unexpected drain counts: %v", notifier.drains[0])
	}
	if recorder.records[0].Outcome != localstore.OutcomeFailed || recorder.records[0].Message == "" {
		t.Fatalf("expected failed record, got %+v", recorder.records[0])
	}
}

func TestQueueProcessFailureAndEmptyKeyTopics(t *testing.T) {
	store := rows.NewStore()
	first := rows.New("https://youtu.be/ppppppppppp")
	first.KeyTopics = "From description."
	first = store.Append(first)
	second := rows.New("https://youtu.be/qqqqqqqqqqq")
	second.KeyTopics = "Keep me."
	second = store.Append(second)

	api := &fakeBackend{processErr: map[string]error{first.VideoURL: errors.New("HTTP 500")}}
	q := queue.New(store, api, queue.Config{})
	q.Enqueue(queue.Job{URL: first.VideoURL, RowID: first.ID})
	q.Enqueue(queue.Job{URL: second.VideoURL, RowID: second.ID})
	waitDrained(t, q)

	if row, _ := store.Get(first.ID); row.Status != "Failed: HTTP 500" {
		t.Fatalf("unexpected status %q", row.Status)
	}
	row, _ := store.Get(second.ID)
	if row.Status != "Completed" || row.KeyTopics != "Keep me." {
		t.Fatalf("empty backend key topics must not overwrite, got %+v", row)
	}
	calls := api.callLog()
	if calls[len(calls)-1] != "process "+second.VideoURL {
		t.Fatalf("expected plain url when no storage url returned, got %v", calls)
	}
}

func TestQueueHeadStaysUntilTerminal(t *testing.T) {
	store := rows.NewStore()
	r := store.Append(rows.New("https://youtu.be/hhhhhhhhhhh"))
	api := &fakeBackend{gate: make(chan struct{})}
	q := queue.New(store, api, queue.Config{})

	job := q.Enqueue(queue.Job{URL: r.VideoURL, RowID: r.ID})
	if job.ID == "" || job.EnqueuedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", job)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(api.callLog()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("worker never started")
		}
		time.Sleep(time.Millisecond)
	}
	snap := q.Snapshot()
	if !snap.Busy || len(snap.Pending) != 1 || snap.Pending[0].ID != job.ID {
		t.Fatalf("expected in-flight job at head, got %+v", snap)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := q.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected Wait to time out while busy, got %v", err)
	}

	close(api.gate)
	waitDrained(t, q)
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
}

func TestQueueRestartsAfterDrain(t *testing.T) {
	store := rows.NewStore()
	api := &fakeBackend{}
	q := queue.New(store, api, queue.Config{})
	if err := q.Wait(context.Background()); err != nil {
		t.Fatalf("Wait on idle queue: %v", err)
	}
	for i := 0; i < 3; i++ {
		r := store.Append(rows.New("https://youtu.be/rrrrrrrrrrr"))
		q.Enqueue(queue.Job{URL: r.VideoURL, RowID: r.ID})
		waitDrained(t, q)
	}
	if q.Snapshot().Processed != 3 {
		t.Fatalf("expected three processed jobs, got %+v", q.Snapshot())
	}
}

func TestQueueIgnoresUnknownRows(t *testing.T) {
	store := rows.NewStore()
	q := queue.New(store, &fakeBackend{}, queue.Config{})
	q.Enqueue(queue.Job{URL: "https://youtu.be/zzzzzzzzzzz", RowID: "gone"})
	waitDrained(t, q)
	if store.Len() != 0 {
		t.Fatalf("expected no rows created, got %d", store.Len())
	}
}
