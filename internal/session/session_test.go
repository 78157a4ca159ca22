package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"frame/internal/gateway"
	"frame/internal/localstore"
	"frame/internal/rows"
	"frame/internal/services"
	"frame/internal/services/backend"
	"frame/internal/session"
	"frame/internal/videoinfo"
)

type stubGateway struct {
	mu       sync.Mutex
	known    map[string]gateway.Metadata
	primErr  error
	related  []string
	summary  string
	block    chan struct{}
	primCall int
}

func (g *stubGateway) FetchPrimaryMetadata(_ context.Context, id string) (gateway.Metadata, error) {
	g.mu.Lock()
	g.primCall++
	block := g.block
	g.mu.Unlock()
	if block != nil {
		<-block
	}
	if g.primErr != nil {
		return gateway.Metadata{}, g.primErr
	}
	meta, ok := g.known[id]
	if !ok {
		return gateway.Metadata{}, services.Wrap(services.ErrNotFound, "gateway", "videos", "video not found", nil)
	}
	return meta, nil
}

func (g *stubGateway) FetchBatchMetadata(_ context.Context, ids []string) ([]gateway.Metadata, error) {
	var out []gateway.Metadata
	for _, id := range ids {
		if meta, ok := g.known[id]; ok {
			out = append(out, meta)
		}
	}
	return out, nil
}

func (g *stubGateway) FetchRelatedURLs(_ context.Context, _, _ string, exclude map[string]struct{}) ([]string, error) {
	var out []string
	for _, u := range g.related {
		id, _ := videoinfo.ExtractID(u)
		if _, skip := exclude[id]; !skip {
			out = append(out, u)
		}
	}
	return out, nil
}

func (g *stubGateway) FetchTopicSummary(context.Context, string, string) (string, bool) {
	return g.summary, g.summary != ""
}

type recordingBackend struct {
	mu      sync.Mutex
	uploads []string
}

func (b *recordingBackend) UploadYouTube(_ context.Context, req backend.UploadRequest) (*backend.UploadResponse, error) {
	b.mu.Lock()
	b.uploads = append(b.uploads, req.URL)
	b.mu.Unlock()
	return &backend.UploadResponse{Success: true}, nil
}

func (b *recordingBackend) ProcessURL(context.Context, backend.ProcessRequest) (*backend.Video, error) {
	return &backend.Video{}, nil
}

type historyRecorder struct {
	mu      sync.Mutex
	records []localstore.JobRecord
}

func (h *historyRecorder) RecordJob(_ context.Context, rec localstore.JobRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	return nil
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func testConfig() session.Config {
	return session.Config{
		Cap:            5,
		MaxSuggestions: 4,
		RowHeightMin:   40,
		RowHeightMax:   300,
		ColumnWidthMin: 10,
		ColumnWidthMax: 50,
	}
}

func newSession(t *testing.T, gw *stubGateway, api *recordingBackend, rec *historyRecorder) *session.Session {
	t.Helper()
	deps := session.Deps{Gateway: gw, Backend: api, Sleep: noSleep}
	if rec != nil {
		deps.Recorder = rec
	}
	s, err := session.New(context.Background(), testConfig(), deps)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return s
}

func waitQuiet(t *testing.T, s *session.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func firstRowID(s *session.Session) string {
	return s.Rows().Snapshot()[0].ID
}

func TestSubmitEndToEnd(t *testing.T) {
	gw := &stubGateway{known: map[string]gateway.Metadata{
		"abc12345678": {VideoID: "abc12345678", Title: "Demo", Channel: "Chan", DurationISO: "PT3M30S", HasCaptions: false},
	}}
	api := &recordingBackend{}
	rec := &historyRecorder{}
	s := newSession(t, gw, api, rec)
	rowID := firstRowID(s)

	res, err := s.Submit(context.Background(), rowID, "https://youtube.com/watch?v=abc12345678")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Err != nil || res.VideoID != "abc12345678" || res.JobID == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	waitQuiet(t, s)

	row, _ := s.Rows().Get(rowID)
	if row.Duration != "3:30" {
		t.Fatalf("expected duration 3:30, got %q", row.Duration)
	}
	if !strings.Contains(row.Status, "no captions") {
		t.Fatalf("expected no-captions indicator, got %q", row.Status)
	}
	if row.Loading {
		t.Fatal("expected loading cleared")
	}
	if len(api.uploads) != 1 || len(rec.records) != 1 || rec.records[0].RowID != rowID {
		t.Fatalf("expected exactly one job for the row, uploads=%v records=%+v", api.uploads, rec.records)
	}
	if s.Rows().Len() != 1 {
		t.Fatalf("expected no suggestions, got %d rows", s.Rows().Len())
	}
}

func TestSubmitWritesLookupFailuresIntoRow(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		primErr error
		marker  error
		message string
	}{
		{name: "invalid url", url: "https://vimeo.com/1234", marker: services.ErrInvalidInput, message: "Invalid YouTube URL"},
		{name: "not found", url: "https://youtu.be/missing0000", marker: services.ErrNotFound, message: "Video not found"},
		{
			name:    "transport",
			url:     "https://youtu.be/anything000",
			primErr: services.Wrap(services.ErrTransport, "gateway", "videos", "metadata lookup failed", errors.New("403")),
			marker:  services.ErrTransport,
			message: "Failed to fetch video data from YouTube API",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &recordingBackend{}
			s := newSession(t, &stubGateway{primErr: tt.primErr}, api, nil)
			rowID := firstRowID(s)

			res, err := s.Submit(context.Background(), rowID, tt.url)
			if err != nil {
				t.Fatalf("Submit returned request error: %v", err)
			}
			if !errors.Is(res.Err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, res.Err)
			}
			waitQuiet(t, s)

			row, _ := s.Rows().Get(rowID)
			if row.Title != rows.ErrorTitle || row.Duration != "0:00" || row.Status != "Failed" || row.KeyTopics != tt.message {
				t.Fatalf("unexpected error row: %+v", row)
			}
			if row.VideoURL != tt.url {
				t.Fatalf("expected url kept in row, got %q", row.VideoURL)
			}
			if len(api.uploads) != 0 {
				t.Fatalf("failed lookup must not enqueue, got %v", api.uploads)
			}
		})
	}
}

func TestSubmitRejectsDuplicateVideo(t *testing.T) {
	gw := &stubGateway{known: map[string]gateway.Metadata{
		"dupdupdupdu": {VideoID: "dupdupdupdu", Title: "Dup", DurationISO: "PT1M"},
	}}
	api := &recordingBackend{}
	s := newSession(t, gw, api, nil)
	first := firstRowID(s)
	second := s.AddRow().ID

	if res, _ := s.Submit(context.Background(), first, "https://youtu.be/dupdupdupdu"); res.Err != nil {
		t.Fatalf("first submit: %v", res.Err)
	}
	res, _ := s.Submit(context.Background(), second, "https://www.youtube.com/watch?v=dupdupdupdu")
	if !errors.Is(res.Err, services.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", res.Err)
	}
	waitQuiet(t, s)
	if row, _ := s.Rows().Get(second); row.KeyTopics != "Video already in table" {
		t.Fatalf("unexpected duplicate row: %+v", row)
	}
	if len(api.uploads) != 1 {
		t.Fatalf("expected one job, got %v", api.uploads)
	}
}

func TestConcurrentSubmitsOfOneVideoAdmitOne(t *testing.T) {
	gw := &stubGateway{known: map[string]gateway.Metadata{
		"racracracra": {VideoID: "racracracra", Title: "Race", DurationISO: "PT1M"},
	}}
	api := &recordingBackend{}
	s := newSession(t, gw, api, nil)
	ids := []string{firstRowID(s), s.AddRow().ID}

	results := make([]session.Result, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i], _ = s.Submit(context.Background(), id, "https://youtu.be/racracracra")
		}(i, id)
	}
	wg.Wait()
	waitQuiet(t, s)

	var ok, dup int
	for _, res := range results {
		switch {
		case res.Err == nil:
			ok++
		case errors.Is(res.Err, services.ErrDuplicate):
			dup++
		default:
			t.Fatalf("unexpected error: %v", res.Err)
		}
	}
	if ok != 1 || dup != 1 {
		t.Fatalf("expected one success and one duplicate, got ok=%d dup=%d", ok, dup)
	}
}

func TestSubmitEnrichesAndExpands(t *testing.T) {
	known := map[string]gateway.Metadata{
		"seedseedsee": {VideoID: "seedseedsee", Title: "Seed", Channel: "Chan", DurationISO: "PT10M", HasCaptions: true},
	}
	var related []string
	for _, id := range []string{"rel00000001", "rel00000002", "rel00000003", "rel00000004", "rel00000005", "rel00000006"} {
		known[id] = gateway.Metadata{VideoID: id, Title: "Related " + id, Channel: "Other", DurationISO: "PT1M"}
		related = append(related, videoinfo.WatchURL(id))
	}
	gw := &stubGateway{known: known, related: related, summary: "Enriched topics."}
	api := &recordingBackend{}
	s := newSession(t, gw, api, nil)
	rowID := firstRowID(s)

	if _, err := s.Submit(context.Background(), rowID, "https://youtu.be/seedseedsee"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitQuiet(t, s)

	if s.Rows().Len() != 5 {
		t.Fatalf("expected table filled to cap, got %d", s.Rows().Len())
	}
	if len(api.uploads) != 5 || api.uploads[0] != "https://youtu.be/seedseedsee" {
		t.Fatalf("expected seed first then four suggestions, got %v", api.uploads)
	}
	row, _ := s.Rows().Get(rowID)
	if row.KeyTopics != "Enriched topics." {
		t.Fatalf("expected enrichment to replace key topics, got %q", row.KeyTopics)
	}
	if row.Status != "Completed (captions)" {
		t.Fatalf("unexpected seed status %q", row.Status)
	}
	seen := map[string]bool{}
	for _, r := range s.Rows().Snapshot() {
		id, _ := videoinfo.ExtractID(r.VideoURL)
		if seen[id] {
			t.Fatalf("duplicate video %s in table", id)
		}
		seen[id] = true
	}
}

func TestSubmitRequestErrors(t *testing.T) {
	gw := &stubGateway{known: map[string]gateway.Metadata{}, block: make(chan struct{})}
	s := newSession(t, gw, &recordingBackend{}, nil)
	rowID := firstRowID(s)

	if _, err := s.Submit(context.Background(), "nope", "https://youtu.be/aaaaaaaaaaa"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected unknown row error, got %v", err)
	}

	if err := s.SubmitAsync(rowID, "https://youtu.be/aaaaaaaaaaa"); err != nil {
		t.Fatalf("SubmitAsync: %v", err)
	}
	if _, err := s.Submit(context.Background(), rowID, "https://youtu.be/bbbbbbbbbbb"); !errors.Is(err, session.ErrRowBusy) {
		t.Fatalf("expected busy row, got %v", err)
	}
	close(gw.block)
	waitQuiet(t, s)
	if row, _ := s.Rows().Get(rowID); row.Loading || row.KeyTopics != "Video not found" {
		t.Fatalf("unexpected row after async submit: %+v", row)
	}
}

func TestDragControllersUpdateState(t *testing.T) {
	s := newSession(t, &stubGateway{}, &recordingBackend{}, nil)
	rowID := firstRowID(s)

	if err := s.RowResizer().Begin(rowID, 10); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if h, _ := s.RowResizer().Move(400); h != 300 {
		t.Fatalf("expected clamped height 300, got %d", h)
	}
	s.RowResizer().End()

	if err := s.ColumnResizer().Begin(rows.FieldKeyTopics, 0, 1000); err != nil {
		t.Fatalf("Begin column: %v", err)
	}
	if w, _ := s.ColumnResizer().Move(100); w != 30 {
		t.Fatalf("expected width 30, got %v", w)
	}
	if w, _ := s.Columns().Width(rows.FieldKeyTopics); w != 30 {
		t.Fatalf("expected stored width 30, got %v", w)
	}
}

func TestNewValidatesDeps(t *testing.T) {
	if _, err := session.New(context.Background(), testConfig(), session.Deps{Backend: &recordingBackend{}}); err == nil {
		t.Fatal("expected gateway error")
	}
	if _, err := session.New(context.Background(), testConfig(), session.Deps{Gateway: &stubGateway{}}); err == nil {
		t.Fatal("expected backend error")
	}
	cfg := testConfig()
	cfg.Cap = 0
	if _, err := session.New(context.Background(), cfg, session.Deps{Gateway: &stubGateway{}, Backend: &recordingBackend{}}); err == nil {
		t.Fatal("expected cap error")
	}
}

func TestRowMessage(t *testing.T) {
	if session.RowMessage(errors.New("plain")) != "plain" {
		t.Fatal("expected raw message for unclassified errors")
	}
	if session.RowMessage(nil) != "" {
		t.Fatal("expected empty message for nil")
	}
}
