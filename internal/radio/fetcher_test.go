package radio

import (
	"errors"
	"testing"
	"time"
)

func testSegmentedSource() *SegmentedSource {
	return &SegmentedSource{
		IndexURL:     "idx",
		SegmentBase:  "seg-",
		SegmentExt:   ".aac",
		PollInterval: time.Minute,
		Prefetch:     2,
	}
}

// manualFetcher returns a started-ready fetcher whose polling is driven by
// sending on the returned channel instead of a real ticker.
func manualFetcher(getter *fakeGetter, out *collectWriter) (*Fetcher, chan time.Time) {
	f := NewFetcher(getter, testSegmentedSource(), out)
	tick := make(chan time.Time)
	f.newTicker = func(time.Duration) (<-chan time.Time, func()) {
		return tick, func() {}
	}
	return f, tick
}

func waitForCalls(t *testing.T, getter *fakeGetter, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if calls := getter.requested(); len(calls) >= n {
			return calls
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d requests, got %v", n, getter.requested())
	return nil
}

func TestFetcherPrimesPrefetchThenPolls(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{bodies: map[string][]byte{
		"idx": []byte("#EXTM3U\n#EXT-X-MEDIA-SEQUENCE:120\nmedia_120.aac\n"),
	}}
	out := &collectWriter{}
	f, tick := manualFetcher(getter, out)

	if err := f.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer f.Stop()

	// Priming is synchronous: index plus Prefetch segments, ascending from
	// the index sequence minus Prefetch.
	calls := getter.requested()
	want := []string{"idx", "seg-118.aac", "seg-119.aac"}
	if len(calls) != len(want) {
		t.Fatalf("after start: %d requests %v, want %v", len(calls), calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("request[%d] = %q, want %q", i, calls[i], want[i])
		}
	}

	// Each tick appends exactly the next segment in sequence.
	tick <- time.Time{}
	calls = waitForCalls(t, getter, 4)
	if calls[3] != "seg-120.aac" {
		t.Fatalf("first polled segment = %q, want seg-120.aac", calls[3])
	}

	tick <- time.Time{}
	calls = waitForCalls(t, getter, 5)
	if calls[4] != "seg-121.aac" {
		t.Fatalf("second polled segment = %q, want seg-121.aac", calls[4])
	}
}

func TestFetcherSkipsFailedSegment(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{
		bodies: map[string][]byte{
			"idx": []byte("#EXT-X-MEDIA-SEQUENCE:120\n"),
		},
		errs: map[string]error{
			"seg-118.aac": errors.New("boom"),
		},
	}
	out := &collectWriter{}
	f, _ := manualFetcher(getter, out)

	if err := f.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer f.Stop()

	// 118 failed but the sequence still advanced to 119.
	writes := out.written()
	if len(writes) != 1 {
		t.Fatalf("got %d segments in stream, want 1", len(writes))
	}
	if string(writes[0]) != "seg-119.aac" {
		t.Fatalf("streamed segment = %q, want seg-119.aac", writes[0])
	}
}

func TestFetcherStopClosesStreamOnce(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{bodies: map[string][]byte{
		"idx": []byte("#EXT-X-MEDIA-SEQUENCE:10\n"),
	}}
	out := &collectWriter{}
	f, _ := manualFetcher(getter, out)

	if err := f.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	f.Stop()
	f.Stop()

	if got := out.closeCount(); got != 1 {
		t.Fatalf("stream closed %d times, want exactly 1", got)
	}
}

func TestFetcherStopWithoutStartIsNoOp(t *testing.T) {
	t.Parallel()

	out := &collectWriter{}
	f := NewFetcher(&fakeGetter{}, testSegmentedSource(), out)

	f.Stop()

	if got := out.closeCount(); got != 0 {
		t.Fatalf("stream closed %d times before start, want 0", got)
	}
}

func TestFetcherStartFailsOnBadIndex(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{bodies: map[string][]byte{
		"idx": []byte("#EXTM3U\nno sequence here\n"),
	}}
	f := NewFetcher(getter, testSegmentedSource(), &collectWriter{})

	if err := f.Start(); err == nil {
		t.Fatalf("expected start to fail on index without media sequence")
	}
}

func TestParseMediaSequence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		index   string
		want    int64
		wantErr bool
	}{
		{name: "plain", index: "#EXT-X-MEDIA-SEQUENCE:7342\n#EXTINF:3\n", want: 7342},
		{name: "trailing spaces", index: "#EXT-X-MEDIA-SEQUENCE: 42 \nrest", want: 42},
		{name: "last line", index: "#EXTM3U\n#EXT-X-MEDIA-SEQUENCE:5", want: 5},
		{name: "missing marker", index: "#EXTM3U\n", wantErr: true},
		{name: "garbage value", index: "#EXT-X-MEDIA-SEQUENCE:abc\n", wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseMediaSequence(tc.index)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("sequence = %d, want %d", got, tc.want)
			}
		})
	}
}
