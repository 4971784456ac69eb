package ai

import (
	"strings"
	"testing"
)

const sampleWire = `{"response":{"content":"Hel"}}{"response":{"content":"lo"}}{"response":{"content":"Hello world","metadata":{}}}`

// runStream feeds the wire bytes split into the given chunk sizes and
// collects every frame including the terminal one.
func runStream(t *testing.T, wire string, chunkSizes []int) []StreamFrame {
	t.Helper()
	p := NewStreamParser()
	var frames []StreamFrame

	rest := wire
	for _, size := range chunkSizes {
		if len(rest) == 0 {
			break
		}
		if size > len(rest) {
			size = len(rest)
		}
		frames = append(frames, p.Feed([]byte(rest[:size]))...)
		rest = rest[size:]
	}
	if len(rest) > 0 {
		frames = append(frames, p.Feed([]byte(rest))...)
	}
	if final, ok := p.Finish(); ok {
		frames = append(frames, final)
	}
	return frames
}

func checkFrames(t *testing.T, frames []StreamFrame, wantFinal string) {
	t.Helper()
	if len(frames) == 0 {
		t.Fatal("no frames emitted")
	}

	prev := 0
	doneCount := 0
	for i, f := range frames {
		if len(f.Content) < prev {
			t.Errorf("frame %d content length decreased: %d -> %d", i, prev, len(f.Content))
		}
		prev = len(f.Content)
		if f.Done {
			doneCount++
			if i != len(frames)-1 {
				t.Errorf("done frame at index %d, want last", i)
			}
		}
	}
	if doneCount != 1 {
		t.Errorf("got %d done frames, want exactly 1", doneCount)
	}
	if got := frames[len(frames)-1].Content; got != wantFinal {
		t.Errorf("final content = %q, want %q", got, wantFinal)
	}
}

func TestStreamParserSingleChunk(t *testing.T) {
	frames := runStream(t, sampleWire, []int{len(sampleWire)})
	checkFrames(t, frames, "Hello world")
}

func TestStreamParserArbitrarySplits(t *testing.T) {
	// Split at every possible single boundary, including mid-object.
	for cut := 1; cut < len(sampleWire); cut++ {
		frames := runStream(t, sampleWire, []int{cut})
		checkFrames(t, frames, "Hello world")
	}
}

func TestStreamParserByteAtATime(t *testing.T) {
	sizes := make([]int, len(sampleWire))
	for i := range sizes {
		sizes[i] = 1
	}
	frames := runStream(t, sampleWire, sizes)
	checkFrames(t, frames, "Hello world")
}

func TestStreamParserNonJSONPreamble(t *testing.T) {
	wire := "warming up...\n" + sampleWire
	frames := runStream(t, wire, []int{7, 20, 30, 50})
	checkFrames(t, frames, "Hello world")
}

func TestStreamParserPartialContentFallback(t *testing.T) {
	p := NewStreamParser()
	frames := p.Feed([]byte(`{"response":{"content":"Partial ans`))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1 fallback frame", len(frames))
	}
	if frames[0].Content != "Partial ans" {
		t.Errorf("fallback content = %q", frames[0].Content)
	}
	if frames[0].Done {
		t.Error("fallback frame must not be done")
	}

	// Same prefix again must not re-emit; nothing grew.
	if frames = p.Feed([]byte("")); len(frames) != 0 {
		t.Errorf("re-feed emitted %d frames, want 0", len(frames))
	}
}

func TestStreamParserFallbackUnescapes(t *testing.T) {
	p := NewStreamParser()
	frames := p.Feed([]byte(`{"response":{"content":"line\nbreak"}`))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Content != "line\nbreak" {
		t.Errorf("content = %q, want unescaped newline", frames[0].Content)
	}
}

func TestStreamParserNoContentNoFinish(t *testing.T) {
	p := NewStreamParser()
	p.Feed([]byte(`{"unrelated":true}`))
	if _, ok := p.Finish(); ok {
		t.Error("Finish returned a frame with no accumulated content")
	}
}

func TestStreamParserFinalReplacesWhenLonger(t *testing.T) {
	p := NewStreamParser()
	p.Feed([]byte(`{"response":{"content":"Hi"}}`))
	p.Feed([]byte(`{"response":{"content":"Hi there, student","title":"Greeting"}}`))
	if got := p.Content(); got != "Hi there, student" {
		t.Errorf("content = %q, want final replacement", got)
	}
	if !p.Complete() {
		t.Error("parser should be complete after a title-bearing message")
	}
	if !strings.HasPrefix(p.Content(), "Hi") {
		t.Errorf("unexpected content %q", p.Content())
	}
}
