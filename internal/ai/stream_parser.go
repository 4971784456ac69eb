package ai

import (
	"encoding/json"
	"regexp"
)

// StreamFrame is the unit republished downstream as newline-delimited JSON.
// Content is cumulative, not a delta; only the final frame has Done set.
type StreamFrame struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
}

// backendMessage mirrors the chat backend's ad hoc wire objects. A message
// carrying metadata or a title is the final one; its content is the full
// answer rather than an increment.
type backendMessage struct {
	Response *struct {
		Content  string          `json:"content"`
		Metadata json.RawMessage `json:"metadata"`
		Title    json.RawMessage `json:"title"`
	} `json:"response"`
}

var (
	// "content": "..." still open at the end of the buffer
	partialContentRe = regexp.MustCompile(`"content"\s*:\s*"([^"]*)$`)
	// "content": "..." closed, escapes allowed
	completeContentRe = regexp.MustCompile(`"content"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// StreamParser reassembles logical frames from a chunked byte stream with no
// guaranteed framing: an ad hoc sequence of JSON objects without delimiters
// or length prefixes, sometimes interleaved with non-JSON preamble. It scans
// for brace-balanced candidate objects and falls back to regex extraction of
// a partial content field so the consumer sees text before an object closes.
//
// State is private to one stream; never share a parser across requests.
type StreamParser struct {
	buffer      string
	accumulated string
	lastEmitted int
	complete    bool
}

func NewStreamParser() *StreamParser {
	return &StreamParser{}
}

// Feed appends a chunk to the buffer and returns any frames it produced.
// Frame content is non-decreasing in length across a stream: the regex
// fallback may only overwrite with something longer.
func (p *StreamParser) Feed(chunk []byte) []StreamFrame {
	p.buffer += string(chunk)

	var frames []StreamFrame
	extractedAny := true
	for extractedAny {
		extractedAny = false

		depth := 0
		start := -1
		for i := 0; i < len(p.buffer); i++ {
			switch p.buffer[i] {
			case '{':
				if depth == 0 {
					start = i
				}
				depth++
			case '}':
				depth--
				if depth == 0 && start != -1 {
					var msg backendMessage
					if err := json.Unmarshal([]byte(p.buffer[start:i+1]), &msg); err == nil {
						if msg.Response != nil && msg.Response.Content != "" {
							if msg.Response.Metadata != nil || msg.Response.Title != nil {
								// Final message: take its content when longer
								// than what streaming chunks accumulated.
								p.complete = true
								if len(msg.Response.Content) > len(p.accumulated) {
									p.accumulated = msg.Response.Content
								}
							} else {
								p.accumulated += msg.Response.Content
							}
							frames = append(frames, p.emit(p.accumulated))
						}
						// Consume the parsed region; multiple complete objects
						// may exist in one physical chunk, so rescan.
						p.buffer = p.buffer[i+1:]
						extractedAny = true
					}
					// Parse failure means the object is not actually complete
					// (braces inside strings); keep buffering.
				}
			}
			if extractedAny {
				break
			}
		}
	}

	// Fallback extraction: surface partial text before a full object closes,
	// at the cost of it sometimes being superseded once the object parses.
	if !p.complete {
		var extracted string
		found := false
		if m := completeContentRe.FindStringSubmatch(p.buffer); m != nil {
			extracted = m[1]
			found = true
		} else if m := partialContentRe.FindStringSubmatch(p.buffer); m != nil {
			extracted = m[1]
			found = true
		}

		if found {
			var unescaped string
			if err := json.Unmarshal([]byte(`"`+extracted+`"`), &unescaped); err == nil {
				extracted = unescaped
			}
			if extracted != "" && len(extracted) > p.lastEmitted {
				frames = append(frames, p.emit(extracted))
			}
		}
	}

	return frames
}

// Finish returns the terminal frame, if any content was accumulated.
// A straggler buffer that never parsed is silently discarded.
func (p *StreamParser) Finish() (StreamFrame, bool) {
	if p.accumulated == "" {
		return StreamFrame{}, false
	}
	return StreamFrame{Content: p.accumulated, Done: true}, true
}

// Content returns the best known full answer so far.
func (p *StreamParser) Content() string {
	return p.accumulated
}

// Complete reports whether the final (metadata-bearing) message was seen.
func (p *StreamParser) Complete() bool {
	return p.complete
}

func (p *StreamParser) emit(content string) StreamFrame {
	if len(content) > p.lastEmitted {
		p.lastEmitted = len(content)
	}
	return StreamFrame{Content: content, Done: false}
}
