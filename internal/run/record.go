// Package run holds the run record produced by one dispatch and the
// aggregator that persists it and streams status to the notification sinks.
package run

import (
	"encoding/json"
	"sync"
	"time"
)

// BotResult is the tagged outcome of one bot execution: exactly one of
// Result and Err is populated. It always carries the originating bot
// identifier.
type BotResult struct {
	Bot    string
	Result map[string]interface{}
	Err    string
}

// Ok builds a success result.
func Ok(bot string, result map[string]interface{}) BotResult {
	return BotResult{Bot: bot, Result: result}
}

// Failed builds an error result.
func Failed(bot, message string) BotResult {
	return BotResult{Bot: bot, Err: message}
}

// IsError reports whether this is the error variant.
func (r BotResult) IsError() bool {
	return r.Err != ""
}

// Status returns "ok" or "error", the status vocabulary of the dashboard
// events and the status API.
func (r BotResult) Status() string {
	if r.IsError() {
		return "error"
	}
	return "ok"
}

type botResultJSON struct {
	Bot    string                 `json:"bot"`
	Result map[string]interface{} `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func (r BotResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(botResultJSON{Bot: r.Bot, Result: r.Result, Error: r.Err})
}

func (r *BotResult) UnmarshalJSON(data []byte) error {
	var raw botResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Bot = raw.Bot
	r.Result = raw.Result
	r.Err = raw.Error
	return nil
}

// Record is the aggregated outcome of one dispatch. It is created when the
// dispatch starts, appended to as bots complete (completion order, not
// submission order), and sealed once every requested bot has exactly one
// result. One dispatch invocation owns it exclusively; appends are
// synchronized because completions race.
type Record struct {
	mu        sync.Mutex
	startedAt float64
	endedAt   float64
	results   []BotResult
}

func NewRecord() *Record {
	return &Record{startedAt: epochSeconds()}
}

// Append adds one completed result.
func (r *Record) Append(res BotResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Seal marks the record complete. Called exactly once, after the last
// result was appended.
func (r *Record) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endedAt = epochSeconds()
}

// Sealed reports whether EndedAt has been set.
func (r *Record) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endedAt != 0
}

// StartedAt returns the dispatch start as float seconds since the epoch.
func (r *Record) StartedAt() float64 { return r.startedAt }

// EndedAt returns the seal time as float seconds since the epoch, 0 while
// the run is still in flight.
func (r *Record) EndedAt() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endedAt
}

// Results returns a copy of the collected results in completion order.
func (r *Record) Results() []BotResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]BotResult, len(r.results))
	copy(out, r.results)
	return out
}

// Len returns the number of collected results.
func (r *Record) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

// Summary condenses the record for run_complete notifications.
func (r *Record) Summary() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	okCount := 0
	errCount := 0
	bots := make(map[string]string, len(r.results))
	for _, res := range r.results {
		bots[res.Bot] = res.Status()
		if res.IsError() {
			errCount++
		} else {
			okCount++
		}
	}
	return map[string]interface{}{
		"started_at": r.startedAt,
		"ended_at":   r.endedAt,
		"total":      len(r.results),
		"ok":         okCount,
		"errors":     errCount,
		"bots":       bots,
	}
}

type recordJSON struct {
	StartedAt float64     `json:"started_at"`
	EndedAt   float64     `json:"ended_at"`
	Results   []BotResult `json:"results"`
}

func (r *Record) MarshalJSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return json.Marshal(recordJSON{
		StartedAt: r.startedAt,
		EndedAt:   r.endedAt,
		Results:   r.results,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startedAt = raw.StartedAt
	r.endedAt = raw.EndedAt
	r.results = raw.Results
	return nil
}

func epochSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
