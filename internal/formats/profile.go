package formats

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownExam  = errors.New("unknown exam type")
	ErrUnknownTopic = errors.New("unknown topic")
)

// Profile describes one exam type and the closed set of topics questions
// may be generated and requested for. Key is the exam type identifier stored
// on every question row (e.g. "CFA1").
type Profile struct {
	Key     string  `json:"exam_type"`
	Version string  `json:"version"`
	Title   string  `json:"title"`
	Topics  []Topic `json:"topics"`
}

type Topic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (p Profile) HasTopic(id string) bool {
	for _, t := range p.Topics {
		if t.ID == id {
			return true
		}
	}
	return false
}

var (
	mu       sync.RWMutex
	registry = map[string]Profile{}
)

// Register a profile. Call from init() in subpackages.
func Register(p Profile) {
	mu.Lock()
	defer mu.Unlock()
	registry[p.Key] = p
}

// Lookup returns a registered profile by exam type.
func Lookup(examType string) (Profile, bool) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := registry[examType]
	return p, ok
}

// List returns every registered profile ordered by key.
func List() []Profile {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Profile, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ValidateTopics checks every topic against the exam's catalog.
func ValidateTopics(examType string, topics []string) error {
	p, ok := Lookup(examType)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownExam, examType)
	}
	for _, t := range topics {
		if !p.HasTopic(t) {
			return fmt.Errorf("%w: %q for %s", ErrUnknownTopic, t, examType)
		}
	}
	return nil
}

// KnownTopic reports whether any registered profile carries the topic.
// Question sets are requested by topic alone, so this is the boundary
// check used when no exam type accompanies the request.
func KnownTopic(topic string) bool {
	mu.RLock()
	defer mu.RUnlock()
	for _, p := range registry {
		if p.HasTopic(topic) {
			return true
		}
	}
	return false
}
