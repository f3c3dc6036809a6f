package worker

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds the crons and lambdas known to the process.
type Registry struct {
	mu      sync.RWMutex
	crons   map[string]Cron
	lambdas map[string]Lambda
}

func NewRegistry() *Registry {
	return &Registry{
		crons:   make(map[string]Cron),
		lambdas: make(map[string]Lambda),
	}
}

// RegisterCron adds a cron. Names are unique.
func (r *Registry) RegisterCron(c Cron) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.crons[c.Name()]; ok {
		return fmt.Errorf("%w: cron %q", ErrDuplicateTask, c.Name())
	}
	r.crons[c.Name()] = c
	return nil
}

// RegisterLambda adds a lambda. Names are unique.
func (r *Registry) RegisterLambda(l Lambda) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lambdas[l.Name()]; ok {
		return fmt.Errorf("%w: lambda %q", ErrDuplicateTask, l.Name())
	}
	r.lambdas[l.Name()] = l
	return nil
}

func (r *Registry) Cron(name string) (Cron, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.crons[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCron, name)
	}
	return c, nil
}

func (r *Registry) Lambda(name string) (Lambda, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.lambdas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLambda, name)
	}
	return l, nil
}

// CronNames returns the registered cron names, sorted.
func (r *Registry) CronNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.crons))
	for name := range r.crons {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LambdaNames returns the registered lambda names, sorted.
func (r *Registry) LambdaNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.lambdas))
	for name := range r.lambdas {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// MatchLambdas returns the lambdas whose topic pattern matches topic,
// sorted by name.
func (r *Registry) MatchLambdas(topic string) []Lambda {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Lambda
	for _, l := range r.lambdas {
		if MatchTopic(l.Topic(), topic) {
			matched = append(matched, l)
		}
	}
	slices.SortFunc(matched, func(a, b Lambda) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return matched
}

// MatchTopic compares a dot-separated topic with a pattern segment by
// segment. A "*" segment matches exactly one segment of any value.
func MatchTopic(pattern, topic string) bool {
	if pattern == "" || topic == "" {
		return false
	}
	ps := strings.Split(pattern, ".")
	ts := strings.Split(topic, ".")
	if len(ps) != len(ts) {
		return false
	}
	for i, p := range ps {
		if p != "*" && p != ts[i] {
			return false
		}
	}
	return true
}
