package expreplay

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Memory is a bounded replay memory of finalized episodes. It stores
// four aligned row sequences, oldest first: state-action pairs, states,
// actions, and returns. Row i of each sequence describes the same
// transition.
//
// Memory is episode-aligned: rows are only ever added or removed as
// whole episodes.
type Memory struct {
	featureSize int
	actionSize  int
	maxLen      int

	stateActions []float64
	states       []float64
	actions      []float64
	returns      []float64

	// episodeLens holds the length of each stored episode, oldest first
	episodeLens []int
}

// NewMemory returns a new, empty Memory. After an episode is flushed,
// oldest episodes are evicted until the memory holds fewer than maxLen
// rows. The newest episode is always kept, so a single episode of at
// least maxLen rows fills the memory on its own.
func NewMemory(featureSize, actionSize, maxLen int) (*Memory, error) {
	if featureSize <= 0 || actionSize <= 0 {
		return nil, fmt.Errorf("newMemory: feature and action sizes must "+
			"be positive, got %v and %v", featureSize, actionSize)
	}
	if maxLen < 1 {
		return nil, fmt.Errorf("newMemory: maxLen must be >= 1")
	}

	return &Memory{
		featureSize: featureSize,
		actionSize:  actionSize,
		maxLen:      maxLen,
	}, nil
}

// Flush appends the rows of a finalized episode to the memory, then
// evicts the oldest episodes while the memory holds at least MaxLen()
// rows and more than one episode.
func (m *Memory) Flush(e *Episode) error {
	if !e.Finalized() {
		return &ExpReplayError{Op: "flush", Err: errNotFinalized}
	}
	if e.featureSize != m.featureSize || e.actionSize != m.actionSize {
		return &ExpReplayError{
			Op: "flush",
			Err: fmt.Errorf("%w: episode (%v, %v) memory (%v, %v)",
				errShape, e.featureSize, e.actionSize, m.featureSize,
				m.actionSize),
		}
	}

	m.stateActions = append(m.stateActions, e.stateActions...)
	m.states = append(m.states, e.states...)
	m.actions = append(m.actions, e.actions...)
	m.returns = append(m.returns, e.returns...)
	m.episodeLens = append(m.episodeLens, e.Len())

	for m.Len() >= m.maxLen && m.Episodes() > 1 {
		m.evictOldest()
	}
	return nil
}

// evictOldest removes the rows of the oldest stored episode
func (m *Memory) evictOldest() {
	n := m.episodeLens[0]
	m.episodeLens = m.episodeLens[1:]

	m.stateActions = dropRows(m.stateActions, n,
		m.featureSize+m.actionSize)
	m.states = dropRows(m.states, n, m.featureSize)
	m.actions = dropRows(m.actions, n, m.actionSize)
	m.returns = dropRows(m.returns, n, 1)
}

// dropRows removes the first n rows of width cols from data, copying
// the remaining rows so the old backing array can be released
func dropRows(data []float64, n, cols int) []float64 {
	rest := data[n*cols:]
	kept := make([]float64, len(rest), cap(data))
	copy(kept, rest)
	return kept
}

// Len returns the number of rows in the memory
func (m *Memory) Len() int {
	return len(m.returns)
}

// MaxLen returns the row count at which the oldest episode is evicted
func (m *Memory) MaxLen() int {
	return m.maxLen
}

// Episodes returns the number of episodes stored in the memory
func (m *Memory) Episodes() int {
	return len(m.episodeLens)
}

// EpisodeLens returns the length of each stored episode, oldest first
func (m *Memory) EpisodeLens() []int {
	lens := make([]int, len(m.episodeLens))
	copy(lens, m.episodeLens)
	return lens
}

// Data returns copies of the aligned state-action, state, action, and
// return matrices, each with Len() rows.
func (m *Memory) Data() (stateActions, states, actions, returns *mat.Dense,
	err error) {
	if m.Len() == 0 {
		return nil, nil, nil, nil, &ExpReplayError{
			Op:  "data",
			Err: errEmptyMemory,
		}
	}

	n := m.Len()
	stateActions = mat.NewDense(n, m.featureSize+m.actionSize,
		clone(m.stateActions))
	states = mat.NewDense(n, m.featureSize, clone(m.states))
	actions = mat.NewDense(n, m.actionSize, clone(m.actions))
	returns = mat.NewDense(n, 1, clone(m.returns))

	return stateActions, states, actions, returns, nil
}

func clone(data []float64) []float64 {
	c := make([]float64, len(data))
	copy(c, data)
	return c
}

// String implements the fmt.Stringer interface
func (m *Memory) String() string {
	return fmt.Sprintf("Memory | rows: %v  |  episodes: %v  |  max: %v",
		m.Len(), m.Episodes(), m.maxLen)
}
