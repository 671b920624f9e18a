package realtime

import (
	"context"
	"errors"
	"sync"
)

// State estado de la unión a una sala.
type State int

const (
	Disconnected State = iota
	Connecting
	Joined
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Joined:
		return "joined"
	}
	return "disconnected"
}

// ErrNotJoined la sala no estaba unida.
var ErrNotJoined = errors.New("realtime: sala no unida")

// ConnectFunc abre la conexión a una sala y devuelve la función que la cierra.
type ConnectFunc func(ctx context.Context, room string) (leave func(), err error)

// Member estado de unión a salas de un cliente. Join es idempotente: unirse a una
// sala en connecting o joined no abre una segunda conexión.
type Member struct {
	mu      sync.Mutex
	connect ConnectFunc
	states  map[string]State
	leaves  map[string]func()
}

func NewMember(connect ConnectFunc) *Member {
	return &Member{
		connect: connect,
		states:  make(map[string]State),
		leaves:  make(map[string]func()),
	}
}

// State estado actual de la sala.
func (m *Member) State(room string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[room]
}

// Join une la sala. Si la conexión falla la sala vuelve a disconnected.
func (m *Member) Join(ctx context.Context, room string) error {
	m.mu.Lock()
	if m.states[room] != Disconnected {
		m.mu.Unlock()
		return nil
	}
	m.states[room] = Connecting
	m.mu.Unlock()

	leave, err := m.connect(ctx, room)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		delete(m.states, room)
		return err
	}
	if m.states[room] != Connecting {
		// Leave llegó mientras conectaba.
		if leave != nil {
			leave()
		}
		return nil
	}
	m.states[room] = Joined
	m.leaves[room] = leave
	return nil
}

// Leave sale de la sala. Salir de una sala en connecting cancela la unión en curso.
func (m *Member) Leave(room string) error {
	m.mu.Lock()
	state := m.states[room]
	leave := m.leaves[room]
	delete(m.states, room)
	delete(m.leaves, room)
	m.mu.Unlock()

	switch state {
	case Disconnected:
		return ErrNotJoined
	case Joined:
		if leave != nil {
			leave()
		}
	}
	return nil
}

// Close sale de todas las salas.
func (m *Member) Close() {
	m.mu.Lock()
	leaves := m.leaves
	m.states = make(map[string]State)
	m.leaves = make(map[string]func())
	m.mu.Unlock()

	for _, leave := range leaves {
		if leave != nil {
			leave()
		}
	}
}
