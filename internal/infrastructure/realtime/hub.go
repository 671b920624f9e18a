// Package realtime implementa el canal push por salas: Hub en el servidor y Member,
// la máquina de estados de unión a una sala en el cliente.
package realtime

import (
	"sync"
)

// Subscription suscripción a una sala. C entrega solo el último mensaje pendiente:
// si el suscriptor se atrasa, el mensaje viejo se reemplaza por el nuevo.
type Subscription struct {
	Room string
	C    <-chan []byte

	ch   chan []byte
	hub  *Hub
	once sync.Once
}

// Close da de baja la suscripción. Es idempotente.
func (s *Subscription) Close() {
	s.hub.Unsubscribe(s)
}

// Hub registro de salas y suscriptores.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscription]struct{})}
}

// Subscribe une un nuevo suscriptor a la sala.
func (h *Hub) Subscribe(room string) *Subscription {
	ch := make(chan []byte, 1)
	s := &Subscription{Room: room, C: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[room]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.rooms[room] = subs
	}
	subs[s] = struct{}{}
	return s
}

// Unsubscribe quita al suscriptor y cierra su canal.
func (h *Hub) Unsubscribe(s *Subscription) {
	s.once.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.rooms[s.Room]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(h.rooms, s.Room)
			}
		}
		close(s.ch)
	})
}

// Publish entrega payload a todos los suscriptores de la sala sin bloquear y
// devuelve cuántos lo recibieron.
func (h *Hub) Publish(room string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for s := range h.rooms[room] {
		for {
			select {
			case s.ch <- payload:
				n++
			default:
				// Descartar el pendiente y reintentar: gana el último.
				select {
				case <-s.ch:
				default:
				}
				continue
			}
			break
		}
	}
	return n
}

// Count suscriptores activos de la sala.
func (h *Hub) Count(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
