package wlcsd

import (
	"sync"
	"sync/atomic"
)

// Event pool for handler dispatch on non-proxy objects
var eventPool = sync.Pool{
	New: func() interface{} {
		return &Event{
			data: make([]byte, 0, 4096),
		}
	},
}

// EventHandler handles one decoded event. The event is only valid during the call.
type EventHandler func(event *Event)

// EventDispatcher routes events for objects that are not proxies (the registry)
// by object id and opcode.
type EventDispatcher struct {
	// Lock-free handler lookup for object IDs 0-1023
	handlers [1024]atomic.Pointer[handlerEntry]

	// Object IDs >= 1024
	extHandlers sync.Map
}

// handlerEntry stores handlers for a specific object, indexed by opcode
type handlerEntry struct {
	handlers [32]EventHandler
}

// NewEventDispatcher creates an event dispatcher
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{}
}

// RegisterHandler registers an event handler. Opcodes >= 32 are not supported;
// no core interface defines that many events.
func (d *EventDispatcher) RegisterHandler(objectID uint32, opcode uint16, handler EventHandler) {
	if opcode >= 32 {
		return
	}
	if objectID < 1024 {
		for {
			entry := d.handlers[objectID].Load()
			if entry == nil {
				newEntry := &handlerEntry{}
				newEntry.handlers[opcode] = handler
				if d.handlers[objectID].CompareAndSwap(nil, newEntry) {
					return
				}
				continue
			}
			entry.handlers[opcode] = handler
			return
		}
	}

	entry, _ := d.extHandlers.LoadOrStore(objectID, &handlerEntry{})
	entry.(*handlerEntry).handlers[opcode] = handler
}

// Dispatch dispatches an event if a handler is registered for it
func (d *EventDispatcher) Dispatch(objectID uint32, opcode uint16, data []byte) {
	if opcode >= 32 {
		return
	}

	var handler EventHandler
	if objectID < 1024 {
		if entry := d.handlers[objectID].Load(); entry != nil {
			handler = entry.handlers[opcode]
		}
	} else if entry, ok := d.extHandlers.Load(objectID); ok {
		handler = entry.(*handlerEntry).handlers[opcode]
	}

	if handler == nil {
		return
	}

	event := eventPool.Get().(*Event)
	event.ProxyID = objectID
	event.Opcode = opcode
	event.data = append(event.data[:0], data...)
	event.offset = 0

	handler(event)

	eventPool.Put(event)
}
