package object

import (
	"sync"

	"github.com/linknx-go/ruled/engine"
)

// Object is an in-memory, change-notifying bus object. It implements
// engine.Object and, depending on typ, engine.SwitchingObject or
// engine.U8Object.
type Object struct {
	mu        sync.Mutex
	id        string
	typ       string
	value     engine.ObjectValue
	lastTx    string
	listeners []engine.ChangeListener
}

// NewSwitchingObject builds a boolean-valued object with the given initial
// state.
func NewSwitchingObject(id string, initial bool) *Object {
	return &Object{id: id, typ: "switch", value: BoolValue(initial)}
}

// NewU8Object builds an 8-bit-valued object with the given initial level.
func NewU8Object(id string, initial uint8) *Object {
	return &Object{id: id, typ: "scaling", value: ByteValue(initial)}
}

func (o *Object) ID() string   { return o.id }
func (o *Object) Type() string { return o.typ }

func (o *Object) Value() engine.ObjectValue {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

func (o *Object) CreateValue(s string) (engine.ObjectValue, error) {
	switch o.typ {
	case "switch":
		return ParseBoolValue(s)
	case "scaling":
		return ParseByteValue(s)
	default:
		return ParseBoolValue(s)
	}
}

// SetValue writes a new value and fires change listeners, as if the write
// originated locally (LastTx is left unchanged). Use SetValueFromBus for a
// write attributed to a bus source address.
func (o *Object) SetValue(v engine.ObjectValue) error {
	return o.setValue(v, "")
}

// SetValueFromBus writes a new value as having arrived from src, updating
// LastTx. Used by tests exercising ObjectSourceCompare.
func (o *Object) SetValueFromBus(v engine.ObjectValue, src string) error {
	return o.setValue(v, src)
}

func (o *Object) setValue(v engine.ObjectValue, src string) error {
	o.mu.Lock()
	o.value = v
	if src != "" {
		o.lastTx = src
	}
	listeners := append([]engine.ChangeListener(nil), o.listeners...)
	o.mu.Unlock()

	for _, l := range listeners {
		l.OnChange(o)
	}
	return nil
}

func (o *Object) LastTx() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastTx
}

func (o *Object) AddChangeListener(l engine.ChangeListener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

func (o *Object) BoolValue() bool {
	return bool(o.Value().(BoolValue))
}

func (o *Object) SetBoolValue(b bool) error {
	return o.SetValue(BoolValue(b))
}

func (o *Object) IntValue() int {
	return int(o.Value().(ByteValue))
}

func (o *Object) SetIntValue(n int) error {
	return o.SetValue(ByteValue(n))
}

var (
	_ engine.Object          = (*Object)(nil)
	_ engine.SwitchingObject = (*Object)(nil)
	_ engine.U8Object        = (*Object)(nil)
)

// Controller is an in-memory engine.ObjectController: a simple name-to-object
// map. Good enough to stand in for a real bus gateway in a small standalone
// deployment and in tests.
type Controller struct {
	mu      sync.RWMutex
	objects map[string]engine.Object
}

// NewController returns an empty Controller.
func NewController() *Controller {
	return &Controller{objects: make(map[string]engine.Object)}
}

// Add registers obj under its own ID, replacing any existing object with
// the same id.
func (c *Controller) Add(obj engine.Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[obj.ID()] = obj
}

func (c *Controller) GetObject(id string) (engine.Object, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.objects[id]
	if !ok {
		return nil, engine.NewConfigError("unknown object: %q", id)
	}
	return obj, nil
}

var _ engine.ObjectController = (*Controller)(nil)
