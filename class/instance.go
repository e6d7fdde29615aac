package class

import (
	"fmt"

	"github.com/hetu-lang/hetu/function"
	"github.com/hetu-lang/hetu/values"
)

// Instance carries one field frame per ancestor class (§3 "Instance").
type Instance struct {
	Class  *Class
	Chain  []*Class               // most-derived first
	Frames []map[string]*values.Value // parallel to Chain
}

// NewInstance seeds one field frame per ancestor from each class's own
// field defaults (§4.E instantiation).
func NewInstance(c *Class) *Instance {
	chain := c.Chain()
	frames := make([]map[string]*values.Value, len(chain))
	for i, cls := range chain {
		frames[i] = cls.OwnFieldDefaults()
	}
	return &Instance{Class: c, Chain: chain, Frames: frames}
}

func (inst *Instance) frameIndexForClass(classID string) int {
	for i, c := range inst.Chain {
		if c.ID == classID {
			return i
		}
	}
	return -1
}

// findMethod walks Chain from startIdx upward (toward the base) looking
// for a method declaration named id.
func (inst *Instance) findMethod(id string, startIdx int) (*function.Function, bool) {
	for i := startIdx; i < len(inst.Chain); i++ {
		decl, err := inst.Chain[i].Namespace.Lookup(id, "", false)
		if err != nil {
			continue
		}
		if fn, ok := decl.Value.Data.(*function.Function); ok {
			return fn, true
		}
	}
	return nil, false
}

// MemberGet implements §4.E member lookup: fields of every frame,
// most-derived first, then methods along the class chain.
func (inst *Instance) MemberGet(id string, from string, caller *values.Value) (*values.Value, error) {
	if caller == nil {
		caller = values.NewAccessor(values.TypeInstance, inst)
	}
	for i := 0; i < len(inst.Chain); i++ {
		if v, ok := inst.Frames[i][id]; ok {
			return v, nil
		}
	}
	if fn, ok := inst.findMethod(id, 0); ok {
		return fn.BindThis(caller), nil
	}
	return nil, fmt.Errorf("undefined: %s", id)
}

// MemberSet writes to the most-derived frame that already declares id, or
// the instance's own (most-derived) frame if none does.
func (inst *Instance) MemberSet(id string, v *values.Value, from string, caller *values.Value) error {
	for i := 0; i < len(inst.Chain); i++ {
		if _, ok := inst.Frames[i][id]; ok {
			inst.Frames[i][id] = v
			return nil
		}
	}
	inst.Frames[0][id] = v
	return nil
}

func (inst *Instance) SubGet(key *values.Value) (*values.Value, error) {
	if !key.IsString() {
		return nil, fmt.Errorf("subGetKey: instance subscript key must be a string")
	}
	return inst.MemberGet(key.Str(), "", nil)
}

func (inst *Instance) SubSet(key *values.Value, v *values.Value) error {
	if !key.IsString() {
		return fmt.Errorf("subGetKey: instance subscript key must be a string")
	}
	return inst.MemberSet(key.Str(), v, "", nil)
}

// AsValue wraps inst as a uniform Value tagged TypeInstance.
func (inst *Instance) AsValue() *values.Value {
	return values.NewAccessor(values.TypeInstance, inst)
}

// New constructs an instance of c by resolving and calling its
// constructor (§4.E "Instantiation"). ctorName is "" for the default
// constructor.
func New(c *Class, ctorName string, positional []*values.Value, named map[string]*values.Value) (*values.Value, error) {
	if c.IsAbstract {
		return nil, fmt.Errorf("abstracted: cannot instantiate abstract class %s", c.ID)
	}
	inst := NewInstance(c)
	selfValue := inst.AsValue()
	ctor, err := c.Constructor(ctorName)
	if err != nil {
		return nil, err
	}
	if _, err := ctor.Call(positional, named, selfValue); err != nil {
		return nil, err
	}
	return selfValue, nil
}

// Cast wraps an instance with a view bound to a specific ancestor level
// (§3 "Cast", §4.E `Cast(castee, klass)`).
type Cast struct {
	Instance *Instance
	Level    *Class
}

// NewCast constructs a Cast iff castee isA target, else fails with
// *typeCast* (§4.E).
func NewCast(castee *values.Value, target *Class) (*values.Value, error) {
	inst, ok := castee.Data.(*Instance)
	if !ok {
		return nil, fmt.Errorf("castee: cast target is not an instance")
	}
	if inst.frameIndexForClass(target.ID) < 0 {
		return nil, fmt.Errorf("typeCast: %s is not a %s", inst.Class.ID, target.ID)
	}
	return values.NewAccessor(values.TypeCast, &Cast{Instance: inst, Level: target}), nil
}

// MemberGet restricts visibility to the target level and its own ancestors
// (excludes overrides declared by more-derived classes), matching S2:
// `(b as A).n` reads A's own `n`, not B's override.
func (cast *Cast) MemberGet(id string, from string, caller *values.Value) (*values.Value, error) {
	startIdx := cast.Instance.frameIndexForClass(cast.Level.ID)
	if startIdx < 0 {
		return nil, fmt.Errorf("undefined: %s", id)
	}
	for i := startIdx; i < len(cast.Instance.Chain); i++ {
		if v, ok := cast.Instance.Frames[i][id]; ok {
			return v, nil
		}
	}
	if caller == nil {
		caller = values.NewAccessor(values.TypeCast, cast)
	}
	if fn, ok := cast.Instance.findMethod(id, startIdx); ok {
		return fn.BindThis(caller), nil
	}
	return nil, fmt.Errorf("undefined: %s", id)
}

func (cast *Cast) MemberSet(id string, v *values.Value, from string, caller *values.Value) error {
	startIdx := cast.Instance.frameIndexForClass(cast.Level.ID)
	if startIdx < 0 {
		return fmt.Errorf("undefined: %s", id)
	}
	for i := startIdx; i < len(cast.Instance.Chain); i++ {
		if _, ok := cast.Instance.Frames[i][id]; ok {
			cast.Instance.Frames[i][id] = v
			return nil
		}
	}
	return fmt.Errorf("undefined: %s", id)
}

func (cast *Cast) SubGet(key *values.Value) (*values.Value, error) {
	if !key.IsString() {
		return nil, fmt.Errorf("subGetKey: cast subscript key must be a string")
	}
	return cast.MemberGet(key.Str(), "", nil)
}

func (cast *Cast) SubSet(key *values.Value, v *values.Value) error {
	if !key.IsString() {
		return fmt.Errorf("subGetKey: cast subscript key must be a string")
	}
	return cast.MemberSet(key.Str(), v, "", nil)
}
