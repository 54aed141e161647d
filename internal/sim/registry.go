package sim

import (
	"cmp"
	"slices"
)

// Registry owns every live simulation object. Each category is kept in ID
// order so iteration is deterministic. Other components hold IDs across
// ticks, never pointers.
type Registry struct {
	nextID ID

	Snake *Snake

	entities  []*Entity
	lasers    []*Laser
	particles []*Particle
	popups    []*Popup
}

func newRegistry(s *Snake) *Registry {
	return &Registry{nextID: 1, Snake: s}
}

func (r *Registry) alloc() ID {
	id := r.nextID
	r.nextID++
	return id
}

// AddEntity assigns an ID and stores e.
func (r *Registry) AddEntity(e *Entity) ID {
	e.ID = r.alloc()
	r.entities = append(r.entities, e)
	return e.ID
}

// AddLaser assigns an ID and stores l.
func (r *Registry) AddLaser(l *Laser) ID {
	l.ID = r.alloc()
	r.lasers = append(r.lasers, l)
	return l.ID
}

// AddParticle assigns an ID and stores p.
func (r *Registry) AddParticle(p *Particle) ID {
	p.ID = r.alloc()
	r.particles = append(r.particles, p)
	return p.ID
}

// AddPopup assigns an ID and stores p.
func (r *Registry) AddPopup(p *Popup) ID {
	p.ID = r.alloc()
	r.popups = append(r.popups, p)
	return p.ID
}

// Entities, Lasers, Particles and Popups return the live slices in ID order.
// Callers must not retain or modify them.
func (r *Registry) Entities() []*Entity   { return r.entities }
func (r *Registry) Lasers() []*Laser      { return r.lasers }
func (r *Registry) Particles() []*Particle { return r.particles }
func (r *Registry) Popups() []*Popup      { return r.popups }

// Entity looks up a live entity.
func (r *Registry) Entity(id ID) *Entity {
	i, ok := slices.BinarySearchFunc(r.entities, id, func(e *Entity, id ID) int { return cmp.Compare(e.ID, id) })
	if !ok {
		return nil
	}
	return r.entities[i]
}

// Laser looks up a live laser.
func (r *Registry) Laser(id ID) *Laser {
	i, ok := slices.BinarySearchFunc(r.lasers, id, func(l *Laser, id ID) int { return cmp.Compare(l.ID, id) })
	if !ok {
		return nil
	}
	return r.lasers[i]
}

// RemoveEntity drops an entity; it reports whether it was present.
func (r *Registry) RemoveEntity(id ID) bool {
	i, ok := slices.BinarySearchFunc(r.entities, id, func(e *Entity, id ID) int { return cmp.Compare(e.ID, id) })
	if ok {
		r.entities = slices.Delete(r.entities, i, i+1)
	}
	return ok
}

// RemoveLaser drops a laser; it reports whether it was present.
func (r *Registry) RemoveLaser(id ID) bool {
	i, ok := slices.BinarySearchFunc(r.lasers, id, func(l *Laser, id ID) int { return cmp.Compare(l.ID, id) })
	if ok {
		r.lasers = slices.Delete(r.lasers, i, i+1)
	}
	return ok
}

// CountCategory counts live entities whose kind belongs to cat.
func (r *Registry) CountCategory(cfg *Config, cat SpawnCategory) int {
	n := 0
	for _, e := range r.entities {
		if cfg.Kinds[e.Kind].Category == cat {
			n++
		}
	}
	return n
}

// CountClass counts live entities of one class.
func (r *Registry) CountClass(cfg *Config, c Class) int {
	n := 0
	for _, e := range r.entities {
		if cfg.Kinds[e.Kind].Class == c {
			n++
		}
	}
	return n
}

// Boss returns the active boss, if any.
func (r *Registry) Boss(cfg *Config) *Entity {
	for _, e := range r.entities {
		if cfg.Kinds[e.Kind].Class == ClassBoss {
			return e
		}
	}
	return nil
}

// Len returns the number of live objects excluding the snake.
func (r *Registry) Len() int {
	return len(r.entities) + len(r.lasers) + len(r.particles) + len(r.popups)
}

func (r *Registry) pruneParticles(keep func(*Particle) bool) {
	r.particles = slices.DeleteFunc(r.particles, func(p *Particle) bool { return !keep(p) })
}

func (r *Registry) prunePopups(keep func(*Popup) bool) {
	r.popups = slices.DeleteFunc(r.popups, func(p *Popup) bool { return !keep(p) })
}

func (r *Registry) pruneLasers(keep func(*Laser) bool) {
	r.lasers = slices.DeleteFunc(r.lasers, func(l *Laser) bool { return !keep(l) })
}

func (r *Registry) pruneEntities(keep func(*Entity) bool) {
	r.entities = slices.DeleteFunc(r.entities, func(e *Entity) bool { return !keep(e) })
}

// clone deep-copies the registry for tick rollback.
func (r *Registry) clone() *Registry {
	c := &Registry{nextID: r.nextID, Snake: r.Snake.clone()}
	c.entities = make([]*Entity, len(r.entities))
	for i, e := range r.entities {
		cp := *e
		c.entities[i] = &cp
	}
	c.lasers = make([]*Laser, len(r.lasers))
	for i, l := range r.lasers {
		cp := *l
		cp.hits = append([]ID(nil), l.hits...)
		c.lasers[i] = &cp
	}
	c.particles = make([]*Particle, len(r.particles))
	for i, p := range r.particles {
		cp := *p
		c.particles[i] = &cp
	}
	c.popups = make([]*Popup, len(r.popups))
	for i, p := range r.popups {
		cp := *p
		c.popups[i] = &cp
	}
	return c
}
