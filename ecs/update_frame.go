package ecs

// UpdateFrame is handed to every system during one tick.
// The time step is implicit: every tick advances the simulation by one unit.
type UpdateFrame struct {
	Tick     uint64
	Commands *Commands
	Storage  *Storage
}
