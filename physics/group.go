package physics

import "fmt"

// Group is a collision group. Two objects can only touch if their groups interact.
type Group uint

const (
	GroupTerrain  Group = 1
	GroupPlayer   Group = 2
	GroupObstacle Group = 3
	GroupBody     Group = 4

	maxGroup = 31
)

func (g Group) String() string {
	switch g {
	case GroupTerrain:
		return "terrain"
	case GroupPlayer:
		return "player"
	case GroupObstacle:
		return "obstacle"
	case GroupBody:
		return "body"
	default:
		return fmt.Sprintf("group%d", uint(g))
	}
}

func (g Group) category() uint {
	return 1 << uint(g)
}

// interactions is a symmetric group-pair matrix stored as one mask per group.
type interactions [maxGroup + 1]uint

func defaultInteractions() interactions {
	var m interactions
	m.set(GroupTerrain, GroupPlayer, true)
	m.set(GroupPlayer, GroupObstacle, true)
	m.set(GroupBody, GroupTerrain, true)
	m.set(GroupBody, GroupPlayer, true)
	m.set(GroupBody, GroupBody, true)
	return m
}

func (m *interactions) set(a, b Group, on bool) {
	if on {
		m[a] |= b.category()
		m[b] |= a.category()
		return
	}
	m[a] &^= b.category()
	m[b] &^= a.category()
}

func (m *interactions) has(a, b Group) bool {
	return m[a]&b.category() != 0
}
