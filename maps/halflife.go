// SPDX-License-Identifier: GPL-2.0-or-later

package maps

func names(ids ...string) []Map {
	m := make([]Map, len(ids))
	for i, id := range ids {
		m[i] = Map{Name: id}
	}
	return m
}

func parentless(ms []Map) []Map {
	for i := range ms {
		ms[i].Parent = new(string)
	}
	return ms
}

func withParent(ms []Map, id, parent string) []Map {
	for i := range ms {
		if ms[i].Name == id {
			ms[i].Parent = &parent
		}
	}
	return ms
}

// HalfLife returns the single player campaign of Half-Life. The Xen levels
// only connect among themselves and start their own chains.
func HalfLife() *Campaign {
	return &Campaign{
		Name:  "Half-Life",
		Paths: []string{"valve"},
		Wads:  []string{"halflife", "liquids", "xeno", "decals"},
		Roots: []string{"c0a0"},
		Chapters: []Chapter{
			{Name: "Black Mesa Inbound", Maps: names("c0a0", "c0a0a", "c0a0b", "c0a0c", "c0a0d", "c0a0e")},
			{Name: "Anomalous Materials", Maps: names("c1a0", "c1a0d", "c1a0a", "c1a0b", "c1a0e")},
			{Name: "Unforeseen Consequences", Maps: names("c1a1", "c1a1a", "c1a1f", "c1a1b", "c1a1c", "c1a1d")},
			{Name: "Office Complex", Maps: names("c1a2", "c1a2a", "c1a2b", "c1a2c", "c1a2d")},
			{Name: "We've Got Hostiles", Maps: names("c1a3", "c1a3a", "c1a3b", "c1a3c", "c1a3d")},
			{Name: "Blast Pit", Maps: names("c1a4", "c1a4k", "c1a4b", "c1a4f", "c1a4d", "c1a4e", "c1a4i", "c1a4g", "c1a4j")},
			{Name: "Power Up", Maps: names("c2a1", "c2a1a", "c2a1b")},
			{Name: "On A Rail", Maps: names("c2a2", "c2a2a", "c2a2b1", "c2a2b2", "c2a2c", "c2a2d", "c2a2e", "c2a2f", "c2a2g", "c2a2h")},
			{Name: "Apprehension", Maps: withParent(names("c2a3", "c2a3a", "c2a3b", "c2a3c", "c2a3d", "c2a3e"), "c2a3e", "c2a4")},
			{Name: "Residue Processing", Maps: names("c2a4", "c2a4a", "c2a4b", "c2a4c")},
			{Name: "Questionable Ethics", Maps: names("c2a4d", "c2a4e", "c2a4f", "c2a4g")},
			{Name: "Surface Tension", Maps: names("c2a5", "c2a5w", "c2a5x", "c2a5a", "c2a5b", "c2a5c", "c2a5d", "c2a5e", "c2a5f", "c2a5g")},
			{Name: "Forget About Freeman", Maps: withParent(names("c3a1", "c3a1a", "c3a1b"), "c3a1a", "c3a1")},
			{Name: "Lambda Core", Maps: names("c3a2e", "c3a2", "c3a2a", "c3a2b", "c3a2c", "c3a2d", "c3a2f")},
			{Name: "Xen", Maps: parentless(names("c4a1"))},
			{Name: "Gonarch's Lair", Maps: withParent(names("c4a2", "c4a2a", "c4a2b"), "c4a2", "")},
			{Name: "Interloper", Maps: withParent(withParent(withParent(names("c4a1a", "c4a1b", "c4a1c", "c4a1d", "c4a1e", "c4a1f"),
				"c4a1a", ""), "c4a1c", ""), "c4a1f", "")},
			{Name: "Nihilanth", Maps: parentless(names("c4a3"))},
			{Name: "Endgame", Maps: parentless(names("c5a1"))},
		},
	}
}
