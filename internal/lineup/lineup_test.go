package lineup

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roles map[string][]string

func (r roles) Lookup(name string) ([]string, bool) {
	for k, v := range r {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func seeded(seed uint64) Option {
	return WithShuffler(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).Shuffle)
}

func players(names ...string) []Player {
	out := make([]Player, len(names))
	for i, n := range names {
		out[i] = Player{ID: "id-" + n, Name: n}
	}
	return out
}

func formation(slots ...Slot) Formation {
	return Formation{Name: "test", Slots: slots}
}

func byPosition(r Result) map[string]string {
	out := make(map[string]string)
	for _, a := range r.Assignments {
		out[a.Slot.Position] = a.Player.Name
	}
	return out
}

func TestAssign_SpecialistBeatsFlexForAttack(t *testing.T) {
	f := formation(slot(TierAttack, "ST"), slot(TierDefense, "CB"))
	r := roles{"X": {"ST"}, "Y": {}}

	for seed := uint64(0); seed < 200; seed++ {
		res := NewEngine(r, seeded(seed)).Assign(players("X", "Y"), f)
		require.Equal(t, map[string]string{"ST": "X", "CB": "Y"}, byPosition(res), "seed %d", seed)
		assert.Empty(t, res.Substitutes)
	}
}

func TestAssign_TierPriority(t *testing.T) {
	f := formation(slot(TierAttack, "ST"), slot(TierDefense, "CB"))
	r := roles{"A": {"ST"}, "B": {"CB"}}

	for seed := uint64(0); seed < 200; seed++ {
		res := NewEngine(r, seeded(seed)).Assign(players("A", "B"), f)
		require.Equal(t, map[string]string{"ST": "A", "CB": "B"}, byPosition(res), "seed %d", seed)
	}
}

func TestAssign_AttackPicksBeforeDefense(t *testing.T) {
	// D can play both; the attack slot is processed first and takes D even
	// though the defense slot is declared first.
	f := formation(slot(TierDefense, "CB"), slot(TierAttack, "ST"))
	r := roles{"D": {"CB", "ST"}, "E": {"GK"}}

	for seed := uint64(0); seed < 50; seed++ {
		res := NewEngine(r, seeded(seed)).Assign(players("D", "E"), f)
		got := byPosition(res)
		assert.Equal(t, "D", got["ST"])
		assert.Equal(t, "E", got["CB"])
		for _, a := range res.Assignments {
			if a.Player.Name == "E" {
				assert.True(t, a.Fallback)
			}
		}
	}
}

func TestAssign_CoverageAndDisjointness(t *testing.T) {
	f := Builtin()[0]
	r := roles{
		"p0": {"ST"}, "p1": {"CB", "LB"}, "p2": {"GK"}, "p3": {"CDM"},
		"p4": {"LW", "RW"}, "p5": {"CAM", "ST"},
	}

	for n := 0; n <= 14; n++ {
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("p%d", i)
		}
		in := players(names...)

		for seed := uint64(0); seed < 20; seed++ {
			res := NewEngine(r, seeded(seed)).Assign(in, f)

			wantFilled := min(n, len(f.Slots))
			require.Len(t, res.Assignments, wantFilled)
			require.Len(t, res.Substitutes, n-wantFilled)

			seen := make(map[string]int)
			slotsUsed := make(map[int]bool)
			for _, a := range res.Assignments {
				seen[a.Player.ID]++
				assert.False(t, slotsUsed[a.Index], "slot %d filled twice", a.Index)
				slotsUsed[a.Index] = true
				assert.Equal(t, f.Slots[a.Index], a.Slot)
			}
			for _, p := range res.Substitutes {
				seen[p.ID]++
			}
			require.Len(t, seen, n)
			for id, count := range seen {
				assert.Equal(t, 1, count, "player %s placed %d times", id, count)
			}
		}
	}
}

func TestAssign_EmptyInput(t *testing.T) {
	res := NewEngine(roles{}).Assign(nil, Builtin()[1])
	assert.Empty(t, res.Assignments)
	assert.Empty(t, res.Substitutes)
	assert.Equal(t, "4-1-2-1-2", res.Formation)
}

func TestAssign_DoesNotMutateInputs(t *testing.T) {
	f := Builtin()[0]
	fCopy := Formation{Name: f.Name, Slots: append([]Slot(nil), f.Slots...)}
	in := players("a", "b", "c", "d")
	inCopy := append([]Player(nil), in...)

	NewEngine(roles{"a": {"ST"}}, seeded(7)).Assign(in, f)

	assert.Equal(t, fCopy, f)
	assert.Equal(t, inCopy, in)
}

func TestAssign_CaseInsensitiveCodes(t *testing.T) {
	f := formation(slot(TierAttack, "st"), slot(TierDefense, "CB"))
	r := roles{"X": {"St"}, "Y": {"cb"}}

	res := NewEngine(r, seeded(1)).Assign(players("Y", "X"), f)
	assert.Equal(t, map[string]string{"st": "X", "CB": "Y"}, byPosition(res))
	for _, a := range res.Assignments {
		assert.False(t, a.Fallback)
	}
}

func TestResult_ByTier(t *testing.T) {
	f := Builtin()[0]
	res := NewEngine(roles{}, seeded(3)).Assign(players("a", "b", "c", "d", "e", "f", "g", "h", "i", "j"), f)

	def := res.ByTier(TierDefense)
	require.Len(t, def, 4)
	assert.Equal(t, "LB", def[0].Slot.Position)
	assert.Equal(t, "RB", def[3].Slot.Position)
	assert.Len(t, res.ByTier(TierMidfield), 2)
	assert.Len(t, res.ByTier(TierAttack), 4)
}

func TestFormation_Validate(t *testing.T) {
	for _, f := range Builtin() {
		assert.NoError(t, f.Validate())
	}
	assert.ErrorIs(t, Formation{Name: "x"}.Validate(), ErrInvalidFormation)
	assert.ErrorIs(t, formation(Slot{Position: "ST", Tier: "keeper"}).Validate(), ErrInvalidFormation)
	assert.ErrorIs(t, Formation{Slots: []Slot{slot(TierAttack, "ST")}}.Validate(), ErrInvalidFormation)
}
