package geohash

import (
	"math/rand"
	"testing"

	mgeohash "github.com/mmcloughlin/geohash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNeighbors(t *testing.T) {
	hash, err := Encode(25.813646, -80.133761, 7)
	require.NoError(t, err)
	require.Equal(t, "dhx4be0", hash)

	assert.Equal(t, Neighbors{
		"North":     "dhx4be2",
		"East":      "dhx4be1",
		"South":     "dhx4bdb",
		"West":      "dhx4b7p",
		"NorthEast": "dhx4be3",
		"SouthEast": "dhx4bdc",
		"SouthWest": "dhx4b6z",
		"NorthWest": "dhx4b7r",
	}, GetNeighbors(hash))
}

func TestNeighborsCells(t *testing.T) {
	n := GetNeighbors("dhx4be0")
	assert.Equal(t, []string{
		"dhx4be2", "dhx4be3", "dhx4be1", "dhx4bdc",
		"dhx4bdb", "dhx4b6z", "dhx4b7p", "dhx4b7r",
	}, n.Cells())

	n["East"] = ""
	assert.Len(t, n.Cells(), 7)
}

func TestCalculateNeighborEdges(t *testing.T) {
	tests := []struct {
		name string
		hash string
		dir  Direction
		want string
	}{
		{"empty", "", North, ""},
		{"single character", "u", North, ""},
		{"carry exhausts prefix", "zzz", North, ""},
		{"carry into parent", "dhx4bez", North, "dhx4bsp"},
		{"carry east", "dhx4bez", East, "dhx4bgb"},
		{"no carry", "u4pruydqqvj", South, "u4pruydqquv"},
		{"upper case input", "DHX4BE0", North, "dhx4be2"},
		{"invalid character", "dhx4b!0", North, ""},
		{"unknown direction", "dhx4be0", Direction(9), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateNeighbor(tt.hash, tt.dir))
		})
	}
}

func TestNeighborSymmetry(t *testing.T) {
	opposite := map[Direction]Direction{North: South, South: North, East: West, West: East}
	r := rand.New(rand.NewSource(3))

	for i := 0; i < 5000; i++ {
		hash := randomHash(r, 1+r.Intn(12))
		for d, back := range opposite {
			n := CalculateNeighbor(hash, d)
			if n == "" {
				continue
			}
			assert.Equal(t, hash, CalculateNeighbor(n, back), "%s of %s", d, hash)
		}
	}
}

func TestNeighborsMatchReference(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		// Stay clear of the poles and the antimeridian, where the reference
		// wraps and this package stops.
		lat := r.Float64()*120 - 60
		lon := r.Float64()*300 - 150
		length := uint(3 + r.Intn(10))

		hash, err := Encode(lat, lon, length)
		require.NoError(t, err)

		got := GetNeighbors(hash)
		want := mgeohash.Neighbors(hash)
		require.Len(t, want, len(compassOrder))
		for j, name := range compassOrder {
			// Carries that run off the first character are reported empty
			// even when a cell exists geometrically.
			if got[name] == "" {
				continue
			}
			assert.Equal(t, want[j], got[name], "%s of %s", name, hash)
		}
	}
}

func TestOddTablesRotated(t *testing.T) {
	assert.Equal(t, neighborChars[Even][East], neighborChars[Odd][North])
	assert.Equal(t, neighborChars[Even][North], neighborChars[Odd][East])
	assert.Equal(t, neighborChars[Even][West], neighborChars[Odd][South])
	assert.Equal(t, neighborChars[Even][South], neighborChars[Odd][West])
	assert.Equal(t, borderChars[Even][East], borderChars[Odd][North])
	assert.Equal(t, borderChars[Even][South], borderChars[Odd][West])
}

func TestNeighborTablesArePermutations(t *testing.T) {
	for p := Even; p <= Odd; p++ {
		for d := North; d <= West; d++ {
			table := neighborChars[p][d]
			require.Len(t, table, len(Base32))
			seen := make(map[rune]bool)
			for _, c := range table {
				seen[c] = true
			}
			assert.Len(t, seen, len(Base32), "%v %s", p, d)
		}
	}
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "North", North.String())
	assert.Equal(t, "West", West.String())
	assert.Equal(t, "Unknown", Direction(-1).String())
}

func randomHash(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = Base32[r.Intn(len(Base32))]
	}
	return string(b)
}
