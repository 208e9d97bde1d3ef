package geohash

// Direction is one of the four cardinal directions.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

var directionNames = [...]string{"North", "East", "South", "West"}

func (d Direction) String() string {
	if d < North || d > West {
		return "Unknown"
	}
	return directionNames[d]
}

// Parity of a character position within a hash. Even positions start with a
// longitude bit, odd positions with a latitude bit.
type Parity int

const (
	Even Parity = iota
	Odd
)

func parityOf(pos int) Parity {
	if pos%2 == 0 {
		return Even
	}
	return Odd
}

// neighborChars[p][d][i] is the character of the cell adjacent, in direction
// d, to the cell whose character has alphabet index i at parity p.
//
// borderChars[p][d] lists the characters whose neighbor in direction d lies
// outside the parent cell.
var (
	neighborChars [2][4]string
	borderChars   [2][4]string
)

func init() {
	neighborChars[Even] = [4]string{
		North: "238967debc01fg45kmstqrwxuvhjyznp",
		East:  "14365h7k9dcfesgujnmqp0r2twvyx8zb",
		South: "bc01fg45238967deuvhjyznpkmstqrwx",
		West:  "p0r21436x8zb9dcf5h7kjnmqesgutwvy",
	}
	borderChars[Even] = [4]string{
		North: "bcfguvyz",
		East:  "prxz",
		South: "0145hjnp",
		West:  "028b",
	}

	// Odd positions swap the roles of the axes.
	rotate := [4]Direction{North: East, East: North, South: West, West: South}
	for d, from := range rotate {
		neighborChars[Odd][d] = neighborChars[Even][from]
		borderChars[Odd][d] = borderChars[Even][from]
	}
}

func isBorder(p Parity, d Direction, idx int8) bool {
	border := borderChars[p][d]
	for i := 0; i < len(border); i++ {
		if base32Index[border[i]] == idx {
			return true
		}
	}
	return false
}

// CalculateNeighbor returns the hash of the adjacent cell in direction d.
//
// The last character is replaced by its neighbor; while the replaced
// character sat on the border, the carry moves one position left. A carry
// that reaches the first character exhausts the prefix and yields "", as do
// an empty hash and any character outside the alphabet. The result is lower
// case.
func CalculateNeighbor(hash string, d Direction) string {
	if len(hash) == 0 || d < North || d > West {
		return ""
	}

	out := make([]byte, len(hash))
	for i := 0; i < len(hash); i++ {
		idx := base32Index[hash[i]]
		if idx < 0 {
			return ""
		}
		out[i] = Base32[idx]
	}

	for i := len(out) - 1; i > 0; i-- {
		p := parityOf(i)
		idx := base32Index[out[i]]
		out[i] = neighborChars[p][d][idx]
		if !isBorder(p, d, idx) {
			return string(out)
		}
	}
	return ""
}

// Neighbors maps a compass name ("North", "NorthEast", ...) to a hash.
type Neighbors map[string]string

var compassOrder = [...]string{
	"North", "NorthEast", "East", "SouthEast",
	"South", "SouthWest", "West", "NorthWest",
}

// Cells returns the non-empty neighbor hashes in compass order, starting at
// North and turning clockwise.
func (n Neighbors) Cells() []string {
	cells := make([]string, 0, len(compassOrder))
	for _, name := range compassOrder {
		if h := n[name]; h != "" {
			cells = append(cells, h)
		}
	}
	return cells
}

// GetNeighbors returns the eight cells surrounding hash. Directions that run
// off the edge of the hash are mapped to "".
func GetNeighbors(hash string) Neighbors {
	north := CalculateNeighbor(hash, North)
	south := CalculateNeighbor(hash, South)
	return Neighbors{
		"North":     north,
		"East":      CalculateNeighbor(hash, East),
		"South":     south,
		"West":      CalculateNeighbor(hash, West),
		"NorthEast": CalculateNeighbor(north, East),
		"SouthEast": CalculateNeighbor(south, East),
		"SouthWest": CalculateNeighbor(south, West),
		"NorthWest": CalculateNeighbor(north, West),
	}
}
