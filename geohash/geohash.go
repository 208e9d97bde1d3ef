package geohash

import (
	"math"
	"strconv"
	"strings"
)

// Base32 is the geohash alphabet. A character's index is its 5-bit value.
const Base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// DefaultLength is the hash length used when the caller does not pick one.
const DefaultLength = 5

const (
	minLat = -90.0
	maxLat = 90.0
	minLon = -180.0
	maxLon = 180.0
)

// base32Index maps a byte to its alphabet index, or -1. Upper case letters
// resolve to the same index as their lower case form.
var base32Index [256]int8

func init() {
	for i := range base32Index {
		base32Index[i] = -1
	}
	for i := 0; i < len(Base32); i++ {
		c := Base32[i]
		base32Index[c] = int8(i)
		if c >= 'a' && c <= 'z' {
			base32Index[c-'a'+'A'] = int8(i)
		}
	}
}

// bitBudget returns how many latitude and longitude bits a hash of the given
// length carries. Longitude takes the extra bit when the total is odd.
func bitBudget(length uint) (latBits, lonBits uint) {
	if length%2 == 0 {
		latBits = (length / 2) * 5
		return latBits, latBits
	}
	latBits = ((length+1)/2)*5 - 3
	return latBits, latBits + 1
}

// getBits bisects [min, max] n times, emitting 1 when the coordinate lies in
// the upper half.
func getBits(coordinate, min, max float64, n uint) []byte {
	bits := make([]byte, n)
	for i := uint(0); i < n; i++ {
		mid := (min + max) / 2
		if coordinate > mid {
			bits[i] = 1
			min = mid
		} else {
			max = mid
		}
	}
	return bits
}

// getCoordinate walks the bits back down the interval and returns the
// midpoint of the final cell.
func getCoordinate(min, max float64, bits []byte) float64 {
	for _, b := range bits {
		mid := (min + max) / 2
		if b == 1 {
			min = mid
		} else {
			max = mid
		}
	}
	return (min + max) / 2
}

// Encode converts coordinates into a geohash of exactly length characters.
// Coordinates outside [-90, 90] x [-180, 180] are rejected with a *DomainError.
func Encode(lat, lon float64, length uint) (string, error) {
	if err := checkRange("latitude", lat, minLat, maxLat); err != nil {
		return "", err
	}
	if err := checkRange("longitude", lon, minLon, maxLon); err != nil {
		return "", err
	}

	latBits, lonBits := bitBudget(length)
	lats := getBits(lat, minLat, maxLat, latBits)
	lons := getBits(lon, minLon, maxLon, lonBits)

	// Longitude occupies even positions, latitude odd ones.
	var sb strings.Builder
	sb.Grow(int(length))
	var group, n int
	for i := uint(0); i < latBits+lonBits; i++ {
		var bit byte
		if i%2 == 0 {
			bit = lons[i/2]
		} else {
			bit = lats[i/2]
		}
		group = group<<1 | int(bit)
		n++
		if n == 5 {
			sb.WriteByte(Base32[group])
			group, n = 0, 0
		}
	}
	return sb.String(), nil
}

// interleavedBits expands a hash into its bit string. Characters outside the
// alphabet become 00000; the position of the first such character is
// returned, or -1 when every character is valid.
func interleavedBits(hash string) ([]byte, int) {
	bits := make([]byte, 0, len(hash)*5)
	invalid := -1
	for i := 0; i < len(hash); i++ {
		idx := base32Index[hash[i]]
		if idx < 0 {
			if invalid < 0 {
				invalid = i
			}
			idx = 0
		}
		for shift := 4; shift >= 0; shift-- {
			bits = append(bits, byte(idx>>uint(shift))&1)
		}
	}
	return bits, invalid
}

func decodeBits(hash string, bits []byte) (lat, lon float64) {
	latBits := make([]byte, 0, len(bits)/2)
	lonBits := make([]byte, 0, len(bits)/2+1)
	for i, b := range bits {
		if i%2 == 0 {
			lonBits = append(lonBits, b)
		} else {
			latBits = append(latBits, b)
		}
	}

	digits := len(hash) - 2
	lat = round(getCoordinate(minLat, maxLat, latBits), digits)
	lon = round(getCoordinate(minLon, maxLon, lonBits), digits)
	return lat, lon
}

// Decode returns the center of the cell named by hash, rounded to
// len(hash)-2 decimal digits. Characters outside the alphabet are read as
// zero rather than rejected; use DecodeStrict to reject them.
func Decode(hash string) (lat, lon float64) {
	bits, _ := interleavedBits(hash)
	return decodeBits(hash, bits)
}

// DecodeStrict is Decode but fails with a *DecodeError on the first
// character outside the alphabet.
func DecodeStrict(hash string) (lat, lon float64, err error) {
	bits, invalid := interleavedBits(hash)
	if invalid >= 0 {
		return 0, 0, &DecodeError{Hash: hash, Position: invalid, Char: hash[invalid]}
	}
	lat, lon = decodeBits(hash, bits)
	return lat, lon, nil
}

// round rounds half away from zero. Negative digit counts round to tens,
// hundreds and so on.
func round(v float64, digits int) float64 {
	if digits < 0 {
		p := math.Pow10(-digits)
		return math.Round(v/p) * p
	}
	// Past 15 digits a float64 has nothing left to round.
	if digits > 15 {
		return v
	}
	p := math.Pow10(digits)
	r := math.Round(v*p) / p
	// Reparse so the result is the float nearest to the decimal value.
	if f, err := strconv.ParseFloat(strconv.FormatFloat(r, 'f', digits, 64), 64); err == nil {
		return f
	}
	return r
}

func checkRange(field string, v, min, max float64) error {
	if math.IsNaN(v) || v < min || v > max {
		return &DomainError{Field: field, Value: v, Min: min, Max: max}
	}
	return nil
}

// Codec bundles the caller's preferred hash length and decode policy.
type Codec struct {
	Length uint
	Strict bool
}

// Encode uses the codec's length, or DefaultLength when unset.
func (c Codec) Encode(lat, lon float64) (string, error) {
	length := c.Length
	if length == 0 {
		length = DefaultLength
	}
	return Encode(lat, lon, length)
}

// Decode applies the codec's decode policy.
func (c Codec) Decode(hash string) (lat, lon float64, err error) {
	if c.Strict {
		return DecodeStrict(hash)
	}
	lat, lon = Decode(hash)
	return lat, lon, nil
}
