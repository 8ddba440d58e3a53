package metric

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"
)

var (
	regxNumOnly = regexp.MustCompile(`^-?[0-9]+$`)
)

// Number keeps value read from text based stats (such as redis INFO) as is,
// but marshal it into proper JSON number or boolean when possible.
type Number string

func NewInt64(n int64) Number {
	return Number(strconv.FormatInt(n, 10))
}

func NewFloat64(n float64) Number {
	return Number(strconv.FormatFloat(n, 'f', -1, 64))
}

func (n Number) String() string {
	return string(n)
}

// Int64 return the number as int64, zero when it is not an integer.
func (n Number) Int64() int64 {
	i, _ := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
	return i
}

func (n Number) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(n))
	var val interface{} = s

	switch {
	case s == "":
		val = nil

	case regxNumOnly.MatchString(s):
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			val = i
		}

	case strings.Count(s, ".") == 1:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			val = f
		}

	default:
		if b, err := strconv.ParseBool(s); err == nil {
			val = b
		}
	}

	return json.Marshal(val)
}

func (n *Number) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	if v == nil {
		*n = ""
		return nil
	}

	*n = Number(fmt.Sprint(v))
	return nil
}
