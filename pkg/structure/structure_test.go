package structure

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"testing"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

var simpleMapsTestCases = []any{
	map[string]string{"A": "0"}, map[string]bool{"B": true},
	map[string]int{"C": -2}, map[string]int8{"D": -3},
	map[string]int16{"E": -4}, map[string]int32{"F": -5},
	map[string]int64{"G": -6}, map[string]uint{"H": 7},
	map[string]uint8{"I": 8}, map[string]uint16{"J": 9},
	map[string]uint32{"K": 10}, map[string]uint64{"L": 11},
	map[string]float32{"M": 12.5}, map[string]float64{"N": 13.5},
	map[string]any{"O": []any{14}}, map[string]any{"P": []int{15}},
	map[string]time.Time{"Q": time.UnixMilli(16)},
	map[string]*regexp.Regexp{"R": regexp.MustCompile(`17`)},
	map[string][]byte{"S": []byte("18")},
}

var simpleStructTestCases = []any{
	struct{ A string }{A: "0"},
	struct{ B bool }{B: true},
	struct{ C int }{C: -2},
	struct{ D int8 }{D: -3},
	struct{ E int16 }{E: -4},
	struct{ F int32 }{F: -5},
	struct{ G int64 }{G: -6},
	struct{ H uint }{H: 7},
	struct{ I uint8 }{I: 8},
	struct{ J uint16 }{J: 9},
	struct{ K uint32 }{K: 10},
	struct{ L uint64 }{L: 11},
	struct{ M float32 }{M: 12.5},
	struct{ N float64 }{N: 13.5},
	struct{ O []any }{O: []any{14}},
	struct{ P []int }{P: []int{15}},
	struct{ Q time.Time }{Q: time.UnixMilli(16)},
	struct{ R *regexp.Regexp }{R: regexp.MustCompile(`17`)},
	struct{ S []byte }{S: []byte("18")},
}

var expectedSimple = [...]struct {
	key   string
	value any
}{
	{key: "A", value: "0"}, {key: "B", value: true},
	{key: "C", value: -2}, {key: "D", value: int8(-3)},
	{key: "E", value: int16(-4)}, {key: "F", value: int32(-5)},
	{key: "G", value: int64(-6)}, {key: "H", value: uint(7)},
	{key: "I", value: uint8(8)}, {key: "J", value: uint16(9)},
	{key: "K", value: uint32(10)}, {key: "L", value: uint64(11)},
	{key: "M", value: float32(12.5)}, {key: "N", value: 13.5},
	{key: "O", value: []any{14}}, {key: "P", value: []int{15}},
	{key: "Q", value: time.UnixMilli(16)},
	{key: "R", value: regexp.MustCompile(`17`)},
	{key: "S", value: []byte("18")},
}

var simpleSlicesTestCases = [...]any{
	[]string{"1", "2", "3"}, []bool{false, true, true}, []int{-1, 2, 3},
	[]int8{3, -2, 1}, []int64{-12, 67, 69}, []uint16{2, 2, 2},
	[]float32{1.5, 1.2, 4.3}, []float64{6.7, 6.9, 12.3},
	[]any{"string", 1, false},
	[...]string{"1", "2", "3"},
	[]time.Time{time.UnixMilli(1), time.UnixMilli(2), time.UnixMilli(3)},
	[][]byte{[]byte("a"), []byte("b"), []byte("c")},
}

var expectedSimpleSlices = [...][]any{
	{"1", "2", "3"}, {false, true, true}, {-1, 2, 3},
	{int8(3), int8(-2), int8(1)}, {int64(-12), int64(67), int64(69)},
	{uint16(2), uint16(2), uint16(2)},
	{float32(1.5), float32(1.2), float32(4.3)}, {6.7, 6.9, 12.3},
	{"string", 1, false},
	{"1", "2", "3"},
	{time.UnixMilli(1), time.UnixMilli(2), time.UnixMilli(3)},
	{[]byte("a"), []byte("b"), []byte("c")},
}

var primitives = []any{
	"a", true, 1, int8(1), uint64(1), 1.5, time.Now(),
	regexp.MustCompile(`a`), []byte("a"), uuid.New(),
}

type StructureTestSuite struct {
	suite.Suite
}

func (s *StructureTestSuite) TestSeq2SimpleMap() {
	for n, tc := range simpleMapsTestCases {
		s.Run(fmt.Sprintf("%T", tc), func() {
			seq, l, err := Seq2(tc)
			if !s.NoError(err) {
				return
			}
			s.Equal(1, l)
			res := maps.Collect(seq)
			s.Equal(map[string]any{expectedSimple[n].key: expectedSimple[n].value}, res)
		})
	}
}

func (s *StructureTestSuite) TestSeq2SimpleStruct() {
	for n, tc := range simpleStructTestCases {
		s.Run(fmt.Sprintf("%T", expectedSimple[n].value), func() {
			seq, l, err := Seq2(tc)
			if !s.NoError(err) {
				return
			}
			s.Equal(1, l)
			res := maps.Collect(seq)
			s.Equal(map[string]any{expectedSimple[n].key: expectedSimple[n].value}, res)
		})
	}
}

// Tags rename fields, omit them or drop them when empty.
func (s *StructureTestSuite) TestSeq2Tags() {
	type tagged struct {
		NameChanges     bool    `godm:"becomesTheTag"`
		TagRespectsCase float64 `godm:"tagRespectsCase"`
		Ignored         string  `godm:"-"`
		NilOmitted      any     `godm:",omitempty"`
		ShowsUp         any     `godm:",omitempty"`
		ZeroIsKept      int     `godm:",omitempty"`
		ZeroOmitted     int     `godm:",omitzero"`
		NonZero         int     `godm:"non_zero,omitzero"`
		unexported      int
	}

	seq, l, err := Seq2(tagged{
		NameChanges:     true,
		TagRespectsCase: 6.7,
		Ignored:         "x",
		ShowsUp:         "y",
		NonZero:         3,
		unexported:      4,
	})
	s.NoError(err)
	s.Equal(5, l)
	s.Equal(map[string]any{
		"becomesTheTag":   true,
		"tagRespectsCase": 6.7,
		"ShowsUp":         "y",
		"ZeroIsKept":      0,
		"non_zero":        3,
	}, maps.Collect(seq))
}

func (s *StructureTestSuite) TestSeq2Primitive() {
	for _, p := range primitives {
		s.Run(fmt.Sprintf("%T", p), func() {
			seq, l, err := Seq2(p)
			s.ErrorIs(err, ErrorNonObject{Type: reflect.TypeOf(p)})
			s.Zero(l)
			s.Nil(seq)
		})
	}
}

func (s *StructureTestSuite) TestSeq2Nil() {
	seq, l, err := Seq2(nil)
	s.ErrorIs(err, ErrNilObj)
	s.Zero(l)
	s.Nil(seq)

	_, _, err = Seq2((*map[string]string)(nil))
	s.ErrorIs(err, ErrNilObj)
}

func (s *StructureTestSuite) TestSeq2Pointer() {
	seq, l, err := Seq2(&map[string]int{"a": 1})
	s.NoError(err)
	s.Equal(1, l)
	s.Equal(map[string]any{"a": 1}, maps.Collect(seq))

	st := &struct{ A string }{A: "b"}
	seq, _, err = Seq2(&st)
	s.NoError(err)
	s.Equal(map[string]any{"A": "b"}, maps.Collect(seq))

	_, _, err = Seq2(new(string))
	s.ErrorIs(err, ErrorNonObject{Type: reflect.TypeOf("")})
}

// Maps with keys other than strings are not objects.
func (s *StructureTestSuite) TestSeq2NonStringKey() {
	for _, m := range []any{map[int]string{1: "a"}, map[bool]any{true: 1}} {
		_, _, err := Seq2(m)
		s.ErrorAs(err, &ErrorNonObject{})
	}
}

func (s *StructureTestSuite) TestSeq2Stop() {
	seq, _, err := Seq2(map[string]any{"a": 1, "b": 2, "c": 3})
	s.NoError(err)
	count := 0
	for range seq {
		count++
		break
	}
	s.Equal(1, count)

	seq, _, err = Seq2(struct{ A, B int }{})
	s.NoError(err)
	count = 0
	for range seq {
		count++
		break
	}
	s.Equal(1, count)
}

func (s *StructureTestSuite) TestSeq() {
	for n, tc := range simpleSlicesTestCases {
		s.Run(fmt.Sprintf("%T", tc), func() {
			seq, l, err := Seq(tc)
			if !s.NoError(err) {
				return
			}
			s.Equal(3, l)
			s.Equal(expectedSimpleSlices[n], slices.Collect(seq))
		})
	}
}

func (s *StructureTestSuite) TestSeqInvalid() {
	for _, p := range append(primitives, map[string]any{}, struct{}{}, new([]int)) {
		s.Run(fmt.Sprintf("%T", p), func() {
			seq, l, err := Seq(p)
			s.ErrorIs(err, ErrorNonList{Type: reflect.TypeOf(p)})
			s.Zero(l)
			s.Nil(seq)
		})
	}

	_, _, err := Seq(nil)
	s.ErrorIs(err, ErrNilObj)
}

func (s *StructureTestSuite) TestSeqStop() {
	for _, l := range []any{[]any{1, 2, 3}, []uint8{1, 2, 3}} {
		seq, _, err := Seq(l)
		s.NoError(err)
		count := 0
		for range seq {
			count++
			break
		}
		s.Equal(1, count)
	}
}

func (s *StructureTestSuite) TestIsMap() {
	s.True(IsMap(map[string]any{}))
	s.True(IsMap(map[string]int{}))
	s.True(IsMap(&map[string]string{}))
	s.False(IsMap(map[int]any{}))
	s.False(IsMap(struct{}{}))
	s.False(IsMap((*map[string]any)(nil)))
	s.False(IsMap(nil))
	s.False(IsMap("a"))
}

func (s *StructureTestSuite) TestIsList() {
	s.True(IsList([]any{}))
	s.True(IsList([]int{1}))
	s.True(IsList([2]string{}))
	s.False(IsList([]byte("a")))
	s.False(IsList(uuid.New()))
	s.False(IsList(nil))
	s.False(IsList(map[string]any{}))
}

func (s *StructureTestSuite) TestToSlice() {
	l := []any{1, "a"}
	res, ok := ToSlice(l)
	s.True(ok)
	s.Equal(l, res)

	res, ok = ToSlice([]int{1, 2})
	s.True(ok)
	s.Equal([]any{1, 2}, res)

	res, ok = ToSlice("a")
	s.False(ok)
	s.Nil(res)
}

func (s *StructureTestSuite) TestToMap() {
	res, ok := ToMap(map[string]int{"a": 1})
	s.True(ok)
	s.Equal(map[string]any{"a": 1}, res)

	res, ok = ToMap(struct{ A int }{})
	s.False(ok)
	s.Nil(res)

	_, ok = ToMap([]any{})
	s.False(ok)
}

func (s *StructureTestSuite) TestAsInteger() {
	valid := []any{
		int(0), int8(1), int16(2), int32(3), int64(4), uint(5),
		uint8(6), uint16(7), uint32(8), uint64(9), float32(10),
		float64(11),
	}

	invalid := []any{float32(10.1), float64(11.2), true, false, "text"}

	s.Run("Valid", func() {
		for n, v := range valid {
			s.Run(fmt.Sprintf("%T", v), func() {
				integer, ok := AsInteger(v)
				if !s.True(ok) {
					return
				}
				s.Equal(n, integer)
			})
		}
	})

	s.Run("Invalid", func() {
		for _, i := range invalid {
			s.Run(fmt.Sprintf("%T", i), func() {
				integer, ok := AsInteger(i)
				if !s.False(ok) {
					return
				}
				s.Zero(integer)
			})
		}
	})
}

func (s *StructureTestSuite) TestAsFloat() {
	f, ok := AsFloat(float32(1.5))
	s.True(ok)
	s.Equal(1.5, f)

	f, ok = AsFloat(uint8(3))
	s.True(ok)
	s.Equal(3.0, f)

	_, ok = AsFloat("3")
	s.False(ok)
}

func (s *StructureTestSuite) TestContains() {
	contains := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	notContains := []int{0, 1, 2, 3, 4, 5, 6, 7, 9, 10, 11, 12, 13, 14, 15}
	var fnErr error
	fn := func(a, b int) (bool, error) { return a == b, fnErr }

	s.Run("Existent", func() {
		c, err := Contains(contains, 8, fn)
		if !s.NoError(err) {
			return
		}
		s.True(c)
	})

	s.Run("NonExistent", func() {
		c, err := Contains(notContains, 8, fn)
		if !s.NoError(err) {
			return
		}
		s.False(c)
	})

	fnErr = fmt.Errorf("compare error")

	s.Run("ExistentFail", func() {
		_, err := Contains(contains, 8, fn)
		s.ErrorIs(err, fnErr)
	})

	s.Run("NonExistentFail", func() {
		_, err := Contains(notContains, 8, fn)
		s.ErrorIs(err, fnErr)
	})
}

func (s *StructureTestSuite) TestErrorMessages() {
	s.Equal("expected object, got string", ErrorNonObject{Type: reflect.TypeOf("")}.Error())
	s.Equal("expected object, got nil", ErrorNonObject{}.Error())
	s.Equal("expected list, got int", ErrorNonList{Type: reflect.TypeOf(1)}.Error())
	s.Equal("expected list, got nil", ErrorNonList{}.Error())
}

func TestStructureTestSuite(t *testing.T) {
	suite.Run(t, new(StructureTestSuite))
}
