package timegetter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TimeGetterTestSuite struct {
	suite.Suite
	tg *TimeGetter
}

func (s *TimeGetterTestSuite) SetupTest() {
	s.tg = NewTimeGetter().(*TimeGetter)
}

// The current time is returned in UTC.
func (s *TimeGetterTestSuite) TestGetTime() {
	before := time.Now().Truncate(time.Millisecond)

	result := s.tg.GetTime()

	after := time.Now()

	s.NotZero(result)
	s.Equal(time.UTC, result.Location())
	s.False(result.Before(before))
	s.False(result.After(after))
}

// Times are truncated to milliseconds.
func (s *TimeGetterTestSuite) TestPrecision() {
	loc := time.FixedZone("UTC-3", -3*60*60)
	clock := func() time.Time {
		return time.Date(2024, 5, 6, 7, 8, 9, 123456789, loc)
	}
	s.tg = NewTimeGetter(WithClock(clock)).(*TimeGetter)

	expected := time.Date(2024, 5, 6, 10, 8, 9, 123000000, time.UTC)
	s.Equal(expected, s.tg.GetTime())
}

// A nil clock keeps the default one.
func (s *TimeGetterTestSuite) TestNilClock() {
	s.tg = NewTimeGetter(WithClock(nil)).(*TimeGetter)
	s.NotZero(s.tg.GetTime())
}

func TestTimeGetterTestSuite(t *testing.T) {
	suite.Run(t, new(TimeGetterTestSuite))
}
