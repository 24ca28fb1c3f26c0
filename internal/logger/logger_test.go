package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type LoggerTestSuite struct {
	suite.Suite
}

// Entries are written as JSON with the service name.
func (s *LoggerTestSuite) TestJSON() {
	buf := new(bytes.Buffer)
	log, err := New(Config{Level: "DEBUG", Output: buf})
	s.NoError(err)

	log.Debug().Str("model", "User").Msg("key declared")
	var entry map[string]any
	s.NoError(json.Unmarshal(buf.Bytes(), &entry))
	s.Equal("debug", entry["level"])
	s.Equal("godm", entry["service"])
	s.Equal("User", entry["model"])
	s.Equal("key declared", entry["message"])
}

// Entries below the level are dropped.
func (s *LoggerTestSuite) TestLevel() {
	buf := new(bytes.Buffer)
	log, err := New(Config{Output: buf})
	s.NoError(err)
	log.Debug().Msg("hidden")
	s.Zero(buf.Len())
	log.Info().Msg("shown")
	s.NotZero(buf.Len())
}

// Pretty output is not JSON.
func (s *LoggerTestSuite) TestPretty() {
	buf := new(bytes.Buffer)
	log, err := New(Config{Pretty: true, Output: buf})
	s.NoError(err)
	log.Info().Msg("hello")
	s.Contains(buf.String(), "hello")
	s.False(json.Valid(buf.Bytes()))
}

// Unknown levels are rejected.
func (s *LoggerTestSuite) TestInvalidLevel() {
	_, err := New(Config{Level: "loud"})
	s.Error(err)
}

func TestLoggerTestSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}
