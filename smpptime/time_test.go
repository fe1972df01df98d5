package smpptime_test

import (
	gotime "time"

	"github.com/guyt101z/vumi-smpp-client/smpptime"
	"github.com/stretchr/testify/assert"

	"testing"
)

func TestParseRelative(t *testing.T) {
	in := []byte("020610233429000R")
	future := gotime.Now().UTC().AddDate(2, 6, 12)
	past := gotime.Now().UTC().AddDate(2, 6, 9)
	out, err := smpptime.Parse(in)
	assert.NoError(t, err)
	assert.True(t, out.Before(future))
	assert.True(t, out.After(past))
}

func TestParseAbsolute(t *testing.T) {
	in := []byte("020610233429120-")
	loc := gotime.FixedZone("Custom", -5*3600)
	expected := gotime.Date(2002, gotime.June, 10, 23, 34, 29, 100000000, loc)
	out, err := smpptime.Parse(in)
	assert.NoError(t, err)
	assert.True(t, out.Equal(expected))
}

func TestParseSimpleMinutes(t *testing.T) {
	in := []byte("0206102334")
	expected := gotime.Date(2002, gotime.June, 10, 23, 34, 0, 0, gotime.UTC)
	out, err := smpptime.Parse(in)
	assert.NoError(t, err)
	assert.True(t, out.Equal(expected))
}

func TestParseSimpleSecs(t *testing.T) {
	in := []byte("020610233413")
	expected := gotime.Date(2002, gotime.June, 10, 23, 34, 13, 0, gotime.UTC)
	out, err := smpptime.Parse(in)
	assert.NoError(t, err)
	assert.True(t, out.Equal(expected))
}

func TestParseInvalidFormat(t *testing.T) {
	_, err := smpptime.Parse([]byte("invalidformat"))
	assert.Error(t, err)
	_, err = smpptime.Parse([]byte("invalid"))
	assert.Error(t, err)
}

func TestFormatSecs(t *testing.T) {
	d := gotime.Date(2002, gotime.June, 10, 23, 34, 13, 0, gotime.UTC)
	out, err := smpptime.Format(smpptime.SimpleSeconds, d)
	assert.NoError(t, err)
	assert.Equal(t, "020610233413", out)
}

func TestFormatMins(t *testing.T) {
	d := gotime.Date(2002, gotime.June, 10, 23, 34, 0, 0, gotime.UTC)
	out, err := smpptime.Format(smpptime.SimpleMinutes, d)
	assert.NoError(t, err)
	assert.Equal(t, "0206102334", out)
}

func TestFormatAbsolute(t *testing.T) {
	d := gotime.Date(2002, gotime.June, 10, 23, 34, 13, 100000000, gotime.UTC)
	out, err := smpptime.Format(smpptime.Absolute, d)
	assert.NoError(t, err)
	assert.Equal(t, "020610233413100+", out)
}

func TestFormatRelative(t *testing.T) {
	d := gotime.Now().UTC().Add(10 * gotime.Hour)
	out, err := smpptime.Format(smpptime.Relative, d)
	assert.NoError(t, err)
	assert.Equal(t, "000000100000000R", out)
}
