package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGetLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"ERROR", logrus.ErrorLevel},
		{"Warn", logrus.WarnLevel},
		{"trace", logrus.TraceLevel},
		{"info", logrus.InfoLevel},
		{"", logrus.InfoLevel},
		{"nonsense", logrus.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetLevel(tt.in), "level %q", tt.in)
	}
}
