package testutil

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestDisableLogging(t *testing.T) {
	var buf bytes.Buffer
	original := logrus.StandardLogger().Out
	logrus.StandardLogger().Out = &buf
	defer func() {
		logrus.StandardLogger().Out = original
	}()

	reset := DisableLogging()
	logrus.Info("hidden")
	reset()

	logrus.Info("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}
