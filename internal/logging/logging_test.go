package logging

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew_ParsesLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug", false).GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("nonsense", false).GetLevel())

	_, isJSON := New("info", true).Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}

func TestContextRoundTrip(t *testing.T) {
	entry := New("info", false).WithField("request_id", "abc")
	ctx := IntoContext(context.Background(), entry)

	assert.Equal(t, "abc", FromContext(ctx).Data["request_id"])
	assert.NotNil(t, FromContext(context.Background()))
}
