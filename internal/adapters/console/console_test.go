package console

import (
	"bytes"
	"context"
	"testing"

	domainauth "github.com/studytrack/studytrack-client/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigator(t *testing.T) {
	var buf bytes.Buffer
	n := NewNavigator(&buf)

	require.NoError(t, n.Navigate(context.Background(), "/login"))
	require.NoError(t, n.Navigate(context.Background(), "/dashboard"))
	assert.Equal(t, "-> /login\n-> /dashboard\n", buf.String())
	assert.Equal(t, "/dashboard", n.Current())
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf, nil)

	n.Notify(context.Background(), domainauth.Notice{Level: domainauth.NoticeError, Message: "Session expired"})
	n.Notify(context.Background(), domainauth.Notice{Level: domainauth.NoticeInfo, Message: "Welcome"})
	assert.Equal(t, "[error] Session expired\n[info] Welcome\n", buf.String())
}
