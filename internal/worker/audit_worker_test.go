package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/popx/account-portal/internal/events"
	"github.com/popx/account-portal/internal/service"
)

func TestStartAuditWorkerSubscribesAudit(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()

	StartAuditWorker(service.NewAuditService(dispatcher, zap.New(core)))
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventUserLoggedOut, ClientID: "c1"}))

	assert.Equal(t, 1, logs.FilterMessage("user_logged_out").Len())
}

func TestStartAuditWorkerIgnoresNil(t *testing.T) {
	assert.NotPanics(t, func() { StartAuditWorker(nil) })
}
