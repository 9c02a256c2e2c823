package consumers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/consumers"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/constants"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/mocks"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const testTransactionID = "c3a1e8f0-5b2d-4c6e-9a7f-1d2e3f4a5b6c"

func commandBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(service.VerifyTransactionCommand{
		TransactionID: testTransactionID,
		Mode:          service.VerifyModeSweep,
	})
	assert.NoError(t, err)
	return body
}

func TestVerifyConsumer_Handle(t *testing.T) {
	t.Run("acknowledges processed command", func(t *testing.T) {
		verify := &mocks.VerifyService{}
		consumer := consumers.NewVerifyConsumer(nil, verify, zap.NewNop())

		verify.On("VerifyOne", mock.Anything, testTransactionID, service.VerifyModeSweep).
			Return(service.ResultCredited, nil)

		err := consumer.Handle(context.Background(), commandBody(t))

		assert.NoError(t, err)
		verify.AssertExpectations(t)
	})

	t.Run("requeues on gateway outage", func(t *testing.T) {
		verify := &mocks.VerifyService{}
		consumer := consumers.NewVerifyConsumer(nil, verify, zap.NewNop())

		verify.On("VerifyOne", mock.Anything, testTransactionID, service.VerifyModeSweep).
			Return(service.ReconcileResult(""),
				service.NewServiceError(constants.ErrCodeGatewayUnavailable, assert.AnError))

		err := consumer.Handle(context.Background(), commandBody(t))

		assert.Error(t, err)

		var temp mq.TempError
		assert.ErrorAs(t, err, &temp)
		assert.True(t, temp.Temporary())
	})

	t.Run("drops command for missing transaction", func(t *testing.T) {
		verify := &mocks.VerifyService{}
		consumer := consumers.NewVerifyConsumer(nil, verify, zap.NewNop())

		verify.On("VerifyOne", mock.Anything, testTransactionID, service.VerifyModeSweep).
			Return(service.ReconcileResult(""), service.ErrTransactionNotFound)

		err := consumer.Handle(context.Background(), commandBody(t))

		assert.Error(t, err)

		var temp mq.TempError
		assert.False(t, errors.As(err, &temp))
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		verify := &mocks.VerifyService{}
		consumer := consumers.NewVerifyConsumer(nil, verify, zap.NewNop())

		err := consumer.Handle(context.Background(), []byte("not json"))

		assert.Error(t, err)
		verify.AssertNotCalled(t, "VerifyOne", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("defaults missing mode to sweep", func(t *testing.T) {
		verify := &mocks.VerifyService{}
		consumer := consumers.NewVerifyConsumer(nil, verify, zap.NewNop())

		body, _ := json.Marshal(service.VerifyTransactionCommand{TransactionID: testTransactionID})

		verify.On("VerifyOne", mock.Anything, testTransactionID, service.VerifyModeSweep).
			Return(service.ResultPendingKept, nil)

		err := consumer.Handle(context.Background(), body)

		assert.NoError(t, err)
		verify.AssertExpectations(t)
	})
}
